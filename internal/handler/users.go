package handler

import (
	"fmt"
	"net/http"

	"stockscope/internal/service"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterUser godoc
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  credentialsRequest  true  "Username and password"
// @Success      201  {object}  domain.User
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/users/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.register-user")
	defer span.End()

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, span, fmt.Errorf("%w: %v", service.ErrInvalidUser, err))
		return
	}

	user, err := h.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a bearer token used by the watchlist routes
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  credentialsRequest  true  "Username and password"
// @Success      200  {object}  domain.LoginResult
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.login")
	defer span.End()

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, span, fmt.Errorf("%w: %v", service.ErrInvalidUser, err))
		return
	}

	result, err := h.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
