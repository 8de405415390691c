package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root godoc
// @Summary      Service greeting
// @Description  Confirms the API is up
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello! Your stock analysis tool is running."})
}
