package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports liveness and whether account routes are served
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"accounts": h.accountsEnabled(),
	})
}

func (h *Handler) accountsEnabled() bool {
	return h.users != nil && h.watchlists != nil
}
