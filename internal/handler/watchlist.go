package handler

import (
	"fmt"
	"net/http"

	"stockscope/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type watchlistRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// ListWatchlist godoc
// @Summary      List the caller's watchlist
// @Tags         watchlists
// @Produce      json
// @Success      200  {array}   domain.WatchlistItem
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/watchlists [get]
func (h *Handler) ListWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-watchlist")
	defer span.End()

	userID := SessionUserID(c)
	span.SetAttributes(attribute.Int64("user_id", userID))

	items, err := h.watchlists.List(ctx, userID)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddToWatchlist godoc
// @Summary      Add a symbol to the caller's watchlist
// @Tags         watchlists
// @Accept       json
// @Produce      json
// @Param        body  body  watchlistRequest  true  "Symbol to watch"
// @Success      201  {object}  domain.WatchlistItem
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/watchlists [post]
func (h *Handler) AddToWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-to-watchlist")
	defer span.End()

	var req watchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, span, fmt.Errorf("%w: %v", service.ErrInvalidSymbol, err))
		return
	}
	userID := SessionUserID(c)
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("symbol", req.Symbol))

	item, err := h.watchlists.Add(ctx, userID, req.Symbol)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveFromWatchlist godoc
// @Summary      Remove a symbol from the caller's watchlist
// @Tags         watchlists
// @Param        symbol  path  string  true  "Ticker symbol"
// @Success      204  "No Content"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/watchlists/{symbol} [delete]
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-from-watchlist")
	defer span.End()

	userID := SessionUserID(c)
	symbol := c.Param("symbol")
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("symbol", symbol))

	if err := h.watchlists.Remove(ctx, userID, symbol); err != nil {
		writeError(c, span, err)
		return
	}
	c.Status(http.StatusNoContent)
}
