package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"stockscope/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetStock godoc
// @Summary      Get the latest quote
// @Description  Returns price, change and day range for a stock symbol
// @Tags         stocks
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  domain.Quote
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/stock/{symbol} [get]
func (h *Handler) GetStock(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stock")
	defer span.End()

	symbol := c.Param("symbol")
	span.SetAttributes(attribute.String("symbol", symbol))

	quote, err := h.stocks.GetQuote(ctx, symbol)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetPriceHistory godoc
// @Summary      Get daily price history
// @Description  Returns the most recent daily bars in chronological order
// @Tags         stocks
// @Produce      json
// @Param        symbol  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        days    query  int     false  "Number of trading days"  default(30)
// @Success      200  {object}  domain.PriceHistory
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/price/{symbol} [get]
func (h *Handler) GetPriceHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price-history")
	defer span.End()

	symbol := c.Param("symbol")
	days, err := positiveQuery(c, "days", service.DefaultHistoryDays)
	if err != nil {
		writeError(c, span, err)
		return
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	history, err := h.stocks.GetPriceHistory(ctx, symbol, days)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetSMA godoc
// @Summary      Get a simple moving average
// @Description  Computes an SMA over the most recent closes and returns the last 20 points
// @Tags         stocks
// @Produce      json
// @Param        symbol  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        period  query  int     false  "SMA window length"  default(20)
// @Param        days    query  int     false  "Trading days of history to use"  default(50)
// @Success      200  {object}  domain.SMAResult
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sma/{symbol} [get]
func (h *Handler) GetSMA(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sma")
	defer span.End()

	symbol := c.Param("symbol")
	period, err := positiveQuery(c, "period", service.DefaultSMAPeriod)
	if err != nil {
		writeError(c, span, err)
		return
	}
	days, err := positiveQuery(c, "days", service.DefaultSMADays)
	if err != nil {
		writeError(c, span, err)
		return
	}
	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.Int("period", period),
		attribute.Int("days", days),
	)

	result, err := h.stocks.GetSMA(ctx, symbol, period, days)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProfile godoc
// @Summary      Get a company profile
// @Description  Returns descriptive company data; missing fields are "N/A"
// @Tags         stocks
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  domain.CompanyProfile
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/profile/{symbol} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-profile")
	defer span.End()

	symbol := c.Param("symbol")
	span.SetAttributes(attribute.String("symbol", symbol))

	profile, err := h.stocks.GetProfile(ctx, symbol)
	if err != nil {
		writeError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// positiveQuery reads an optional positive integer query parameter.
func positiveQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", service.ErrInvalidParameter, name, raw)
	}
	return n, nil
}
