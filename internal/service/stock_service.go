package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockscope/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultHistoryDays = 30
	DefaultSMAPeriod   = 20
	DefaultSMADays     = 50
)

// ErrInvalidParameter is returned for non-positive day counts or periods.
var ErrInvalidParameter = errors.New("invalid parameter")

// MarketDataProvider is satisfied by *provider.Client.
type MarketDataProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	FetchDailySeries(ctx context.Context, symbol string) (domain.PriceSeries, error)
	FetchProfile(ctx context.Context, symbol string) (*domain.CompanyProfile, error)
}

// StockService exposes the four market-data operations. Provider errors are
// returned unchanged so callers can inspect their kind.
type StockService struct {
	tracer   trace.Tracer
	provider MarketDataProvider
}

func NewStockService(tracer trace.Tracer, provider MarketDataProvider) *StockService {
	return &StockService{tracer: tracer, provider: provider}
}

func (s *StockService) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "stock-service.get-quote")
	defer span.End()

	symbol = NormalizeSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", symbol))
	return s.provider.FetchQuote(ctx, symbol)
}

// GetPriceHistory returns the most recent days bars in chronological order.
func (s *StockService) GetPriceHistory(ctx context.Context, symbol string, days int) (*domain.PriceHistory, error) {
	ctx, span := s.tracer.Start(ctx, "stock-service.get-price-history")
	defer span.End()

	if days < 1 {
		return nil, fmt.Errorf("%w: days must be a positive integer", ErrInvalidParameter)
	}
	symbol = NormalizeSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	series, err := s.provider.FetchDailySeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return buildPriceHistory(symbol, series, days), nil
}

// GetSMA computes a period-day moving average over the most recent days
// closes and returns the trailing window of it.
func (s *StockService) GetSMA(ctx context.Context, symbol string, period, days int) (*domain.SMAResult, error) {
	ctx, span := s.tracer.Start(ctx, "stock-service.get-sma")
	defer span.End()

	if period < 1 {
		return nil, fmt.Errorf("%w: period must be a positive integer", ErrInvalidParameter)
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be a positive integer", ErrInvalidParameter)
	}
	symbol = NormalizeSymbol(symbol)
	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.Int("period", period),
		attribute.Int("days", days),
	)

	series, err := s.provider.FetchDailySeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return buildSMA(symbol, series, period, days), nil
}

func (s *StockService) GetProfile(ctx context.Context, symbol string) (*domain.CompanyProfile, error) {
	ctx, span := s.tracer.Start(ctx, "stock-service.get-profile")
	defer span.End()

	symbol = NormalizeSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", symbol))
	return s.provider.FetchProfile(ctx, symbol)
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
