package service

import (
	"context"
	"errors"
	"fmt"

	"stockscope/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrAlreadyWatched = errors.New("stock already in watchlist")
	ErrNotWatched     = errors.New("stock not found in watchlist")
	ErrInvalidSymbol  = errors.New("symbol is required")
)

type WatchlistRepository interface {
	Add(ctx context.Context, userID int64, symbol string) (*domain.WatchlistItem, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.WatchlistItem, error)
	GetBySymbolAndUser(ctx context.Context, symbol string, userID int64) (*domain.WatchlistItem, error)
	Delete(ctx context.Context, id int64) error
	DistinctSymbols(ctx context.Context) ([]string, error)
}

type WatchlistService struct {
	tracer trace.Tracer
	repo   WatchlistRepository
}

func NewWatchlistService(tracer trace.Tracer, repo WatchlistRepository) *WatchlistService {
	return &WatchlistService{tracer: tracer, repo: repo}
}

func (s *WatchlistService) List(ctx context.Context, userID int64) ([]*domain.WatchlistItem, error) {
	ctx, span := s.tracer.Start(ctx, "watchlist-service.list")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userID))

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist for user %d: %w", userID, err)
	}
	if items == nil {
		items = []*domain.WatchlistItem{}
	}
	return items, nil
}

func (s *WatchlistService) Add(ctx context.Context, userID int64, symbol string) (*domain.WatchlistItem, error) {
	ctx, span := s.tracer.Start(ctx, "watchlist-service.add")
	defer span.End()

	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("symbol", symbol))

	existing, err := s.repo.GetBySymbolAndUser(ctx, symbol, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup watchlist item %s: %w", symbol, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWatched, symbol)
	}

	item, err := s.repo.Add(ctx, userID, symbol)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWatched, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("add watchlist item %s: %w", symbol, err)
	}
	return item, nil
}

func (s *WatchlistService) Remove(ctx context.Context, userID int64, symbol string) error {
	ctx, span := s.tracer.Start(ctx, "watchlist-service.remove")
	defer span.End()

	symbol = NormalizeSymbol(symbol)
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("symbol", symbol))

	item, err := s.repo.GetBySymbolAndUser(ctx, symbol, userID)
	if err != nil {
		return fmt.Errorf("lookup watchlist item %s: %w", symbol, err)
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrNotWatched, symbol)
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete watchlist item %s: %w", symbol, err)
	}
	return nil
}

// WatchedSymbols lists every symbol on any user's watchlist.
func (s *WatchlistService) WatchedSymbols(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "watchlist-service.watched-symbols")
	defer span.End()
	return s.repo.DistinctSymbols(ctx)
}
