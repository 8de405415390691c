package repository

import (
	"context"
	"errors"

	"stockscope/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type WatchlistRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewWatchlistRepository(pool PgxPool, tracer trace.Tracer) *WatchlistRepository {
	return &WatchlistRepository{pool: pool, tracer: tracer}
}

func (r *WatchlistRepository) Add(ctx context.Context, userID int64, symbol string) (*domain.WatchlistItem, error) {
	ctx, span := r.tracer.Start(ctx, "watchlist-repo.add")
	defer span.End()

	item := &domain.WatchlistItem{UserID: userID, Symbol: symbol}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO watchlist_items (user_id, symbol)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, symbol,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *WatchlistRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.WatchlistItem, error) {
	ctx, span := r.tracer.Start(ctx, "watchlist-repo.list-by-user")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, user_id, created_at
		 FROM watchlist_items
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.WatchlistItem
	for rows.Next() {
		it := &domain.WatchlistItem{}
		if err := rows.Scan(&it.ID, &it.Symbol, &it.UserID, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetBySymbolAndUser returns nil, nil when the user does not watch symbol.
func (r *WatchlistRepository) GetBySymbolAndUser(ctx context.Context, symbol string, userID int64) (*domain.WatchlistItem, error) {
	ctx, span := r.tracer.Start(ctx, "watchlist-repo.get-by-symbol-and-user")
	defer span.End()

	it := &domain.WatchlistItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, symbol, user_id, created_at
		 FROM watchlist_items
		 WHERE symbol = $1 AND user_id = $2`,
		symbol, userID,
	).Scan(&it.ID, &it.Symbol, &it.UserID, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *WatchlistRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "watchlist-repo.delete")
	defer span.End()

	_, err := r.pool.Exec(ctx, `DELETE FROM watchlist_items WHERE id = $1`, id)
	return err
}

// DistinctSymbols lists every watched symbol once, sorted.
func (r *WatchlistRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "watchlist-repo.distinct-symbols")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT DISTINCT symbol FROM watchlist_items ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
