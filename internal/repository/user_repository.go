package repository

import (
	"context"
	"errors"

	"stockscope/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type UserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewUserRepository(pool PgxPool, tracer trace.Tracer) *UserRepository {
	return &UserRepository{pool: pool, tracer: tracer}
}

func (r *UserRepository) Create(ctx context.Context, username, hashedPassword string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "user-repo.create")
	defer span.End()

	u := &domain.User{Username: username, HashedPassword: hashedPassword}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, hashed_password)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		username, hashedPassword,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetByUsername returns nil, nil when no user has that name.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "user-repo.get-by-username")
	defer span.End()

	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, username, hashed_password, created_at FROM users WHERE username = $1`,
		username,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "user-repo.get-by-id")
	defer span.End()

	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, username, hashed_password, created_at FROM users WHERE id = $1`,
		id,
	))
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
