package domain

import (
	"errors"
	"time"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

type WatchlistItem struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
}

// ErrDuplicate is returned by stores when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")
