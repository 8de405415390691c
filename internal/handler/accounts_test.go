package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"stockscope/internal/domain"
	"stockscope/internal/service"
)

type stubUsers struct {
	registered []string
	user       *domain.User
	login      *domain.LoginResult
	err        error
	tokens     map[string]int64
}

func (s *stubUsers) Register(ctx context.Context, username, password string) (*domain.User, error) {
	s.registered = append(s.registered, username)
	return s.user, s.err
}

func (s *stubUsers) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	return s.login, s.err
}

func (s *stubUsers) Authenticate(token string) (int64, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return 0, service.ErrUnauthenticated
}

type stubWatchlists struct {
	items     []*domain.WatchlistItem
	err       error
	lastUser  int64
	lastAdded string
	removed   string
}

func (s *stubWatchlists) List(ctx context.Context, userID int64) ([]*domain.WatchlistItem, error) {
	s.lastUser = userID
	return s.items, s.err
}

func (s *stubWatchlists) Add(ctx context.Context, userID int64, symbol string) (*domain.WatchlistItem, error) {
	s.lastUser, s.lastAdded = userID, symbol
	if s.err != nil {
		return nil, s.err
	}
	return &domain.WatchlistItem{ID: 1, UserID: userID, Symbol: symbol}, nil
}

func (s *stubWatchlists) Remove(ctx context.Context, userID int64, symbol string) error {
	s.lastUser, s.removed = userID, symbol
	return s.err
}

func newAccountsHandler(users *stubUsers, watchlists *stubWatchlists) *Handler {
	h := New(testTracer, &stubStocks{})
	h.EnableAccounts(users, watchlists)
	return h
}

func TestRegisterUser(t *testing.T) {
	users := &stubUsers{user: &domain.User{ID: 3, Username: "alice", HashedPassword: "secret-hash"}}
	r := newRouter(newAccountsHandler(users, &stubWatchlists{}))

	w := doRequest(r, "POST", "/api/v1/users/register", `{"username":"alice","password":"hunter22"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["username"] != "alice" || body["id"] != float64(3) {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, leaked := body["hashed_password"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestRegisterUserErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{"username":`, nil, http.StatusBadRequest},
		{"missing password", `{"username":"alice"}`, nil, http.StatusBadRequest},
		{"taken", `{"username":"alice","password":"hunter22"}`, service.ErrUsernameTaken, http.StatusConflict},
		{"invalid", `{"username":"al","password":"hunter22"}`, fmt.Errorf("%w: too short", service.ErrInvalidUser), http.StatusBadRequest},
	}
	for _, tt := range tests {
		r := newRouter(newAccountsHandler(&stubUsers{err: tt.err}, &stubWatchlists{}))
		if w := doRequest(r, "POST", "/api/v1/users/register", tt.body); w.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, w.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	users := &stubUsers{login: &domain.LoginResult{Message: "Login successful", AccessToken: "tok", UserID: 3, Username: "alice"}}
	r := newRouter(newAccountsHandler(users, &stubWatchlists{}))

	w := doRequest(r, "POST", "/api/v1/users/login", `{"username":"alice","password":"hunter22"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["access_token"] != "tok" || body["message"] != "Login successful" {
		t.Fatalf("unexpected body: %v", body)
	}

	r = newRouter(newAccountsHandler(&stubUsers{err: service.ErrInvalidCredentials}, &stubWatchlists{}))
	w = doRequest(r, "POST", "/api/v1/users/login", `{"username":"alice","password":"nope"}`)
	if w.Code != http.StatusUnauthorized || w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected 401 with challenge, got %d %v", w.Code, w.Header())
	}
}

func TestWatchlistRequiresSession(t *testing.T) {
	users := &stubUsers{tokens: map[string]int64{"good": 9}}
	r := newRouter(newAccountsHandler(users, &stubWatchlists{}))

	for _, auth := range []string{"", "Bearer", "Basic good", "Bearer bad"} {
		w := doRequest(r, "GET", "/api/v1/watchlists", "", "Authorization", auth)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("auth %q: expected 401, got %d", auth, w.Code)
		}
	}
}

func TestWatchlistRoutes(t *testing.T) {
	users := &stubUsers{tokens: map[string]int64{"good": 9}}
	watchlists := &stubWatchlists{items: []*domain.WatchlistItem{{ID: 1, Symbol: "AAPL", UserID: 9}}}
	r := newRouter(newAccountsHandler(users, watchlists))
	auth := []string{"Authorization", "Bearer good"}

	w := doRequest(r, "GET", "/api/v1/watchlists", "", auth...)
	if w.Code != http.StatusOK || watchlists.lastUser != 9 {
		t.Fatalf("unexpected list: %d user=%d", w.Code, watchlists.lastUser)
	}
	var items []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 || items[0]["user_id"] != float64(9) {
		t.Fatalf("unexpected items: %s", w.Body.String())
	}

	w = doRequest(r, "POST", "/api/v1/watchlists", `{"symbol":"msft"}`, auth...)
	if w.Code != http.StatusCreated || watchlists.lastAdded != "msft" {
		t.Fatalf("unexpected add: %d %q", w.Code, watchlists.lastAdded)
	}

	w = doRequest(r, "POST", "/api/v1/watchlists", `{}`, auth...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing symbol, got %d", w.Code)
	}

	w = doRequest(r, "DELETE", "/api/v1/watchlists/AAPL", "", auth...)
	if w.Code != http.StatusNoContent || watchlists.removed != "AAPL" {
		t.Fatalf("unexpected delete: %d %q", w.Code, watchlists.removed)
	}
}

func TestWatchlistErrors(t *testing.T) {
	users := &stubUsers{tokens: map[string]int64{"good": 9}}
	auth := []string{"Authorization", "Bearer good"}

	r := newRouter(newAccountsHandler(users, &stubWatchlists{err: fmt.Errorf("%w: AAPL", service.ErrAlreadyWatched)}))
	if w := doRequest(r, "POST", "/api/v1/watchlists", `{"symbol":"AAPL"}`, auth...); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	r = newRouter(newAccountsHandler(users, &stubWatchlists{err: fmt.Errorf("%w: AAPL", service.ErrNotWatched)}))
	if w := doRequest(r, "DELETE", "/api/v1/watchlists/AAPL", "", auth...); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
