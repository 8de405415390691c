package handler

import (
	"context"

	"stockscope/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type StockService interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetPriceHistory(ctx context.Context, symbol string, days int) (*domain.PriceHistory, error)
	GetSMA(ctx context.Context, symbol string, period, days int) (*domain.SMAResult, error)
	GetProfile(ctx context.Context, symbol string) (*domain.CompanyProfile, error)
}

type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	Authenticate(token string) (int64, error)
}

type WatchlistService interface {
	List(ctx context.Context, userID int64) ([]*domain.WatchlistItem, error)
	Add(ctx context.Context, userID int64, symbol string) (*domain.WatchlistItem, error)
	Remove(ctx context.Context, userID int64, symbol string) error
}

type Handler struct {
	tracer     trace.Tracer
	stocks     StockService
	users      UserService
	watchlists WatchlistService
}

func New(tracer trace.Tracer, stocks StockService) *Handler {
	return &Handler{
		tracer: tracer,
		stocks: stocks,
	}
}

// EnableAccounts turns on the user and watchlist routes. Without it only
// the market-data routes are served.
func (h *Handler) EnableAccounts(users UserService, watchlists WatchlistService) {
	h.users = users
	h.watchlists = watchlists
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.GET("/stock/:symbol", h.GetStock)
	api.GET("/price/:symbol", h.GetPriceHistory)
	api.GET("/sma/:symbol", h.GetSMA)
	api.GET("/profile/:symbol", h.GetProfile)

	if !h.accountsEnabled() {
		return
	}

	users := api.Group("/users")
	users.POST("/register", h.RegisterUser)
	users.POST("/login", h.Login)

	watchlists := api.Group("/watchlists", RequireSession(h.users))
	watchlists.GET("", h.ListWatchlist)
	watchlists.POST("", h.AddToWatchlist)
	watchlists.DELETE("/:symbol", h.RemoveFromWatchlist)
}
