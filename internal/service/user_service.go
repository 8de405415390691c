package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockscope/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
	minPasswordLen = 6
	// bcrypt ignores input past 72 bytes, so longer passwords are refused.
	maxPasswordLen = 72
)

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidUser        = errors.New("invalid user input")
	ErrUnauthenticated    = errors.New("invalid authentication token")
)

type UserRepository interface {
	Create(ctx context.Context, username, hashedPassword string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type UserService struct {
	tracer   trace.Tracer
	repo     UserRepository
	sessions *SessionStore
	cost     int
}

func NewUserService(tracer trace.Tracer, repo UserRepository, sessions *SessionStore) *UserService {
	return &UserService{
		tracer:   tracer,
		repo:     repo,
		sessions: sessions,
		cost:     bcrypt.DefaultCost,
	}
}

// Register validates the credentials and stores a new user with a bcrypt
// password hash.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "user-service.register")
	defer span.End()

	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("username", username))

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", username, err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, username, string(hash))
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}

// Login checks the password and issues a session token.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "user-service.login")
	defer span.End()

	username = strings.TrimSpace(username)
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", username, err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResult{
		Message:     "Login successful",
		AccessToken: token,
		UserID:      user.ID,
		Username:    user.Username,
	}, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *UserService) Authenticate(token string) (int64, error) {
	userID, ok := s.sessions.Lookup(token)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}

func validateCredentials(username, password string) error {
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", ErrInvalidUser, minUsernameLen, maxUsernameLen)
	}
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d to %d characters", ErrInvalidUser, minPasswordLen, maxPasswordLen)
	}
	return nil
}
