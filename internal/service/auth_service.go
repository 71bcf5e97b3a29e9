package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carrental-client/internal/auth"
	"carrental-client/internal/matching"
	"carrental-client/internal/model"
	"carrental-client/internal/tokenstore"
)

var (
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrNotLoggedIn        = errors.New("not logged in")
)

// AuthBackend is the remote side of authentication
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
}

// AuthConfig selects between the backend and the local mock
type AuthConfig struct {
	Mock     bool
	TokenTTL time.Duration
}

// AuthService signs users in and keeps the session token. In mock mode
// tokens are minted locally and the backend is never called.
type AuthService struct {
	backend AuthBackend
	tokens  tokenstore.Store
	manager *auth.Manager
	cfg     AuthConfig
	logger  *slog.Logger
}

func NewAuthService(backend AuthBackend, tokens tokenstore.Store, manager *auth.Manager, cfg AuthConfig, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	return &AuthService{
		backend: backend,
		tokens:  tokens,
		manager: manager,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if matching.IsBlank(email) || matching.IsBlank(password) {
		return nil, ErrInvalidCredentials
	}

	var resp *model.AuthResponse
	var err error
	if s.cfg.Mock {
		resp, err = s.mockSession(model.User{Email: email, Name: nameFromEmail(email)})
	} else {
		resp, err = s.backend.Login(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Set(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("signed in", "email", email, "mock", s.cfg.Mock)
	return resp, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if matching.IsBlank(req.Email) || matching.IsBlank(req.Password) {
		return nil, ErrInvalidCredentials
	}

	var resp *model.AuthResponse
	var err error
	if s.cfg.Mock {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = nameFromEmail(req.Email)
		}
		resp, err = s.mockSession(model.User{Email: req.Email, Name: name, Phone: req.Phone})
	} else {
		resp, err = s.backend.Register(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Set(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("registered", "email", req.Email, "mock", s.cfg.Mock)
	return resp, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *AuthService) IsLoggedIn(ctx context.Context) bool {
	token, err := s.tokens.Get(ctx)
	return err == nil && token != ""
}

// CurrentUser returns the signed-in user. In mock mode it is read back
// from the local token.
func (s *AuthService) CurrentUser(ctx context.Context) (*model.User, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	if !s.cfg.Mock {
		return s.backend.Me(ctx)
	}

	if s.manager == nil {
		return nil, fmt.Errorf("mock auth: %w", auth.ErrEmptySigningKey)
	}
	email, err := s.manager.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &model.User{Email: email, Name: nameFromEmail(email)}, nil
}

func (s *AuthService) mockSession(user model.User) (*model.AuthResponse, error) {
	if s.manager == nil {
		return nil, fmt.Errorf("mock auth: %w", auth.ErrEmptySigningKey)
	}

	token, err := s.manager.NewJWT(user.Email, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = time.Now().UTC()

	return &model.AuthResponse{Token: token, User: user}, nil
}

func nameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
