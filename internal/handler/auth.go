package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"carrental-client/internal/auth"
	"carrental-client/internal/model"
	"carrental-client/internal/repository"
)

const minPasswordLength = 6

type AuthHandler struct {
	users      repository.UserStore
	tokens     *auth.Manager
	tokenTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewAuthHandler(users repository.UserStore, tokens *auth.Manager, tokenTTL time.Duration, bcryptCost int, logger *slog.Logger) *AuthHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if !strings.Contains(req.Email, "@") || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Name and a valid email are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "Password must have at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to register")
		return
	}

	user := &model.User{Name: req.Name, Email: req.Email, Phone: req.Phone}
	err = h.users.Create(ctx, user, string(hash))
	if errors.Is(err, repository.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "email_taken", "Email already registered")
		return
	}
	if err != nil {
		h.logger.Error("failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to register")
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	user, hash, err := h.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to sign in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	user, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "User not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *model.User) {
	token, err := h.tokens.NewUserJWT(user.ID, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	writeJSON(w, status, model.AuthResponse{Token: token, User: *user})
}
