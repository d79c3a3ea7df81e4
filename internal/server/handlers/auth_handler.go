package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/serenolabs/sereno/internal/server/auth"
	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/repository"
)

// UserRepository defines the user data access the auth handler needs.
// Interfaces are defined at the point of use.
type UserRepository interface {
	CreateUser(ctx context.Context, email string, passwordHash, salt []byte) (*repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (*repository.User, error)
}

// Transactor runs a function within a single database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthHandler serves registration and login.
type AuthHandler struct {
	users    UserRepository
	settings SettingRepository
	tx       Transactor
	tokens   *auth.TokenManager
	maxBody  int64
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users UserRepository, settings SettingRepository, tx Transactor, tokens *auth.TokenManager, maxBody int64) *AuthHandler {
	return &AuthHandler{
		users:    users,
		settings: settings,
		tx:       tx,
		tokens:   tokens,
		maxBody:  maxBody,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	UserID      int64     `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates an account, seeds its settings row with the defaults,
// and returns a fresh token.
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, r, srverrors.NewInvalidInput("email and password are required"))
		return
	}

	salt, err := auth.GenerateSalt(auth.SaltLength)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to generate salt", err))
		return
	}

	seed, err := json.Marshal(defaultSettings)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to serialize default settings", err))
		return
	}

	// The account row and its settings seed commit or roll back together.
	var user *repository.User
	err = h.tx.WithTransaction(r.Context(), func(ctx context.Context) error {
		var err error
		user, err = h.users.CreateUser(ctx, req.Email, auth.HashPassword(req.Password, salt), salt)
		if err != nil {
			return err
		}
		_, err = h.settings.UpsertSetting(ctx, user.ID, string(seed))
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			respondError(w, r, srverrors.NewAlreadyExists("email already registered"))
			return
		}
		respondError(w, r, srverrors.NewInternal("failed to create user", err))
		return
	}

	h.respondWithToken(w, r, user.ID)
}

// Login verifies credentials and returns a fresh token.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, r, srverrors.NewInvalidInput("email and password are required"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same response as a bad password so callers cannot probe for
			// registered emails.
			respondError(w, r, srverrors.NewInvalidInput("invalid credentials"))
			return
		}
		respondError(w, r, srverrors.NewInternal("failed to retrieve user", err))
		return
	}

	if !auth.VerifyPassword(req.Password, user.Salt, user.PasswordHash) {
		respondError(w, r, srverrors.NewInvalidInput("invalid credentials"))
		return
	}

	h.respondWithToken(w, r, user.ID)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, userID int64) {
	token, expiresAt, err := h.tokens.Issue(userID)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to issue token", err))
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      userID,
		ExpiresAt:   expiresAt,
	})
}
