package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/expenso/internal/auth"
	"github.com/MrJamesThe3rd/expenso/internal/http/problem"
	"github.com/MrJamesThe3rd/expenso/internal/http/session"
	"github.com/MrJamesThe3rd/expenso/internal/user"
)

const minPasswordLength = 8

type Handler struct {
	svc    *user.Service
	tokens *auth.TokenManager
}

func NewHandler(svc *user.Service, tokens *auth.TokenManager) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// PublicRoutes are reachable without a session.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

// Routes require an authenticated session.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Delete("/me", h.delete)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if len(req.Password) < minPasswordLength {
		problem.Write(w, http.StatusBadRequest, "password too short")
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			problem.Write(w, http.StatusConflict, "email already registered")
			return
		}

		problem.Write(w, http.StatusInternalServerError, "internal error")

		return
	}

	h.startSession(w, u.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(u)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			problem.Write(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		problem.Write(w, http.StatusInternalServerError, "internal error")

		return
	}

	h.startSession(w, u.ID)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(u)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, userID uuid.UUID) {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		return
	}

	session.SetCookie(w, token, h.tokens.TTL())
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	session.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), session.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			problem.Write(w, http.StatusNotFound, "user not found")
			return
		}

		problem.Write(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(u)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), session.UserID(r.Context())); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			problem.Write(w, http.StatusNotFound, "user not found")
			return
		}

		problem.Write(w, http.StatusInternalServerError, "internal error")

		return
	}

	session.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
