package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/http/problem"
	"github.com/MrJamesThe3rd/expenso/internal/http/session"
	"github.com/MrJamesThe3rd/expenso/internal/money"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createAccountRequest struct {
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" {
		problem.Write(w, http.StatusBadRequest, "name is required")
		return
	}

	currency, err := money.ParseCurrency(req.Currency)
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid currency code")
		return
	}

	acc, err := h.svc.Create(r.Context(), session.UserID(r.Context()), account.CreateParams{
		Name:     req.Name,
		Balance:  req.Balance,
		Currency: currency,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(acc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accs, err := h.svc.List(r.Context(), session.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(accs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid id")
		return
	}

	acc, err := h.svc.Get(r.Context(), session.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(acc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateAccountRequest struct {
	Name     *string          `json:"name,omitempty"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
	Currency *string          `json:"currency,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	params := account.UpdateParams{
		Name:    req.Name,
		Balance: req.Balance,
	}

	if req.Currency != nil {
		currency, err := money.ParseCurrency(*req.Currency)
		if err != nil {
			problem.Write(w, http.StatusBadRequest, "invalid currency code")
			return
		}

		params.Currency = &currency
	}

	acc, err := h.svc.Update(r.Context(), session.UserID(r.Context()), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(acc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), session.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		problem.Write(w, http.StatusNotFound, "account not found")
	case errors.Is(err, account.ErrNameTaken):
		problem.Write(w, http.StatusConflict, "account name already in use")
	default:
		problem.Write(w, http.StatusInternalServerError, "internal error")
	}
}
