package operation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/http/problem"
	"github.com/MrJamesThe3rd/expenso/internal/http/session"
	"github.com/MrJamesThe3rd/expenso/internal/operation"
)

type Handler struct {
	svc *operation.Service
}

func NewHandler(svc *operation.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts one sub-tree per operation kind.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/incomes", h.categorizedRoutes(operation.KindIncome))
	r.Route("/expenses", h.categorizedRoutes(operation.KindExpense))

	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", h.createTransfer)
		r.Get("/", h.list(operation.KindTransfer))
		r.Get("/{id}", h.get(operation.KindTransfer))
		r.Patch("/{id}", h.updateTransfer)
		r.Delete("/{id}", h.delete(operation.KindTransfer))
	})
}

func (h *Handler) categorizedRoutes(kind operation.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.createCategorized(kind))
		r.Get("/", h.list(kind))
		r.Get("/{id}", h.get(kind))
		r.Patch("/{id}", h.updateCategorized(kind))
		r.Delete("/{id}", h.delete(kind))
	}
}

type createOperationRequest struct {
	AccountID  uuid.UUID       `json:"account_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
}

func (h *Handler) createCategorized(kind operation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOperationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			problem.Write(w, http.StatusBadRequest, err.Error())
			return
		}

		params := operation.CreateParams{
			AccountID:  req.AccountID,
			CategoryID: req.CategoryID,
			Amount:     req.Amount,
			Note:       req.Note,
		}

		create := h.svc.CreateIncome
		if kind == operation.KindExpense {
			create = h.svc.CreateExpense
		}

		op, err := create(r.Context(), session.UserID(r.Context()), params)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(toResponse(op)); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

type createTransferRequest struct {
	FromAccountID uuid.UUID        `json:"from_account_id"`
	ToAccountID   uuid.UUID        `json:"to_account_id"`
	Amount        decimal.Decimal  `json:"amount"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty"`
	Note          string           `json:"note"`
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.svc.CreateTransfer(r.Context(), session.UserID(r.Context()), operation.CreateTransferParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		ExchangeRate:  req.ExchangeRate,
		Note:          req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(op)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(kind operation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := operation.ListFilter{}

		if s := r.URL.Query().Get("start_date"); s != "" {
			if t, err := time.Parse(time.DateOnly, s); err == nil {
				filter.StartDate = &t
			}
		}

		if s := r.URL.Query().Get("end_date"); s != "" {
			if t, err := time.Parse(time.DateOnly, s); err == nil {
				filter.EndDate = &t
			}
		}

		ops, err := h.svc.List(r.Context(), session.UserID(r.Context()), kind, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(toResponseList(ops)); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func (h *Handler) get(kind operation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			problem.Write(w, http.StatusBadRequest, "invalid id")
			return
		}

		op, err := h.svc.Get(r.Context(), session.UserID(r.Context()), id, kind)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(toResponse(op)); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

type updateOperationRequest struct {
	AccountID  *uuid.UUID       `json:"account_id,omitempty"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

func (h *Handler) updateCategorized(kind operation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			problem.Write(w, http.StatusBadRequest, "invalid id")
			return
		}

		var req updateOperationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			problem.Write(w, http.StatusBadRequest, err.Error())
			return
		}

		params := operation.UpdateParams{
			AccountID:  req.AccountID,
			CategoryID: req.CategoryID,
			Amount:     req.Amount,
			Note:       req.Note,
		}

		update := h.svc.UpdateIncome
		if kind == operation.KindExpense {
			update = h.svc.UpdateExpense
		}

		op, err := update(r.Context(), session.UserID(r.Context()), id, params)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(toResponse(op)); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

type updateTransferRequest struct {
	FromAccountID *uuid.UUID       `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID       `json:"to_account_id,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty"`
	Note          *string          `json:"note,omitempty"`
}

func (h *Handler) updateTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.svc.UpdateTransfer(r.Context(), session.UserID(r.Context()), id, operation.UpdateTransferParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		ExchangeRate:  req.ExchangeRate,
		Note:          req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(op)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(kind operation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			problem.Write(w, http.StatusBadRequest, "invalid id")
			return
		}

		if err := h.svc.Delete(r.Context(), session.UserID(r.Context()), id, kind); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, operation.ErrNotFound):
		problem.Write(w, http.StatusNotFound, "operation not found")
	case errors.Is(err, operation.ErrAccountNotFound):
		problem.Write(w, http.StatusNotFound, "account not found")
	case errors.Is(err, operation.ErrFromAccountNotFound):
		problem.Write(w, http.StatusNotFound, "source account not found")
	case errors.Is(err, operation.ErrToAccountNotFound):
		problem.Write(w, http.StatusNotFound, "destination account not found")
	case errors.Is(err, operation.ErrCategoryNotFound):
		problem.Write(w, http.StatusNotFound, "category not found")
	case errors.Is(err, operation.ErrSameAccount):
		problem.Write(w, http.StatusBadRequest, "source and destination accounts must differ")
	case errors.Is(err, operation.ErrInvalidAmount):
		problem.Write(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, operation.ErrInvalidRate):
		problem.Write(w, http.StatusBadRequest, "exchange rate must be positive")
	case errors.Is(err, operation.ErrMissingExchangeRate):
		problem.Write(w, http.StatusBadRequest, "exchange rate is required for cross-currency transfers")
	default:
		problem.Write(w, http.StatusInternalServerError, "internal error")
	}
}
