package category

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/expenso/internal/category"
	"github.com/MrJamesThe3rd/expenso/internal/http/problem"
	"github.com/MrJamesThe3rd/expenso/internal/http/session"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts one sub-tree per category kind, so income and expense
// categories are addressed as /income/{id} and /expense/{id}.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/{kind}", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.rename)
		r.Delete("/{id}", h.delete)
	})
}

func kindFromURL(r *http.Request) (category.Kind, bool) {
	switch chi.URLParam(r, "kind") {
	case "income":
		return category.KindIncome, true
	case "expense":
		return category.KindExpense, true
	default:
		return "", false
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	IsDefault bool      `json:"is_default"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      string(c.Kind),
		IsDefault: c.IsDefault,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		problem.Write(w, http.StatusBadRequest, "invalid category kind")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" {
		problem.Write(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.svc.Create(r.Context(), session.UserID(r.Context()), req.Name, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(c)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		problem.Write(w, http.StatusBadRequest, "invalid category kind")
		return
	}

	cats, err := h.svc.List(r.Context(), session.UserID(r.Context()), kind)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = toResponse(c)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		problem.Write(w, http.StatusBadRequest, "invalid category kind")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.svc.Get(r.Context(), session.UserID(r.Context()), id, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(c)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		problem.Write(w, http.StatusBadRequest, "invalid category kind")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" {
		problem.Write(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.svc.Rename(r.Context(), session.UserID(r.Context()), id, kind, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(c)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		problem.Write(w, http.StatusBadRequest, "invalid category kind")
		return
	}

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

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound):
		problem.Write(w, http.StatusNotFound, "category not found")
	case errors.Is(err, category.ErrNameTaken):
		problem.Write(w, http.StatusConflict, "category name already in use")
	default:
		problem.Write(w, http.StatusInternalServerError, "internal error")
	}
}
