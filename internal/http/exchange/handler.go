package exchange

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/exchange"
	"github.com/MrJamesThe3rd/expenso/internal/http/problem"
	"github.com/MrJamesThe3rd/expenso/internal/money"
)

type Handler struct {
	client *exchange.Client
}

func NewHandler(client *exchange.Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rate", h.rate)
}

type rateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// rate returns the current market rate between two currencies. Clients fetch
// it to prefill the exchange rate on cross-currency transfers; the rate
// actually applied is always the one submitted with the transfer.
func (h *Handler) rate(w http.ResponseWriter, r *http.Request) {
	from, err := money.ParseCurrency(r.URL.Query().Get("from"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid from currency")
		return
	}

	to, err := money.ParseCurrency(r.URL.Query().Get("to"))
	if err != nil {
		problem.Write(w, http.StatusBadRequest, "invalid to currency")
		return
	}

	rate, err := h.client.GetRate(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, exchange.ErrRateUnavailable) {
			problem.Write(w, http.StatusBadGateway, "exchange rate unavailable")
			return
		}

		problem.Write(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(rateResponse{
		From: string(from),
		To:   string(to),
		Rate: rate,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
