package operation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/operation"
)

type operationResponse struct {
	ID            uuid.UUID           `json:"id"`
	Kind          string              `json:"kind"`
	FromAccountID *uuid.UUID          `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID          `json:"to_account_id,omitempty"`
	CategoryID    *uuid.UUID          `json:"category_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	Conversion    *conversionResponse `json:"conversion,omitempty"`
	Note          string              `json:"note,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type conversionResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

func toResponse(op *operation.Operation) operationResponse {
	resp := operationResponse{
		ID:            op.ID,
		Kind:          string(op.Kind),
		FromAccountID: op.FromAccountID,
		ToAccountID:   op.ToAccountID,
		CategoryID:    op.CategoryID,
		Amount:        op.Amount.Amount,
		Currency:      string(op.Amount.Currency),
		Note:          op.Note,
		CreatedAt:     op.CreatedAt,
	}

	if op.Conversion != nil {
		resp.Conversion = &conversionResponse{
			Amount:   op.Conversion.Amount.Amount,
			Currency: string(op.Conversion.Amount.Currency),
			Rate:     op.Conversion.Rate,
		}
	}

	return resp
}

func toResponseList(ops []*operation.Operation) []operationResponse {
	resp := make([]operationResponse, len(ops))
	for i, op := range ops {
		resp[i] = toResponse(op)
	}

	return resp
}
