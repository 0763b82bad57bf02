package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/account"
)

type accountResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(acc *account.Account) accountResponse {
	return accountResponse{
		ID:        acc.ID,
		Name:      acc.Name,
		Balance:   acc.Balance.Amount,
		Currency:  string(acc.Balance.Currency),
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}

func toResponseList(accs []*account.Account) []accountResponse {
	resp := make([]accountResponse, len(accs))
	for i, acc := range accs {
		resp[i] = toResponse(acc)
	}

	return resp
}
