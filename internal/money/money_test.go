package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/expenso/internal/money"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    money.Currency
		wantErr bool
	}{
		{name: "Upper", code: "USD", want: "USD"},
		{name: "Lower", code: "eur", want: "EUR"},
		{name: "Hryvnia", code: "UAH", want: "UAH"},
		{name: "Unknown", code: "XXXX", wantErr: true},
		{name: "Empty", code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ParseCurrency(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidCurrency)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_AddSub(t *testing.T) {
	a := money.New(decimal.NewFromInt(100), "USD")
	b := money.New(decimal.RequireFromString("0.5"), "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(money.New(decimal.RequireFromString("100.5"), "USD")))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(money.New(decimal.RequireFromString("99.5"), "USD")))
}

func TestMoney_CrossCurrencyArithmeticFails(t *testing.T) {
	usd := money.New(decimal.NewFromInt(10), "USD")
	eur := money.New(decimal.NewFromInt(10), "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestMoney_Convert(t *testing.T) {
	usd := money.New(decimal.NewFromInt(100), "USD")

	eur := usd.Convert(decimal.RequireFromString("0.9"), "EUR")
	assert.True(t, eur.Equal(money.New(decimal.NewFromInt(90), "EUR")))

	// Exact decimal math, no float drift.
	uah := usd.Convert(decimal.RequireFromString("41.37"), "UAH")
	assert.Equal(t, "4137", uah.Amount.String())
}

func TestMoney_Equal(t *testing.T) {
	a := money.New(decimal.RequireFromString("1.50"), "USD")
	b := money.New(decimal.RequireFromString("1.5"), "USD")
	c := money.New(decimal.RequireFromString("1.5"), "EUR")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
