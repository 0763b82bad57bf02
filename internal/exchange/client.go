// Package exchange fetches currency exchange rates from the open
// fawazahmed0 currency API.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/money"
)

const DefaultBaseURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest"

var ErrRateUnavailable = errors.New("exchange rate unavailable")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetRate returns how many units of the target currency one unit of the base
// currency buys. The API publishes one document per base currency with rates
// for every target, keyed by lower-case code.
func (c *Client) GetRate(ctx context.Context, from, to money.Currency) (decimal.Decimal, error) {
	base := strings.ToLower(string(from))
	target := strings.ToLower(string(to))

	if base == target {
		return decimal.NewFromInt(1), nil
	}

	url := fmt.Sprintf("%s/v1/currencies/%s.json", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: unexpected status %d", ErrRateUnavailable, resp.StatusCode)
	}

	// The rates object is keyed by the base currency code, so decode into a
	// generic map first.
	var raw map[string]json.RawMessage

	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("decoding rates: %w", err)
	}

	ratesRaw, ok := raw[base]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rates for %s", ErrRateUnavailable, from)
	}

	var rates map[string]decimal.Decimal

	if err := json.Unmarshal(ratesRaw, &rates); err != nil {
		return decimal.Zero, fmt.Errorf("decoding rates for %s: %w", from, err)
	}

	rate, ok := rates[target]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no rate from %s to %s", ErrRateUnavailable, from, to)
	}

	return rate, nil
}
