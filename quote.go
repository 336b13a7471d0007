package lotkeeper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// QuoteProvider fetches last traded prices from a Yahoo v8 chart endpoint.
type QuoteProvider struct {
	client  *http.Client
	baseURL string
}

// NewQuoteProvider returns a provider against the public Yahoo endpoint.
func NewQuoteProvider() *QuoteProvider {
	return &QuoteProvider{
		client:  &http.Client{Timeout: 8 * time.Second},
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
	}
}

// LastPrice returns the regular-market price for ticker.
func (p *QuoteProvider) LastPrice(ctx context.Context, ticker string) (Money, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", p.baseURL, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Money{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Money{}, fmt.Errorf("quote for %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Money{}, fmt.Errorf("quote for %s: unexpected status %s", ticker, resp.Status)
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Money{}, fmt.Errorf("quote for %s: %w", ticker, err)
	}
	value, err := jsonpath.Get("$.chart.result[0].meta.regularMarketPrice", payload)
	if err != nil {
		return Money{}, fmt.Errorf("quote for %s: %w", ticker, err)
	}
	price, ok := value.(float64)
	if !ok {
		return Money{}, fmt.Errorf("quote for %s: unexpected price payload %v", ticker, value)
	}
	return USD(price), nil
}
