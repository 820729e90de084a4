package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/config"
	"github.com/wonny/investsim/pkg/httputil"
	"github.com/wonny/investsim/pkg/logger"
)

// Client reads spot prices from the CoinGecko /simple/price endpoint
// ⭐ SSOT: CoinGecko 호출은 이 클라이언트에서만
type Client struct {
	httpClient    *httputil.Client
	logger        *logger.Logger
	baseURL       string
	quoteCurrency string
}

// priceResponse maps coin id → currency → price
type priceResponse map[string]map[string]float64

// NewHTTPClient builds the throttled, breaker-guarded transport for CoinGecko.
// The public tier allows roughly 30 calls per minute.
func NewHTTPClient(cfg config.CoinGeckoConfig, log *logger.Logger) *httputil.Client {
	c := httputil.New(log).
		WithRateLimit(cfg.RPS, 1).
		WithCircuitBreaker(httputil.DefaultBreakerConfig("coingecko")).
		WithHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		c.WithHeader("x-cg-demo-api-key", cfg.APIKey)
	}
	return c
}

// NewClient creates a new CoinGecko client quoting in quoteCurrency
func NewClient(httpClient *httputil.Client, cfg config.CoinGeckoConfig, quoteCurrency string, log *logger.Logger) *Client {
	if quoteCurrency == "" {
		quoteCurrency = "brl"
	}
	return &Client{
		httpClient:    httpClient,
		logger:        log,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		quoteCurrency: strings.ToLower(quoteCurrency),
	}
}

// QuoteCurrency returns the vs_currency used for every quote
func (c *Client) QuoteCurrency() string {
	return c.quoteCurrency
}

// SpotPrices returns id → price for every id CoinGecko knows.
// Unknown ids are simply absent; an empty map is a valid result.
func (c *Client) SpotPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", c.quoteCurrency)
	fullURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, params.Encode())

	var resp priceResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("coingecko simple/price: %w: %w", contracts.ErrExternalFetchFailure, err)
	}

	for id, quotes := range resp {
		if price, ok := quotes[c.quoteCurrency]; ok {
			prices[id] = price
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(ids),
		"received":  len(prices),
		"currency":  c.quoteCurrency,
	}).Debug("Fetched CoinGecko spot prices")

	return prices, nil
}
