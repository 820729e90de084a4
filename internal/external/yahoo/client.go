package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/config"
	"github.com/wonny/investsim/pkg/httputil"
	"github.com/wonny/investsim/pkg/logger"
)

// Client reads daily closes from the Yahoo Finance v8 chart API
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	baseURL      string
	historyRange string
}

// chartResponse is the subset of /v8/finance/chart we use.
// Closes are pointers because Yahoo emits null for missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewHTTPClient builds the throttled, breaker-guarded transport for Yahoo
func NewHTTPClient(cfg config.YahooConfig, log *logger.Logger) *httputil.Client {
	c := httputil.New(log).
		WithRateLimit(cfg.RPS, 1).
		WithCircuitBreaker(httputil.DefaultBreakerConfig("yahoo"))
	if cfg.UserAgent != "" {
		c.WithHeader("User-Agent", cfg.UserAgent)
	}
	return c.WithHeader("Accept", "application/json")
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, historyRange string, log *logger.Logger) *Client {
	if historyRange == "" {
		historyRange = "1mo"
	}
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		historyRange: historyRange,
	}
}

// History returns the daily closes of symbol over the configured range, oldest first
func (c *Client) History(ctx context.Context, symbol string) ([]float64, error) {
	params := url.Values{}
	params.Set("range", c.historyRange)
	params.Set("interval", "1d")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, contracts.ErrMissingPriceData)
		}
		return nil, fmt.Errorf("yahoo %s: %w: %w", symbol, contracts.ErrExternalFetchFailure, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %w", symbol, resp.Chart.Error.Description, contracts.ErrMissingPriceData)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: no chart result: %w", symbol, contracts.ErrMissingPriceData)
	}

	raw := resp.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == nil || math.IsNaN(*v) || *v <= 0 {
			continue
		}
		closes = append(closes, *v)
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("yahoo %s: empty close series: %w", symbol, contracts.ErrMissingPriceData)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"points":     len(closes),
		"last_close": closes[len(closes)-1],
	}).Debug("Fetched Yahoo history")

	return closes, nil
}
