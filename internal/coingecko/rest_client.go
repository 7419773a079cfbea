package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"crypto-portfolio-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.coingecko.com/api/v3"
	apiKeyHeader     = "x-cg-demo-api-key"
	orderByMarketCap = "market_cap_desc"
)

// ErrFetchFailed wraps every failure to obtain market data from upstream.
var ErrFetchFailed = errors.New("failed to fetch market data")

// MarketClient is the market data source used by the HTTP layer.
type MarketClient interface {
	GetMarkets(ctx context.Context) ([]Market, error)
}

// RestClient is a client for the CoinGecko REST API.
// It implements the MarketClient interface.
type RestClient struct {
	client     *resty.Client
	apiKey     string
	vsCurrency string
	perPage    int
	maxRetries int
	logger     *zap.Logger
	limiter    *rate.Limiter
}

// ensure RestClient implements the interface
var _ MarketClient = (*RestClient)(nil)

// NewRestClient creates a new CoinGecko REST API client.
func NewRestClient(cfg *config.CoinGecko, logger *zap.Logger) *RestClient {
	url := cfg.BaseURL
	if url == "" {
		url = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(url).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	// rate.Limit is requests per second.
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	vsCurrency := cfg.VsCurrency
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	logger = logger.Named("coingecko")
	logger.Info("Using CoinGecko API", zap.String("base_url", url))

	return &RestClient{
		client:     client,
		apiKey:     cfg.ApiKey,
		vsCurrency: vsCurrency,
		perPage:    perPage,
		maxRetries: maxRetries,
		logger:     logger,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// Market is one entry of the /coins/markets listing, kept exactly as the
// upstream sent it so that every field reaches the client unchanged.
type Market = json.RawMessage

// GetMarkets fetches the top assets by market capitalization, largest first.
func (c *RestClient) GetMarkets(ctx context.Context) ([]Market, error) {
	var markets []Market

	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": c.vsCurrency,
			"order":       orderByMarketCap,
			"per_page":    strconv.Itoa(c.perPage),
			"page":        "1",
			"sparkline":   "false",
		}).
		SetResult(&markets)
	if c.apiKey != "" {
		req.SetHeader(apiKeyHeader, c.apiKey)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/coins/markets", req)
	if err != nil {
		c.logger.Error("Failed to get markets", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	result := resp.Result().(*[]Market)
	c.logger.Debug("Fetched markets", zap.Int("count", len(*result)))
	return *result, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	attempts := 0

	for i := 0; i < c.maxRetries; i++ {
		attempts++
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err != nil {
			// Network or other client-side errors
			shouldRetry = true
		} else {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
			err = fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if !shouldRetry || i == c.maxRetries-1 {
			break
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if attempts > 1 {
		return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
	}
	return nil, err
}
