package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/logger"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

// Fetcher 行情数据源
type Fetcher interface {
	FetchMarket(ctx context.Context, coinID string) (*types.PriceSnapshot, error)
	FetchHistory(ctx context.Context, coinID string, days int) ([]types.PricePoint, error)
}

// coinGeckoFetcher CoinGecko API 客户端
type coinGeckoFetcher struct {
	config     *config.PriceConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewCoinGeckoFetcher 创建 CoinGecko 数据源
func NewCoinGeckoFetcher(cfg *config.PriceConfig) Fetcher {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &coinGeckoFetcher{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// coinResponse /coins/{id} 响应中用到的字段
type coinResponse struct {
	ID         string `json:"id"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		PriceChangePercentage7d  float64            `json:"price_change_percentage_7d"`
	} `json:"market_data"`
	LastUpdated time.Time `json:"last_updated"`
}

// marketChartResponse /coins/{id}/market_chart 响应
type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

func (f *coinGeckoFetcher) FetchMarket(ctx context.Context, coinID string) (*types.PriceSnapshot, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var resp coinResponse
	if err := f.get(ctx, "/coins/"+url.PathEscape(coinID), q, &resp); err != nil {
		return nil, err
	}

	usd, ok := resp.MarketData.CurrentPrice["usd"]
	if !ok {
		return nil, fmt.Errorf("coingecko response for %s has no usd price", coinID)
	}
	lastUpdated := resp.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = time.Now()
	}
	return &types.PriceSnapshot{
		CoinID:                   coinID,
		CurrentPriceUSD:          usd,
		High24hUSD:               resp.MarketData.High24h["usd"],
		Low24hUSD:                resp.MarketData.Low24h["usd"],
		MarketCapUSD:             resp.MarketData.MarketCap["usd"],
		TotalVolumeUSD:           resp.MarketData.TotalVolume["usd"],
		PriceChangePercentage24h: resp.MarketData.PriceChangePercentage24h,
		PriceChangePercentage7d:  resp.MarketData.PriceChangePercentage7d,
		LastUpdated:              lastUpdated,
	}, nil
}

func (f *coinGeckoFetcher) FetchHistory(ctx context.Context, coinID string, days int) ([]types.PricePoint, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")

	var resp marketChartResponse
	if err := f.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", q, &resp); err != nil {
		return nil, err
	}

	points := make([]types.PricePoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		points = append(points, types.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

// get 限流后请求, 对网络错误与 429/5xx 重试
func (f *coinGeckoFetcher) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := f.config.BaseURL + path + "?" + query.Encode()

	attempts := f.config.MaxRetry
	if attempts == 0 {
		attempts = 1
	}

	return retry.Do(func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if f.config.APIKey != "" {
			req.Header.Set("x-cg-demo-api-key", f.config.APIKey)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to make request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("coingecko request failed with status: %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return statusErr
			}
			return retry.Unrecoverable(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(f.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("CoinGecko request retry", "attempt", n+1, "path", path, "error", err)
		}),
	)
}
