package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/database"
	"digitalwill-backend/pkg/logger"
)

// Service 价格服务接口
type Service interface {
	Start(ctx context.Context) error
	Stop() error
	GetSnapshot(ctx context.Context) (*types.PriceSnapshot, error)
	GetPrice(ctx context.Context) (*types.PriceResponse, error)
	Refresh(ctx context.Context) (*types.PriceResponse, error)
	GetHistory(ctx context.Context, days int) (*types.PriceHistoryResponse, error)
}

// Recorder 价格刷新指标
type Recorder interface {
	ObservePriceUpdate(status string)
}

// service 价格服务实现
type service struct {
	config   *config.PriceConfig
	fetcher  Fetcher
	cache    database.Cache
	recorder Recorder
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewService 创建新的价格服务
func NewService(cfg *config.PriceConfig, fetcher Fetcher, cache database.Cache, recorder Recorder) Service {
	return &service{
		config:   cfg,
		fetcher:  fetcher,
		cache:    cache,
		recorder: recorder,
		stopCh:   make(chan struct{}),
	}
}

// Start 启动价格服务
func (s *service) Start(ctx context.Context) error {
	if !strings.EqualFold(s.config.Provider, "coingecko") {
		return fmt.Errorf("unsupported price provider: %s", s.config.Provider)
	}
	logger.Info("Price service starting", "provider", s.config.Provider, "coin", s.config.CoinID, "interval", s.config.UpdateInterval)

	// 立即执行一次价格更新
	if _, err := s.update(ctx); err != nil {
		logger.Error("Initial price update failed", err)
	}

	s.ticker = time.NewTicker(s.config.UpdateInterval)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				if _, err := s.update(ctx); err != nil {
					logger.Error("Price update failed", err)
				}
			case <-ctx.Done():
				logger.Info("Price service context cancelled")
				return
			case <-s.stopCh:
				logger.Info("Price service stopping")
				return
			}
		}
	}()

	logger.Info("Price service started successfully")
	return nil
}

// Stop 停止价格服务
func (s *service) Stop() error {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
	s.wg.Wait()

	logger.Info("Price service stopped")
	return nil
}

func (s *service) snapshotKey() string {
	return s.config.CachePrefix + s.config.CoinID
}

func (s *service) historyKey(days int) string {
	return fmt.Sprintf("%shistory:%s:%d", s.config.CachePrefix, s.config.CoinID, days)
}

// GetSnapshot 读取缓存的行情快照
func (s *service) GetSnapshot(ctx context.Context) (*types.PriceSnapshot, error) {
	data, err := s.cache.Get(ctx, s.snapshotKey())
	if err != nil {
		if errors.Is(err, database.ErrCacheMiss) {
			return nil, ErrPriceUnavailable
		}
		logger.Error("Failed to get price from cache", err, "coin", s.config.CoinID)
		return nil, err
	}

	var snapshot types.PriceSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.Error("Failed to unmarshal price data", err, "coin", s.config.CoinID)
		return nil, err
	}
	return &snapshot, nil
}

// GetPrice 价格面板数据
func (s *service) GetPrice(ctx context.Context) (*types.PriceResponse, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &types.PriceResponse{Snapshot: snapshot, Display: Display(snapshot)}, nil
}

// Refresh 立即拉取最新行情
func (s *service) Refresh(ctx context.Context) (*types.PriceResponse, error) {
	snapshot, err := s.update(ctx)
	if err != nil {
		return nil, err
	}
	return &types.PriceResponse{Snapshot: snapshot, Display: Display(snapshot)}, nil
}

// GetHistory 历史价格柱状图
func (s *service) GetHistory(ctx context.Context, days int) (*types.PriceHistoryResponse, error) {
	if days == 0 {
		days = s.config.HistoryDays
	}
	if days < 1 || days > 365 {
		return nil, ErrInvalidDays
	}

	key := s.historyKey(days)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var cached types.PriceHistoryResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	points, err := s.fetcher.FetchHistory(ctx, s.config.CoinID, days)
	if err != nil {
		logger.Error("GetHistory Error: ", err, "coin", s.config.CoinID, "days", days)
		return nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	resp := &types.PriceHistoryResponse{
		CoinID: s.config.CoinID,
		Days:   days,
		Bars:   HistoryBars(dailyPoints(points, days), days),
	}
	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, data, s.config.UpdateInterval); err != nil {
			logger.Error("Failed to save price history to cache", err, "coin", s.config.CoinID)
		}
	}
	return resp, nil
}

// update 拉取行情并写入缓存
func (s *service) update(ctx context.Context) (*types.PriceSnapshot, error) {
	snapshot, err := s.fetcher.FetchMarket(ctx, s.config.CoinID)
	if err != nil {
		s.observe("error")
		return nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.observe("error")
		return nil, fmt.Errorf("failed to marshal price data: %w", err)
	}

	// 过期时间为更新间隔的2倍
	if err := s.cache.Set(ctx, s.snapshotKey(), data, s.config.UpdateInterval*2); err != nil {
		logger.Error("Failed to save price to cache", err, "coin", s.config.CoinID)
	}

	s.observe("success")
	logger.Info("Price updated", "coin", s.config.CoinID, "price", snapshot.CurrentPriceUSD)
	return snapshot, nil
}

func (s *service) observe(status string) {
	if s.recorder != nil {
		s.recorder.ObservePriceUpdate(status)
	}
}
