package types

import "time"

// PriceSnapshot APT 市场数据快照
type PriceSnapshot struct {
	CoinID                   string    `json:"coin_id"`
	CurrentPriceUSD          float64   `json:"current_price_usd"`
	High24hUSD               float64   `json:"high_24h_usd"`
	Low24hUSD                float64   `json:"low_24h_usd"`
	MarketCapUSD             float64   `json:"market_cap_usd"`
	TotalVolumeUSD           float64   `json:"total_volume_usd"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	PriceChangePercentage7d  float64   `json:"price_change_percentage_7d"`
	LastUpdated              time.Time `json:"last_updated"`
}

// PriceDisplay 价格面板展示字段
type PriceDisplay struct {
	Price     string `json:"price"`      // $4.90
	High24h   string `json:"high_24h"`   // $5.01
	Low24h    string `json:"low_24h"`    // $4.70
	MarketCap string `json:"market_cap"` // $3.12B
	Volume    string `json:"volume"`     // $85.4M
	Change24h string `json:"change_24h"` // +1.23%
	Change7d  string `json:"change_7d"`
}

// PriceResponse 价格面板响应
type PriceResponse struct {
	Snapshot *PriceSnapshot `json:"snapshot"`
	Display  PriceDisplay   `json:"display"`
}

// PricePoint 历史价格点
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceBar 价格柱
type PriceBar struct {
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	Height float64   `json:"height"` // 10..100 百分比
	Label  string    `json:"label,omitempty"`
}

// PriceHistoryResponse 历史价格响应
type PriceHistoryResponse struct {
	CoinID string     `json:"coin_id"`
	Days   int        `json:"days"`
	Bars   []PriceBar `json:"bars"`
}
