package price

import (
	"fmt"
	"math"
	"time"

	"digitalwill-backend/internal/types"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatUSD $1,234.56
func FormatUSD(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// FormatPercent +1.23%
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatBillions $3.12B
func FormatBillions(v float64) string {
	return printer.Sprintf("$%.2fB", v/1e9)
}

// FormatMillions $85.4M
func FormatMillions(v float64) string {
	return printer.Sprintf("$%.1fM", v/1e6)
}

// Display 价格面板展示字段
func Display(s *types.PriceSnapshot) types.PriceDisplay {
	if s == nil {
		return types.PriceDisplay{}
	}
	return types.PriceDisplay{
		Price:     FormatUSD(s.CurrentPriceUSD),
		High24h:   FormatUSD(s.High24hUSD),
		Low24h:    FormatUSD(s.Low24hUSD),
		MarketCap: FormatBillions(s.MarketCapUSD),
		Volume:    FormatMillions(s.TotalVolumeUSD),
		Change24h: FormatPercent(s.PriceChangePercentage24h),
		Change7d:  FormatPercent(s.PriceChangePercentage7d),
	}
}

const (
	minBarHeight = 10.0
	maxBarHeight = 100.0
)

// HistoryBars 将价格序列归一化为 10..100 的柱高
func HistoryBars(points []types.PricePoint, days int) []types.PriceBar {
	if len(points) == 0 {
		return []types.PriceBar{}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Price)
		hi = math.Max(hi, p.Price)
	}

	bars := make([]types.PriceBar, len(points))
	for i, p := range points {
		height := maxBarHeight
		if hi > lo {
			height = minBarHeight + (p.Price-lo)/(hi-lo)*(maxBarHeight-minBarHeight)
		}
		bars[i] = types.PriceBar{
			Time:   p.Time,
			Price:  p.Price,
			Height: math.Round(height*100) / 100,
		}
	}

	bars[0].Label = fmt.Sprintf("%dd ago", days)
	if len(bars) > 2 {
		bars[len(bars)/2].Label = fmt.Sprintf("%dd ago", days/2)
	}
	bars[len(bars)-1].Label = "Today"
	return bars
}

// dailyPoints 每天保留最后一个价格点, 最多 days 个
func dailyPoints(points []types.PricePoint, days int) []types.PricePoint {
	byDay := make([]types.PricePoint, 0, days)
	for _, p := range points {
		day := p.Time.UTC().Truncate(24 * time.Hour)
		if n := len(byDay); n > 0 && byDay[n-1].Time.UTC().Truncate(24*time.Hour).Equal(day) {
			byDay[n-1] = p
			continue
		}
		byDay = append(byDay, p)
	}
	if len(byDay) > days {
		byDay = byDay[len(byDay)-days:]
	}
	return byDay
}
