package workflow

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// OctasPerAPT 1 APT = 10^8 octas
const OctasPerAPT = 100_000_000

const octasDecimals = 8

var maxOctas = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// IsValidAddress 地址语法校验: 以 0x 开头且长度不小于 10
func IsValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && len(s) >= 10
}

// ParseAmount 解析正数金额
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// IsValidAmount 金额校验
func IsValidAmount(s string) bool {
	_, err := ToOctas(s)
	return err == nil
}

// ToOctas APT 金额按 10^8 精确换算为 octas
func ToOctas(s string) (uint64, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(octasDecimals)) {
		return 0, ErrInvalidAmount
	}
	octas := d.Shift(octasDecimals)
	if octas.GreaterThan(maxOctas) {
		return 0, ErrInvalidAmount
	}
	return octas.BigInt().Uint64(), nil
}

// FormatAPT octas 转为 APT 字符串, 保留 places 位小数
func FormatAPT(octas uint64, places int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(octas), -octasDecimals).StringFixed(places)
}

// TruncateAddress 0x1234...abcd
func TruncateAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
