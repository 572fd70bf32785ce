package price

import "errors"

var (
	ErrPriceUnavailable = errors.New("price data unavailable")
	ErrInvalidDays      = errors.New("days must be between 1 and 365")
)
