package will

import "errors"

var (
	ErrSessionNotFound = errors.New("will session not found")
	ErrInvalidInput    = errors.New("invalid input")
)
