package workflow

import "errors"

// 操作门控错误
var (
	ErrNotConnected     = errors.New("wallet not connected")
	ErrReadOnly         = errors.New("wallet cannot sign transactions")
	ErrBusy             = errors.New("another action is in progress")
	ErrStepLocked       = errors.New("action not available at current step")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownAction    = errors.New("unknown action")
	ErrInputLocked      = errors.New("input is locked after its step completed")
)
