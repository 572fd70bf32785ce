package blockchain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidAddress = errors.New("invalid aptos address")
	ErrNoSigner       = errors.New("signer is required")
	ErrMalformedWill  = errors.New("malformed will record")
	ErrUnknownAccount = errors.New("unknown wallet account")
)

// VMError 交易在链上执行失败
type VMError struct {
	Function string
	TxHash   string
	Status   string
}

func (e *VMError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Function, e.Status)
}

// Move abort in 0x1::will: E_NO_WILL(0x60001): ...
var abortPattern = regexp.MustCompile(`Move abort in (0x[0-9a-fA-F]+)::(\w+): (?:(\w+)\()?(0x[0-9a-fA-F]+)\)?`)

// AbortCode 从错误文本中提取 Move abort 码, 如 "E_NO_WILL(0x60001)" 或 "0x60001"
func AbortCode(text string) (string, bool) {
	m := abortPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if m[3] != "" {
		return m[3] + "(" + m[4] + ")", true
	}
	return m[4], true
}
