package wallet

import (
	"sync/atomic"
	"time"

	"digitalwill-backend/internal/workflow"

	"github.com/aptos-labs/aptos-go-sdk"
)

// Session 钱包会话
type Session struct {
	ID        string
	UserID    int64
	Address   string // 32 字节长地址
	Variant   workflow.Variant
	CreatedAt time.Time

	account *aptos.Account
	closed  atomic.Bool
}

// NewSession 创建会话, account 为空表示只读观察地址
func NewSession(id, address string, variant workflow.Variant, account *aptos.Account) *Session {
	return &Session{
		ID:        id,
		Address:   address,
		Variant:   variant,
		CreatedAt: time.Now(),
		account:   account,
	}
}

// Connected 会话是否仍然连接
func (s *Session) Connected() bool {
	return !s.closed.Load()
}

// CanSign 是否可签名交易
func (s *Session) CanSign() bool {
	return s.account != nil
}

// Signer 交易签名者, 只读会话返回 nil
func (s *Session) Signer() aptos.TransactionSigner {
	if s.account == nil {
		return nil
	}
	return s.account
}

func (s *Session) close() {
	s.closed.Store(true)
}
