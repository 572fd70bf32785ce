package types

import "time"

// WalletConnectRequest 钱包连接请求
// Account 为本地钱包账户名(可签名), Address 为只读观察地址, 二选一
type WalletConnectRequest struct {
	Account string `json:"account"`
	Address string `json:"address"`
	Variant string `json:"variant"` // create | deposit, 为空时使用默认流程
}

// WalletConnectResponse 钱包连接响应
type WalletConnectResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	SessionID   string    `json:"session_id"`
	Address     string    `json:"address"`
	CanSign     bool      `json:"can_sign"`
	Variant     string    `json:"variant"`
	User        User      `json:"user"`
}

// WalletSummary 钱包卡片数据
type WalletSummary struct {
	Address          string   `json:"address"`
	TruncatedAddress string   `json:"truncated_address"`
	BalanceOctas     uint64   `json:"balance_octas"`
	Balance          string   `json:"balance"`         // "1.2345 APT"
	BalanceUSD       *float64 `json:"balance_usd"`     // 价格不可用时为空
	BalanceUSDText   string   `json:"balance_usd_text"`
	Change24h        string   `json:"change_24h"` // "+1.23%"
	CanSign          bool     `json:"can_sign"`
}
