package types

import "time"

// WillRecord 链上遗嘱记录(只读)
type WillRecord struct {
	Owner        string `json:"owner"`
	Recipient    string `json:"recipient"`
	Amount       uint64 `json:"amount"`
	LastPingTime uint64 `json:"last_ping_time"`
	TimeoutSecs  uint64 `json:"timeout_secs"`
}

// WillRecordResponse 链上记录查询响应
type WillRecordResponse struct {
	Owner     string      `json:"owner"`
	Exists    bool        `json:"exists"`
	Will      *WillRecord `json:"will,omitempty"`
	FromCache bool        `json:"from_cache"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// UpdateInputsRequest 更新表单输入
type UpdateInputsRequest struct {
	Recipient *string `json:"recipient"`
	Amount    *string `json:"amount"`
}

// GateResult 操作可用性
type GateResult struct {
	Action  string `json:"action"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}
