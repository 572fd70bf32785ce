package types

import "time"

// 操作记录状态
const (
	ActivityStatusCompleted = "completed"
	ActivityStatusFailed    = "failed"
)

// WillActivity 遗嘱操作记录
type WillActivity struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerAddress string    `json:"owner_address" gorm:"size:66;not null;index"`
	Action       string    `json:"action" gorm:"size:32;not null"`
	Variant      string    `json:"variant" gorm:"size:16;not null"`
	AmountOctas  uint64    `json:"amount_octas" gorm:"default:0"`
	Recipient    string    `json:"recipient" gorm:"size:66"`
	TxHash       string    `json:"tx_hash" gorm:"size:66"`
	Status       string    `json:"status" gorm:"size:16;not null"`
	ErrorMessage string    `json:"error_message" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 设置表名
func (WillActivity) TableName() string {
	return "will_activities"
}

// ActivityListRequest 操作记录分页请求
type ActivityListRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ActivityItem 操作记录展示项
type ActivityItem struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Date   string    `json:"date"`
	Amount string    `json:"amount"`
	Type   string    `json:"type"` // sent | received
	Status string    `json:"status"`
	TxHash string    `json:"tx_hash,omitempty"`
	Time   time.Time `json:"time"`
}

// ActivityListResponse 操作记录分页响应
type ActivityListResponse struct {
	Items    []ActivityItem `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
