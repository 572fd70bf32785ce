package types

import (
	"time"
)

// User 用户模型
type User struct {
	ID            int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	WalletAddress string     `json:"wallet_address" gorm:"unique;size:66;not null"` // Aptos 长地址
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	LastLogin     *time.Time `json:"last_login"`
	Status        int        `json:"status" gorm:"default:1"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

// JWTClaims JWT声明
type JWTClaims struct {
	SessionID     string `json:"session_id"`
	UserID        int64  `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
}

// APIResponse 统一API响应格式
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError API错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse 简单错误响应格式
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
