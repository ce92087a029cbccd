package model

import "time"

// RateLimitWindow 按 (用户, 端点) 维度的滚动计数窗口
// 窗口过期后重建时 requestCount 归 1，未过期则递增；窗口本身不认识上限，
// 上限由调用方按端点配置比较
type RateLimitWindow struct {
	UserID       uint      `gorm:"primaryKey" json:"userId"`
	Endpoint     string    `gorm:"primaryKey;size:100" json:"endpoint"`
	RequestCount int       `gorm:"default:1" json:"requestCount"`
	WindowStart  time.Time `json:"windowStart"`
	ExpiresAt    time.Time `gorm:"index" json:"expiresAt"`
}

func (RateLimitWindow) TableName() string {
	return "rate_limit_windows"
}
