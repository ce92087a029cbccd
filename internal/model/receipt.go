package model

import "time"

// Receipt 每条消息每个接收者一行的送达/已读回执
// readAt 一经写入永不清除；允许未送达先已读（客户端可能只上报已读）
type Receipt struct {
	MessageID   string     `gorm:"primaryKey;type:varchar(36)" json:"messageId"`
	UserID      uint       `gorm:"primaryKey;index" json:"userId"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (Receipt) TableName() string {
	return "receipts"
}
