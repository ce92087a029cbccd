package model

import "time"

// ConversationPreference 用户在单个会话上的通知偏好，get-or-create 后更新
type ConversationPreference struct {
	UserID             uint      `gorm:"primaryKey;index" json:"userId"`
	ConversationID     string    `gorm:"primaryKey;type:varchar(36)" json:"conversationId"`
	Muted              bool      `gorm:"default:false" json:"muted"`
	EmailNotifications bool      `gorm:"default:true" json:"emailNotifications"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (ConversationPreference) TableName() string {
	return "conversation_preferences"
}

// ConversationPin 用户置顶的会话及展示顺序，重复置顶只更新顺序
type ConversationPin struct {
	UserID         uint      `gorm:"primaryKey;index" json:"userId"`
	ConversationID string    `gorm:"primaryKey;type:varchar(36)" json:"conversationId"`
	DisplayOrder   int       `gorm:"default:0" json:"displayOrder"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (ConversationPin) TableName() string {
	return "conversation_pins"
}

// ConversationLabel 用户对会话的私有标签，任何接口不得跨用户暴露
type ConversationLabel struct {
	ConversationID string    `gorm:"primaryKey;type:varchar(36)" json:"conversationId"`
	UserID         uint      `gorm:"primaryKey;index" json:"userId"`
	Label          string    `gorm:"primaryKey;size:50" json:"label"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (ConversationLabel) TableName() string {
	return "conversation_labels"
}
