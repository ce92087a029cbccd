package model

import (
	"time"

	"gorm.io/gorm"
)

type MessageStatus string

const (
	MessageActive  MessageStatus = "active"
	MessageEdited  MessageStatus = "edited"
	MessageDeleted MessageStatus = "deleted"
)

// Message 消息记录。SenderID 和 ConversationID 创建后不可变
// 软删除通过 status 枚举表达（active/edited/deleted），内容保留用于回执与审计，
// 不使用 gorm 的自动软删除，删除行为由仓储层显式控制
type Message struct {
	ID             string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID string        `gorm:"index;index:idx_conv_created;type:varchar(36);not null" json:"conversationId"`
	SenderID       uint          `gorm:"index;not null" json:"senderId"`
	Content        string        `gorm:"type:text" json:"content"`
	Status         MessageStatus `gorm:"type:enum('active','edited','deleted');default:'active'" json:"status"`
	EditedAt       *time.Time    `json:"editedAt,omitempty"`
	DeletedAt      *time.Time    `json:"deletedAt,omitempty"`
	CreatedAt      time.Time     `gorm:"index:idx_conv_created" json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	Attachments []File `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = GenerateUUID()
	}
	return
}

func (Message) TableName() string {
	return "messages"
}
