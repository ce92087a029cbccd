package model

import (
	"time"
)

type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
	ConversationEntity ConversationType = "entity"
)

type ParticipantRole string

const (
	RoleOwner  ParticipantRole = "owner"
	RoleMember ParticipantRole = "member"
)

// Conversation 持久会话。可选关联一个外部业务实体（仅存类型标签+不透明ID）
// 归档后只读：不再接收新消息，但历史仍可查询
type Conversation struct {
	UUIDBase
	Title             string           `gorm:"size:200" json:"title"`
	Type              ConversationType `gorm:"type:enum('direct','group','entity');default:'group'" json:"type"`
	RelatedEntityType string           `gorm:"size:50;index:idx_related_entity" json:"relatedEntityType,omitempty"`
	RelatedEntityID   string           `gorm:"size:64;index:idx_related_entity" json:"relatedEntityId,omitempty"`
	Archived          bool             `gorm:"default:false;index" json:"archived"`
	ArchivedBy        *uint            `json:"archivedBy,omitempty"`
	ArchivedAt        *time.Time       `json:"archivedAt,omitempty"`
	LastMessageAt     *time.Time       `gorm:"index" json:"lastMessageAt,omitempty"`
	CreatedBy         uint             `gorm:"index" json:"createdBy"`

	Participants []Participant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participant 会话成员行，维护成员角色、已读游标与未读数
// 未读数只增不减，唯一的清零入口是 UpdateLastReadAt
type Participant struct {
	ConversationID string          `gorm:"primaryKey;type:varchar(36)" json:"conversationId"`
	UserID         uint            `gorm:"primaryKey;index" json:"userId"`
	Role           ParticipantRole `gorm:"type:enum('owner','member');default:'member'" json:"role"`
	LastReadAt     *time.Time      `json:"lastReadAt,omitempty"`
	UnreadCount    uint            `gorm:"default:0" json:"unreadCount"`
	JoinedAt       time.Time       `gorm:"autoCreateTime" json:"joinedAt"`
}

func (Participant) TableName() string {
	return "participants"
}
