package model

import (
	"time"

	"gorm.io/gorm"
)

type ModerationActionType string

const (
	ModerationFlag     ModerationActionType = "flag"
	ModerationHide     ModerationActionType = "hide"
	ModerationUnhide   ModerationActionType = "unhide"
	ModerationWarn     ModerationActionType = "warn"
	ModerationEscalate ModerationActionType = "escalate"
)

// ModerationAction 针对消息的治理操作，只追加、永不修改或删除
type ModerationAction struct {
	ID         string               `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MessageID  string               `gorm:"index;type:varchar(36);not null" json:"messageId"`
	ActorID    uint                 `gorm:"index;not null" json:"actorId"`
	ActionType ModerationActionType `gorm:"type:enum('flag','hide','unhide','warn','escalate');not null" json:"actionType"`
	Reason     string               `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

func (a *ModerationAction) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = GenerateUUID()
	}
	return
}

func (ModerationAction) TableName() string {
	return "moderation_actions"
}
