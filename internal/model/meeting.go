package model

import (
	"time"

	"gorm.io/gorm"
)

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingOccurred  MeetingStatus = "occurred"
	MeetingCancelled MeetingStatus = "cancelled"
)

type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAccepted  RSVPStatus = "accepted"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPTentative RSVPStatus = "tentative"
)

// Meeting 会话内的预约会议
// 状态机：scheduled -> occurred 或 scheduled -> cancelled，终态不可再变
type Meeting struct {
	UUIDBase
	ConversationID string        `gorm:"index;type:varchar(36);not null" json:"conversationId"`
	Title          string        `gorm:"size:200" json:"title"`
	ScheduledAt    time.Time     `gorm:"index;not null" json:"scheduledAt"`
	Status         MeetingStatus `gorm:"type:enum('scheduled','occurred','cancelled');default:'scheduled'" json:"status"`
	MeetingLink    string        `gorm:"size:255" json:"meetingLink"`
	CreatedBy      uint          `gorm:"index" json:"createdBy"`

	Participants []MeetingParticipant `gorm:"foreignKey:MeetingID" json:"participants,omitempty"`
}

func (Meeting) TableName() string {
	return "meetings"
}

// MeetingParticipant 会议参与者及其 RSVP 状态
type MeetingParticipant struct {
	MeetingID string     `gorm:"primaryKey;type:varchar(36)" json:"meetingId"`
	UserID    uint       `gorm:"primaryKey;index" json:"userId"`
	RSVP      RSVPStatus `gorm:"type:enum('pending','accepted','declined','tentative');default:'pending'" json:"rsvp"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (MeetingParticipant) TableName() string {
	return "meeting_participants"
}

// MeetingReminder 会议提醒。sent 单向 false->true，每条提醒只会派发一次
type MeetingReminder struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MeetingID string     `gorm:"index;type:varchar(36);not null" json:"meetingId"`
	RemindAt  time.Time  `gorm:"index;not null" json:"reminderTime"`
	Sent      bool       `gorm:"default:false;index" json:"sent"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (r *MeetingReminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = GenerateUUID()
	}
	return
}

func (MeetingReminder) TableName() string {
	return "meeting_reminders"
}
