package repository

import (
	"errors"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MeetingRepository struct {
	DB *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{DB: db}
}

// CreateWithParticipants 会议与参与者行同事务落库，RSVP 初始均为 pending
func (r *MeetingRepository) CreateWithParticipants(meeting *model.Meeting, participantIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meeting).Error; err != nil {
			return err
		}

		if len(participantIDs) == 0 {
			return nil
		}

		participants := make([]model.MeetingParticipant, 0, len(participantIDs))
		for _, uid := range participantIDs {
			participants = append(participants, model.MeetingParticipant{
				MeetingID: meeting.ID,
				UserID:    uid,
				RSVP:      model.RSVPPending,
			})
		}
		return tx.Create(&participants).Error
	})
}

func (r *MeetingRepository) FindByID(id string) (*model.Meeting, error) {
	var meeting model.Meeting
	err := r.DB.Preload("Participants").First(&meeting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMeetingNotFound
	}
	return &meeting, err
}

func (r *MeetingRepository) ListForConversation(convID string, limit, offset int) ([]model.Meeting, int64, error) {
	var meetings []model.Meeting
	var total int64

	db := r.DB.Model(&model.Meeting{}).Where("conversation_id = ?", convID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Participants").
		Order("scheduled_at ASC").
		Limit(limit).Offset(offset).
		Find(&meetings).Error
	return meetings, total, err
}

// UpdateStatus 条件更新做状态机守卫：只有 scheduled 能进入终态，
// 并发竞争或非法转移都会表现为 0 行受影响
func (r *MeetingRepository) UpdateStatus(meetingID string, target model.MeetingStatus) error {
	result := r.DB.Model(&model.Meeting{}).
		Where("id = ? AND status = ?", meetingID, model.MeetingScheduled).
		Update("status", target)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&model.Meeting{}).Where("id = ?", meetingID).Count(&count)
		if count == 0 {
			return util.ErrMeetingNotFound
		}
		return util.ErrInvalidMeetingTransition
	}
	return nil
}

// UpsertRSVP 参与者重复表态直接覆盖
func (r *MeetingRepository) UpsertRSVP(meetingID string, userID uint, rsvp model.RSVPStatus) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"rsvp": rsvp, "updated_at": time.Now()}),
	}).Create(&model.MeetingParticipant{
		MeetingID: meetingID,
		UserID:    userID,
		RSVP:      rsvp,
	}).Error
}

func (r *MeetingRepository) GetParticipant(meetingID string, userID uint) (*model.MeetingParticipant, error) {
	var p model.MeetingParticipant
	err := r.DB.Where("meeting_id = ? AND user_id = ?", meetingID, userID).First(&p).Error
	return &p, err
}

func (r *MeetingRepository) CreateReminder(reminder *model.MeetingReminder) error {
	return r.DB.Create(reminder).Error
}

func (r *MeetingRepository) FindReminder(id string) (*model.MeetingReminder, error) {
	var reminder model.MeetingReminder
	err := r.DB.First(&reminder, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrReminderNotFound
	}
	return &reminder, err
}

// PendingReminders 到点且未派发的提醒，只关联未取消的会议
func (r *MeetingRepository) PendingReminders(now time.Time, limit int) ([]model.MeetingReminder, error) {
	var reminders []model.MeetingReminder
	err := r.DB.
		Joins("JOIN meetings ON meetings.id = meeting_reminders.meeting_id").
		Where("meeting_reminders.sent = ? AND meeting_reminders.remind_at <= ?", false, now).
		Where("meetings.status <> ?", model.MeetingCancelled).
		Order("meeting_reminders.remind_at ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

// MarkReminderSent sent 标志单向翻转，条件更新保证每条提醒只派发一次
func (r *MeetingRepository) MarkReminderSent(reminderID string) error {
	now := time.Now()
	result := r.DB.Model(&model.MeetingReminder{}).
		Where("id = ? AND sent = ?", reminderID, false).
		Updates(map[string]interface{}{
			"sent":    true,
			"sent_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&model.MeetingReminder{}).Where("id = ?", reminderID).Count(&count)
		if count == 0 {
			return util.ErrReminderNotFound
		}
		return util.ErrReminderAlreadySent
	}
	return nil
}
