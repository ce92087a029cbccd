package service

import (
	"errors"
	"fmt"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"
	"team_collab_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValidTransition 会议状态机：scheduled 是唯一的非终态
func ValidTransition(from, to model.MeetingStatus) bool {
	if from != model.MeetingScheduled {
		return false
	}
	return to == model.MeetingOccurred || to == model.MeetingCancelled
}

type MeetingService struct {
	MeetingRepo *repository.MeetingRepository
	ConvRepo    *repository.ConversationRepository
	UserRepo    *repository.UserRepository
	Email       *EmailService
}

func NewMeetingService(meetingRepo *repository.MeetingRepository, convRepo *repository.ConversationRepository, userRepo *repository.UserRepository, email *EmailService) *MeetingService {
	return &MeetingService{
		MeetingRepo: meetingRepo,
		ConvRepo:    convRepo,
		UserRepo:    userRepo,
		Email:       email,
	}
}

// Schedule 在会话内预约会议，参与者默认是会话全部成员
// 邀请邮件异步发送，失败只记日志不影响预约结果
func (s *MeetingService) Schedule(meeting *model.Meeting, creatorID uint) (*model.Meeting, error) {
	if _, err := s.ConvRepo.GetParticipant(meeting.ConversationID, creatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(meeting.ConversationID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, util.ErrConversationNotFound
			}
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	participantIDs, err := s.ConvRepo.GetParticipantIDsCached(meeting.ConversationID)
	if err != nil {
		return nil, err
	}

	meeting.Status = model.MeetingScheduled
	meeting.CreatedBy = creatorID
	if err := s.MeetingRepo.CreateWithParticipants(meeting, participantIDs); err != nil {
		return nil, err
	}

	go s.sendInvites(meeting, participantIDs)

	return s.MeetingRepo.FindByID(meeting.ID)
}

func (s *MeetingService) sendInvites(meeting *model.Meeting, participantIDs []uint) {
	users, err := s.UserRepo.FindByIDs(participantIDs)
	if err != nil {
		logger.Log.Error("Failed to load meeting invitees", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("会议邀请：%s", meeting.Title)
	content := fmt.Sprintf("<p>您被邀请参加会议 <b>%s</b></p><p>时间：%s</p><p>链接：%s</p>",
		meeting.Title, meeting.ScheduledAt.Format(util.TimeFormat), meeting.MeetingLink)

	for _, u := range users {
		if u.ID == meeting.CreatedBy {
			continue
		}
		if err := s.Email.Send(u.Name, u.Email, subject, content); err != nil {
			logger.Log.Warn("Failed to send meeting invite",
				zap.String("meetingID", meeting.ID),
				zap.Uint("userID", u.ID),
				zap.Error(err))
		}
	}
}

func (s *MeetingService) Get(meetingID string, userID uint) (*model.Meeting, error) {
	meeting, err := s.MeetingRepo.FindByID(meetingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ConvRepo.GetParticipant(meeting.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}
	return meeting, nil
}

func (s *MeetingService) ListForConversation(convID string, userID uint, limit, offset int) ([]model.Meeting, int64, error) {
	if _, err := s.ConvRepo.GetParticipant(convID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, 0, util.ErrConversationNotFound
			}
			return nil, 0, util.ErrNotParticipant
		}
		return nil, 0, err
	}
	return s.MeetingRepo.ListForConversation(convID, limit, offset)
}

// UpdateStatus 只有创建者能推进状态；守卫更新拦住并发和非法转移
func (s *MeetingService) UpdateStatus(meetingID string, userID uint, target model.MeetingStatus) (*model.Meeting, error) {
	meeting, err := s.MeetingRepo.FindByID(meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.CreatedBy != userID {
		return nil, util.ErrNotParticipant
	}
	if !ValidTransition(meeting.Status, target) {
		return nil, util.ErrInvalidMeetingTransition
	}

	if err := s.MeetingRepo.UpdateStatus(meetingID, target); err != nil {
		return nil, err
	}
	return s.MeetingRepo.FindByID(meetingID)
}

// RSVP 参与者表态，重复表态直接覆盖
func (s *MeetingService) RSVP(meetingID string, userID uint, rsvp model.RSVPStatus) (*model.MeetingParticipant, error) {
	meeting, err := s.MeetingRepo.FindByID(meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == model.MeetingCancelled {
		return nil, util.ErrMeetingCancelled
	}
	if _, err := s.ConvRepo.GetParticipant(meeting.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	if err := s.MeetingRepo.UpsertRSVP(meetingID, userID, rsvp); err != nil {
		return nil, err
	}
	return s.MeetingRepo.GetParticipant(meetingID, userID)
}

// ScheduleReminder 为会议追加一条提醒；已取消的会议拒绝新提醒
func (s *MeetingService) ScheduleReminder(meetingID string, userID uint, remindAt time.Time) (*model.MeetingReminder, error) {
	meeting, err := s.MeetingRepo.FindByID(meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == model.MeetingCancelled {
		return nil, util.ErrMeetingCancelled
	}
	if _, err := s.ConvRepo.GetParticipant(meeting.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	reminder := &model.MeetingReminder{
		MeetingID: meetingID,
		RemindAt:  remindAt,
	}
	if err := s.MeetingRepo.CreateReminder(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}
