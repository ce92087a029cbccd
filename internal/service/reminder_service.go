package service

import (
	"errors"
	"fmt"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"
	"team_collab_backend/pkg/logger"
	"team_collab_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type ReminderService struct {
	MeetingRepo *repository.MeetingRepository
	ConvRepo    *repository.ConversationRepository
	UserRepo    *repository.UserRepository
	Email       *EmailService
}

func NewReminderService(meetingRepo *repository.MeetingRepository, convRepo *repository.ConversationRepository, userRepo *repository.UserRepository, email *EmailService) *ReminderService {
	return &ReminderService{
		MeetingRepo: meetingRepo,
		ConvRepo:    convRepo,
		UserRepo:    userRepo,
		Email:       email,
	}
}

// Pending 到点未派发的提醒列表，供外部派发器或巡检接口使用
func (s *ReminderService) Pending(limit int) ([]model.MeetingReminder, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.MeetingRepo.PendingReminders(time.Now(), limit)
}

// DispatchDue 派发所有到点的提醒。每条提醒：
// 投递成功才翻转 sent 标志，投递失败留在队列里等下一轮；
// sent 的条件更新保证多实例并发巡检时每条提醒只派发一次
func (s *ReminderService) DispatchDue() (int, error) {
	reminders, err := s.MeetingRepo.PendingReminders(time.Now(), 100)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, reminder := range reminders {
		if err := s.dispatchOne(&reminder); err != nil {
			if errors.Is(err, util.ErrReminderAlreadySent) {
				// 其他实例抢先派发了，正常现象
				continue
			}
			monitoring.RemindersDispatched.WithLabelValues("failed").Inc()
			logger.Log.Warn("Reminder dispatch failed, will retry next cycle",
				zap.String("reminderID", reminder.ID),
				zap.Error(err))
			continue
		}
		monitoring.RemindersDispatched.WithLabelValues("sent").Inc()
		dispatched++
	}
	return dispatched, nil
}

func (s *ReminderService) dispatchOne(reminder *model.MeetingReminder) error {
	meeting, err := s.MeetingRepo.FindByID(reminder.MeetingID)
	if err != nil {
		return err
	}
	if meeting.Status == model.MeetingCancelled {
		// 会议取消后提醒作废，直接标记避免反复拉取
		return s.MeetingRepo.MarkReminderSent(reminder.ID)
	}

	// 拒绝参会的人不收提醒
	var notifyIDs []uint
	for _, p := range meeting.Participants {
		if p.RSVP != model.RSVPDeclined {
			notifyIDs = append(notifyIDs, p.UserID)
		}
	}

	if len(notifyIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(notifyIDs)
		if err != nil {
			return err
		}

		subject := fmt.Sprintf("会议提醒：%s", meeting.Title)
		content := fmt.Sprintf("<p>会议 <b>%s</b> 即将开始</p><p>时间：%s</p><p>链接：%s</p>",
			meeting.Title, meeting.ScheduledAt.Format(util.TimeFormat), meeting.MeetingLink)

		for _, u := range users {
			if err := s.Email.Send(u.Name, u.Email, subject, content); err != nil {
				return err
			}
		}
	}

	return s.MeetingRepo.MarkReminderSent(reminder.ID)
}
