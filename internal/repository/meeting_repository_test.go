package repository

import (
	"errors"
	"testing"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

func seedMeeting(t *testing.T, db *gorm.DB, conv *model.Conversation, creator *model.User, participants ...*model.User) *model.Meeting {
	repo := NewMeetingRepository(db)
	meeting := &model.Meeting{
		ConversationID: conv.ID,
		Title:          "周会",
		ScheduledAt:    time.Now().Add(24 * time.Hour),
		Status:         model.MeetingScheduled,
		CreatedBy:      creator.ID,
	}
	ids := []uint{creator.ID}
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	if err := repo.CreateWithParticipants(meeting, ids); err != nil {
		t.Fatalf("seed meeting failed: %v", err)
	}
	return meeting
}

func TestMeetingRepository_StatusTransitionGuard(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)
	meeting := seedMeeting(t, db, conv, alice, bob)

	repo := NewMeetingRepository(db)

	if err := repo.UpdateStatus(meeting.ID, model.MeetingOccurred); err != nil {
		t.Fatalf("scheduled -> occurred should succeed: %v", err)
	}

	// 终态不可再变
	if err := repo.UpdateStatus(meeting.ID, model.MeetingCancelled); !errors.Is(err, util.ErrInvalidMeetingTransition) {
		t.Errorf("expected ErrInvalidMeetingTransition from terminal state, got %v", err)
	}

	if err := repo.UpdateStatus("missing-meeting", model.MeetingOccurred); !errors.Is(err, util.ErrMeetingNotFound) {
		t.Errorf("expected ErrMeetingNotFound, got %v", err)
	}
}

func TestMeetingRepository_RSVPUpsert(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)
	meeting := seedMeeting(t, db, conv, alice, bob)

	repo := NewMeetingRepository(db)

	p, err := repo.GetParticipant(meeting.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if p.RSVP != model.RSVPPending {
		t.Errorf("initial rsvp should be pending, got %s", p.RSVP)
	}

	if err := repo.UpsertRSVP(meeting.ID, bob.ID, model.RSVPAccepted); err != nil {
		t.Fatalf("UpsertRSVP failed: %v", err)
	}
	// 重复表态覆盖
	if err := repo.UpsertRSVP(meeting.ID, bob.ID, model.RSVPDeclined); err != nil {
		t.Fatalf("repeated UpsertRSVP failed: %v", err)
	}
	p, _ = repo.GetParticipant(meeting.ID, bob.ID)
	if p.RSVP != model.RSVPDeclined {
		t.Errorf("expected declined after overwrite, got %s", p.RSVP)
	}
}

func TestMeetingRepository_ReminderDispatchOnce(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)
	meeting := seedMeeting(t, db, conv, alice, bob)

	repo := NewMeetingRepository(db)

	reminder := &model.MeetingReminder{
		MeetingID: meeting.ID,
		RemindAt:  time.Now().Add(-time.Minute),
	}
	if err := repo.CreateReminder(reminder); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	pending, err := repo.PendingReminders(time.Now(), 10)
	if err != nil {
		t.Fatalf("PendingReminders failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending reminder, got %d", len(pending))
	}

	if err := repo.MarkReminderSent(reminder.ID); err != nil {
		t.Fatalf("MarkReminderSent failed: %v", err)
	}
	// sent 单向翻转，第二次标记报已发送
	if err := repo.MarkReminderSent(reminder.ID); !errors.Is(err, util.ErrReminderAlreadySent) {
		t.Errorf("expected ErrReminderAlreadySent, got %v", err)
	}

	pending, _ = repo.PendingReminders(time.Now(), 10)
	if len(pending) != 0 {
		t.Errorf("sent reminder must leave the pending queue, got %d", len(pending))
	}
}

func TestMeetingRepository_PendingSkipsCancelledMeetings(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)
	meeting := seedMeeting(t, db, conv, alice, bob)

	repo := NewMeetingRepository(db)

	reminder := &model.MeetingReminder{
		MeetingID: meeting.ID,
		RemindAt:  time.Now().Add(-time.Minute),
	}
	if err := repo.CreateReminder(reminder); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	if err := repo.UpdateStatus(meeting.ID, model.MeetingCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	pending, err := repo.PendingReminders(time.Now(), 10)
	if err != nil {
		t.Fatalf("PendingReminders failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("cancelled meeting reminders must not be pending, got %d", len(pending))
	}
}
