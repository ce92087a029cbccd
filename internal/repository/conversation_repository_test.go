package repository

import (
	"errors"
	"testing"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

func TestConversationRepository_DuplicateParticipantConflict(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	conv := seedConversation(t, db, alice, bob)

	repo := NewConversationRepository(db, nil)

	if err := repo.AddParticipant(&model.Participant{
		ConversationID: conv.ID,
		UserID:         carol.ID,
		Role:           model.RoleMember,
	}); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	// 同一 (会话, 用户) 重复加入报唯一键冲突
	err := repo.AddParticipant(&model.Participant{
		ConversationID: conv.ID,
		UserID:         carol.ID,
		Role:           model.RoleMember,
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected ErrDuplicatedKey on repeated add, got %v", err)
	}
}

func TestConversationRepository_MarkReadZeroesUnread(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	convRepo := NewConversationRepository(db, nil)
	msgRepo := NewMessageRepository(db, nil)

	msg := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "hi"}
	if err := msgRepo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}

	bobRow, _ := convRepo.GetParticipant(conv.ID, bob.ID)
	if bobRow.UnreadCount != 1 {
		t.Fatalf("expected bob unread 1 after send, got %d", bobRow.UnreadCount)
	}
	aliceRow, _ := convRepo.GetParticipant(conv.ID, alice.ID)
	if aliceRow.UnreadCount != 0 {
		t.Fatalf("expected sender unread 0, got %d", aliceRow.UnreadCount)
	}

	if err := convRepo.MarkRead(conv.ID, bob.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	bobRow, _ = convRepo.GetParticipant(conv.ID, bob.ID)
	if bobRow.UnreadCount != 0 {
		t.Errorf("expected bob unread 0 after MarkRead, got %d", bobRow.UnreadCount)
	}
	if bobRow.LastReadAt == nil {
		t.Error("expected lastReadAt to advance on MarkRead")
	}
}

func TestConversationRepository_ArchiveIsOneWay(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewConversationRepository(db, nil)

	if err := repo.Archive(conv.ID, alice.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	archived, err := repo.FindByID(conv.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !archived.Archived || archived.ArchivedAt == nil || archived.ArchivedBy == nil {
		t.Error("expected archived flag with archivedBy/At stamped")
	}

	// 重复归档报冲突
	if err := repo.Archive(conv.ID, alice.ID); !errors.Is(err, util.ErrConversationArchived) {
		t.Errorf("expected ErrConversationArchived on repeated archive, got %v", err)
	}
}
