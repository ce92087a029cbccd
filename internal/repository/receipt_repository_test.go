package repository

import (
	"testing"

	"team_collab_backend/internal/model"
)

func TestReceiptRepository_MarkDeliveredIdempotent(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	msgRepo := NewMessageRepository(db, nil)
	msg := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "hi"}
	if err := msgRepo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}

	repo := NewReceiptRepository(db)
	if err := repo.MarkDelivered(msg.ID, bob.ID); err != nil {
		t.Fatalf("MarkDelivered failed: %v", err)
	}

	first, err := repo.Get(msg.ID, bob.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first.DeliveredAt == nil {
		t.Fatal("expected deliveredAt to be set")
	}

	// 重复上报保留最早的时间戳
	if err := repo.MarkDelivered(msg.ID, bob.ID); err != nil {
		t.Fatalf("repeated MarkDelivered failed: %v", err)
	}
	second, _ := repo.Get(msg.ID, bob.ID)
	if !second.DeliveredAt.Equal(*first.DeliveredAt) {
		t.Error("repeated delivery report must not move the timestamp")
	}
}

func TestReceiptRepository_ReadWithoutDelivered(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	msgRepo := NewMessageRepository(db, nil)
	msg := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "hi"}
	if err := msgRepo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}

	repo := NewReceiptRepository(db)

	// 客户端可能只上报已读，送达可以缺席
	if err := repo.MarkRead(msg.ID, bob.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	receipt, err := repo.Get(msg.ID, bob.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if receipt.ReadAt == nil {
		t.Fatal("expected readAt to be set")
	}
	if receipt.DeliveredAt != nil {
		t.Error("deliveredAt must stay empty when only read was reported")
	}

	// 已读时间戳一经写入永不变更
	first := *receipt.ReadAt
	if err := repo.MarkRead(msg.ID, bob.ID); err != nil {
		t.Fatalf("repeated MarkRead failed: %v", err)
	}
	again, _ := repo.Get(msg.ID, bob.ID)
	if !again.ReadAt.Equal(first) {
		t.Error("repeated read report must not move the timestamp")
	}
}

func TestReceiptRepository_CreatesRowForLateJoiner(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	msgRepo := NewMessageRepository(db, nil)
	msg := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "早期消息"}
	if err := msgRepo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}

	// 后加入的成员没有预建回执行，上报时补建
	carol := seedUser(t, db, "carol")
	convRepo := NewConversationRepository(db, nil)
	if err := convRepo.AddParticipant(&model.Participant{
		ConversationID: conv.ID,
		UserID:         carol.ID,
		Role:           model.RoleMember,
	}); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	repo := NewReceiptRepository(db)
	if err := repo.MarkRead(msg.ID, carol.ID); err != nil {
		t.Fatalf("MarkRead for late joiner failed: %v", err)
	}
	receipt, err := repo.Get(msg.ID, carol.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if receipt.ReadAt == nil {
		t.Error("expected readAt on backfilled receipt")
	}
}
