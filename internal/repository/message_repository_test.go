package repository

import (
	"errors"
	"testing"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"
)

func TestMessageRepository_CreateWithFanout(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	conv := seedConversation(t, db, alice, bob, carol)

	repo := NewMessageRepository(db, nil)
	convRepo := NewConversationRepository(db, nil)

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       alice.ID,
		Content:        "大家好",
		Status:         model.MessageActive,
	}
	if err := repo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected message ID to be assigned")
	}

	// 接收者未读数 +1，发送者保持 0
	for _, u := range []*model.User{bob, carol} {
		p, err := convRepo.GetParticipant(conv.ID, u.ID)
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if p.UnreadCount != 1 {
			t.Errorf("expected unread 1 for user %d, got %d", u.ID, p.UnreadCount)
		}
	}
	sender, _ := convRepo.GetParticipant(conv.ID, alice.ID)
	if sender.UnreadCount != 0 {
		t.Errorf("sender unread should stay 0, got %d", sender.UnreadCount)
	}

	// 会话活跃时间被推进
	updated, err := convRepo.FindByID(conv.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if updated.LastMessageAt == nil {
		t.Error("expected lastMessageAt to be set")
	}

	// 每个接收者预建了一行回执，发送者没有
	var receipts []model.Receipt
	if err := db.Where("message_id = ?", msg.ID).Find(&receipts).Error; err != nil {
		t.Fatalf("load receipts failed: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(receipts))
	}
	for _, r := range receipts {
		if r.UserID == alice.ID {
			t.Error("sender must not get a receipt row")
		}
		if r.DeliveredAt != nil || r.ReadAt != nil {
			t.Error("fresh receipt should have no timestamps")
		}
	}
}

func TestMessageRepository_EditAndSoftDelete(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewMessageRepository(db, nil)
	msg := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "原始内容"}
	if err := repo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}

	edited, err := repo.Edit(msg.ID, "修改后的内容")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if edited.Status != model.MessageEdited || edited.EditedAt == nil {
		t.Errorf("expected edited status with timestamp, got %s", edited.Status)
	}
	if edited.Content != "修改后的内容" {
		t.Errorf("content not updated: %s", edited.Content)
	}

	deleted, err := repo.SoftDelete(msg.ID)
	if err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if deleted.Status != model.MessageDeleted || deleted.DeletedAt == nil {
		t.Errorf("expected deleted status with timestamp, got %s", deleted.Status)
	}

	// 软删除保留台账行
	if _, err := repo.FindByID(msg.ID); err != nil {
		t.Errorf("soft-deleted message must remain readable: %v", err)
	}

	// 已删除的消息不可编辑
	if _, err := repo.Edit(msg.ID, "again"); !errors.Is(err, util.ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound editing deleted message, got %v", err)
	}

	// 重复删除幂等
	again, err := repo.SoftDelete(msg.ID)
	if err != nil {
		t.Fatalf("repeated SoftDelete failed: %v", err)
	}
	if !again.DeletedAt.Equal(*deleted.DeletedAt) {
		t.Error("repeated delete must not move the timestamp")
	}
}

func TestMessageRepository_SearchScopedToMembership(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	eve := seedUser(t, db, "eve")
	conv := seedConversation(t, db, alice, bob)

	repo := NewMessageRepository(db, nil)
	msg := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "季度预算讨论"}
	if err := repo.CreateWithFanout(msg); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}

	// 成员能搜到
	results, total, err := repo.Search(bob.ID, "预算", "", 10, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Errorf("member should find 1 message, got %d", total)
	}

	// 非成员搜不到
	_, total, err = repo.Search(eve.ID, "预算", "", 10, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 0 {
		t.Errorf("non-member must see 0 results, got %d", total)
	}

	// 限定到单个会话：命中该会话时有结果，限定其他会话时没有
	other := seedConversation(t, db, alice, bob)
	_, total, err = repo.Search(bob.ID, "预算", conv.ID, 10, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 1 {
		t.Errorf("conversation-scoped search should find 1, got %d", total)
	}
	_, total, _ = repo.Search(bob.ID, "预算", other.ID, 10, 0)
	if total != 0 {
		t.Errorf("search scoped to another conversation must find 0, got %d", total)
	}

	// 删除后不再出现在搜索结果里
	if _, err := repo.SoftDelete(msg.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	_, total, _ = repo.Search(bob.ID, "预算", "", 10, 0)
	if total != 0 {
		t.Errorf("deleted message must not appear in search, got %d", total)
	}
}

func TestMessageRepository_ListExcludesDeleted(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewMessageRepository(db, nil)
	kept := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "保留"}
	if err := repo.CreateWithFanout(kept); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}
	victim := &model.Message{ConversationID: conv.ID, SenderID: alice.ID, Content: "待删除"}
	if err := repo.CreateWithFanout(victim); err != nil {
		t.Fatalf("CreateWithFanout failed: %v", err)
	}
	if _, err := repo.SoftDelete(victim.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	msgs, err := repo.List(conv.ID, 10, 0, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 visible message, got %d", len(msgs))
	}
	if msgs[0].ID != kept.ID {
		t.Errorf("list leaked the soft-deleted message %s", msgs[0].ID)
	}
}

func TestMessageRepository_ListPagination(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewMessageRepository(db, nil)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		msg := &model.Message{
			ConversationID: conv.ID,
			SenderID:       alice.ID,
			Content:        "msg",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CreateWithFanout(msg); err != nil {
			t.Fatalf("CreateWithFanout failed: %v", err)
		}
	}

	page1, err := repo.List(conv.ID, 3, 0, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page1) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(page1))
	}

	page2, err := repo.List(conv.ID, 3, 0, page1[len(page1)-1].ID)
	if err != nil {
		t.Fatalf("List page 2 failed: %v", err)
	}
	if len(page2) == 0 {
		t.Fatal("expected remaining messages on page 2")
	}

	seen := make(map[string]bool)
	for _, m := range append(page1, page2...) {
		if seen[m.ID] {
			t.Errorf("message %s returned twice across pages", m.ID)
		}
		seen[m.ID] = true
	}

	// offset 翻页与游标翻页给出一致的切分
	offsetPage, err := repo.List(conv.ID, 3, 3, "")
	if err != nil {
		t.Fatalf("List with offset failed: %v", err)
	}
	if len(offsetPage) != 2 {
		t.Fatalf("expected 2 messages at offset 3, got %d", len(offsetPage))
	}
	for i, m := range offsetPage {
		if m.ID != page2[i].ID {
			t.Errorf("offset page diverges from keyset page at %d", i)
		}
	}
}
