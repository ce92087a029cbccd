package repository

import (
	"testing"

	"team_collab_backend/internal/model"
)

func TestPreferenceRepository_DefaultsWithoutRecord(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewPreferenceRepository(db)

	pref, err := repo.GetPreference(alice.ID, conv.ID)
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if pref.Muted || !pref.EmailNotifications {
		t.Errorf("defaults should be muted=false, email=true, got %+v", pref)
	}
}

func TestPreferenceRepository_UpsertPreference(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewPreferenceRepository(db)

	if err := repo.UpsertPreference(&model.ConversationPreference{
		UserID:             alice.ID,
		ConversationID:     conv.ID,
		Muted:              true,
		EmailNotifications: false,
	}); err != nil {
		t.Fatalf("UpsertPreference failed: %v", err)
	}

	// 二次写入走更新分支
	if err := repo.UpsertPreference(&model.ConversationPreference{
		UserID:             alice.ID,
		ConversationID:     conv.ID,
		Muted:              false,
		EmailNotifications: true,
	}); err != nil {
		t.Fatalf("repeated UpsertPreference failed: %v", err)
	}

	pref, _ := repo.GetPreference(alice.ID, conv.ID)
	if pref.Muted || !pref.EmailNotifications {
		t.Errorf("second upsert must win, got %+v", pref)
	}
}

func TestPreferenceRepository_PinUpsertAndRemove(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewPreferenceRepository(db)

	if err := repo.UpsertPin(&model.ConversationPin{UserID: alice.ID, ConversationID: conv.ID, DisplayOrder: 3}); err != nil {
		t.Fatalf("UpsertPin failed: %v", err)
	}
	// 重复置顶只更新顺序
	if err := repo.UpsertPin(&model.ConversationPin{UserID: alice.ID, ConversationID: conv.ID, DisplayOrder: 1}); err != nil {
		t.Fatalf("repeated UpsertPin failed: %v", err)
	}

	pins, err := repo.ListPins(alice.ID)
	if err != nil {
		t.Fatalf("ListPins failed: %v", err)
	}
	if len(pins) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(pins))
	}
	if pins[0].DisplayOrder != 1 {
		t.Errorf("expected display order 1 after re-pin, got %d", pins[0].DisplayOrder)
	}

	// 取消不存在的置顶也成功
	if err := repo.RemovePin(alice.ID, conv.ID); err != nil {
		t.Fatalf("RemovePin failed: %v", err)
	}
	if err := repo.RemovePin(alice.ID, conv.ID); err != nil {
		t.Fatalf("repeated RemovePin must be idempotent: %v", err)
	}
}

func TestPreferenceRepository_LabelsArePrivatePerUser(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv := seedConversation(t, db, alice, bob)

	repo := NewPreferenceRepository(db)

	if err := repo.AddLabel(&model.ConversationLabel{ConversationID: conv.ID, UserID: alice.ID, Label: "重要"}); err != nil {
		t.Fatalf("AddLabel failed: %v", err)
	}
	// 重复打同名标签幂等
	if err := repo.AddLabel(&model.ConversationLabel{ConversationID: conv.ID, UserID: alice.ID, Label: "重要"}); err != nil {
		t.Fatalf("repeated AddLabel failed: %v", err)
	}

	mine, err := repo.ListLabels(alice.ID, conv.ID)
	if err != nil {
		t.Fatalf("ListLabels failed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected exactly 1 label, got %d", len(mine))
	}

	// 其他成员看不到我的标签
	theirs, err := repo.ListLabels(bob.ID, conv.ID)
	if err != nil {
		t.Fatalf("ListLabels failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("labels must be private, other user sees %d", len(theirs))
	}
}
