package repository

import (
	"fmt"
	"os"
	"testing"

	"team_collab_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 注意：这些测试需要一个运行中的 MySQL 实例
// 连接串可通过 TEAM_COLLAB_TEST_DSN 覆盖，连不上时测试跳过

func getTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("TEAM_COLLAB_TEST_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/team_collab_test?charset=utf8mb4&parseTime=true&loc=Local"
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skipf("跳过测试：无法连接 MySQL: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Participant{},
		&model.Message{},
		&model.Receipt{},
		&model.File{},
		&model.FileVersion{},
		&model.Meeting{},
		&model.MeetingParticipant{},
		&model.MeetingReminder{},
		&model.ModerationAction{},
		&model.ConversationPreference{},
		&model.ConversationPin{},
		&model.ConversationLabel{},
		&model.RateLimitWindow{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	// 清空上一轮测试数据
	tables := []string{
		"receipts", "moderation_actions", "file_versions", "files",
		"meeting_reminders", "meeting_participants", "meetings",
		"messages", "conversation_preferences", "conversation_pins",
		"conversation_labels", "rate_limit_windows",
		"participants", "conversations", "users",
	}
	for _, table := range tables {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@test.local", name),
		Password: "hashed",
		Role:     model.Member,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

func seedConversation(t *testing.T, db *gorm.DB, creator *model.User, members ...*model.User) *model.Conversation {
	repo := NewConversationRepository(db, nil)
	conv := &model.Conversation{
		Title:     "测试会话",
		Type:      model.ConversationGroup,
		CreatedBy: creator.ID,
	}
	memberIDs := make([]uint, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}
	if err := repo.CreateWithParticipants(conv, memberIDs); err != nil {
		t.Fatalf("seed conversation failed: %v", err)
	}
	return conv
}
