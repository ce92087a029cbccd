package service

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 服务层门禁测试需要一个运行中的 MySQL 实例
// 连接串可通过 TEAM_COLLAB_SERVICE_TEST_DSN 覆盖，连不上时测试跳过
// 与仓储层测试用不同的库，避免 go test 并行跑包时互相清数据

func getServiceTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("TEAM_COLLAB_SERVICE_TEST_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/team_collab_service_test?charset=utf8mb4&parseTime=true&loc=Local"
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
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	for _, table := range []string{"receipts", "messages", "participants", "conversations", "users"} {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

func newMessageServiceFixture(t *testing.T) (*MessageService, *ConversationService, *gorm.DB) {
	db := getServiceTestDB(t)
	convRepo := repository.NewConversationRepository(db, nil)
	userRepo := repository.NewUserRepository(db)
	msgRepo := repository.NewMessageRepository(db, nil)
	return NewMessageService(msgRepo, convRepo), NewConversationService(convRepo, userRepo), db
}

func seedServiceUser(t *testing.T, db *gorm.DB, name string) *model.User {
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

func TestMessageService_SendRejectsArchivedConversation(t *testing.T) {
	msgSvc, convSvc, db := newMessageServiceFixture(t)
	alice := seedServiceUser(t, db, "alice")
	bob := seedServiceUser(t, db, "bob")

	conv, err := convSvc.Create(&model.Conversation{
		Title:     "归档测试",
		Type:      model.ConversationGroup,
		CreatedBy: alice.ID,
	}, []uint{bob.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := msgSvc.Send(conv.ID, alice.ID, "归档前"); err != nil {
		t.Fatalf("send to active conversation failed: %v", err)
	}

	if err := convSvc.Archive(conv.ID, alice.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	// 归档后只读
	if _, err := msgSvc.Send(conv.ID, alice.ID, "归档后"); !errors.Is(err, util.ErrConversationArchived) {
		t.Errorf("expected ErrConversationArchived, got %v", err)
	}
}

func TestMessageService_SendRequiresMembership(t *testing.T) {
	msgSvc, convSvc, db := newMessageServiceFixture(t)
	alice := seedServiceUser(t, db, "alice")
	bob := seedServiceUser(t, db, "bob")
	eve := seedServiceUser(t, db, "eve")

	conv, err := convSvc.Create(&model.Conversation{
		Title:     "成员门禁",
		Type:      model.ConversationGroup,
		CreatedBy: alice.ID,
	}, []uint{bob.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := msgSvc.Send(conv.ID, eve.ID, "外人发言"); !errors.Is(err, util.ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant for non-member, got %v", err)
	}
	if _, err := msgSvc.Send("missing-conv", alice.ID, "hi"); !errors.Is(err, util.ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationService_AddParticipantConflict(t *testing.T) {
	_, convSvc, db := newMessageServiceFixture(t)
	alice := seedServiceUser(t, db, "alice")
	bob := seedServiceUser(t, db, "bob")

	conv, err := convSvc.Create(&model.Conversation{
		Title:     "重复加人",
		Type:      model.ConversationGroup,
		CreatedBy: alice.ID,
	}, []uint{bob.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// bob 已经是成员，重复添加报冲突
	if err := convSvc.AddParticipant(conv.ID, alice.ID, bob.ID); !errors.Is(err, util.ErrDuplicateParticipant) {
		t.Errorf("expected ErrDuplicateParticipant, got %v", err)
	}
}
