package database

import (
	"fmt"
	"log"

	"team_collab_backend/internal/config"
	"team_collab_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// 把驱动层的唯一键冲突翻译成 gorm.ErrDuplicatedKey，仓储层依赖这个判重
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过自动迁移，由 -migrate/-migrate-only 显式触发
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
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
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
