package repository

import (
	"team_collab_backend/internal/model"

	"gorm.io/gorm"
)

type ModerationRepository struct {
	DB *gorm.DB
}

func NewModerationRepository(db *gorm.DB) *ModerationRepository {
	return &ModerationRepository{DB: db}
}

// Create 治理日志只追加，没有更新和删除入口
func (r *ModerationRepository) Create(action *model.ModerationAction) error {
	return r.DB.Create(action).Error
}

func (r *ModerationRepository) ListForMessage(msgID string) ([]model.ModerationAction, error) {
	var actions []model.ModerationAction
	err := r.DB.Where("message_id = ?", msgID).
		Order("created_at DESC").
		Find(&actions).Error
	return actions, err
}

