package repository

import (
	"errors"
	"time"

	"team_collab_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// GetPreference 无记录时返回默认值（不落库），读路径不产生写放大
func (r *PreferenceRepository) GetPreference(userID uint, convID string) (*model.ConversationPreference, error) {
	var pref model.ConversationPreference
	err := r.DB.Where("user_id = ? AND conversation_id = ?", userID, convID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.ConversationPreference{
			UserID:             userID,
			ConversationID:     convID,
			Muted:              false,
			EmailNotifications: true,
		}, nil
	}
	return &pref, err
}

// UpsertPreference 存在则更新，不存在则创建
func (r *PreferenceRepository) UpsertPreference(pref *model.ConversationPreference) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"muted":               pref.Muted,
			"email_notifications": pref.EmailNotifications,
			"updated_at":          time.Now(),
		}),
	}).Create(pref).Error
}

// UpsertPin 重复置顶只更新展示顺序
func (r *PreferenceRepository) UpsertPin(pin *model.ConversationPin) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"display_order": pin.DisplayOrder,
			"updated_at":    time.Now(),
		}),
	}).Create(pin).Error
}

// RemovePin 取消不存在的置顶视为成功
func (r *PreferenceRepository) RemovePin(userID uint, convID string) error {
	return r.DB.Delete(&model.ConversationPin{}, "user_id = ? AND conversation_id = ?", userID, convID).Error
}

func (r *PreferenceRepository) ListPins(userID uint) ([]model.ConversationPin, error) {
	var pins []model.ConversationPin
	err := r.DB.Where("user_id = ?", userID).
		Order("display_order ASC").
		Find(&pins).Error
	return pins, err
}

// AddLabel 重复打同名标签幂等
func (r *PreferenceRepository) AddLabel(label *model.ConversationLabel) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(label).Error
}

func (r *PreferenceRepository) RemoveLabel(userID uint, convID, label string) error {
	return r.DB.Delete(&model.ConversationLabel{},
		"user_id = ? AND conversation_id = ? AND label = ?", userID, convID, label).Error
}

// ListLabels 标签是用户私有数据，只按 (用户, 会话) 查询
func (r *PreferenceRepository) ListLabels(userID uint, convID string) ([]model.ConversationLabel, error) {
	var labels []model.ConversationLabel
	err := r.DB.Where("user_id = ? AND conversation_id = ?", userID, convID).
		Order("label ASC").
		Find(&labels).Error
	return labels, err
}
