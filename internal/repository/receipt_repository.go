package repository

import (
	"time"

	"team_collab_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository struct {
	DB *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{DB: db}
}

// MarkDelivered 首次上报写时间戳，重复上报不覆盖
// 回执行缺失时补建（老消息在成员加入前没有预置回执）
func (r *ReceiptRepository) MarkDelivered(msgID string, userID uint) error {
	now := time.Now()
	result := r.DB.Model(&model.Receipt{}).
		Where("message_id = ? AND user_id = ? AND delivered_at IS NULL", msgID, userID).
		Update("delivered_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Receipt{
			MessageID:   msgID,
			UserID:      userID,
			DeliveredAt: &now,
			CreatedAt:   now,
		}).Error
}

// MarkRead 已读时间戳一经写入永不变更；允许未送达直接已读
func (r *ReceiptRepository) MarkRead(msgID string, userID uint) error {
	now := time.Now()
	result := r.DB.Model(&model.Receipt{}).
		Where("message_id = ? AND user_id = ? AND read_at IS NULL", msgID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Receipt{
			MessageID: msgID,
			UserID:    userID,
			ReadAt:    &now,
			CreatedAt: now,
		}).Error
}

func (r *ReceiptRepository) ListForMessage(msgID string) ([]model.Receipt, error) {
	var receipts []model.Receipt
	err := r.DB.Where("message_id = ?", msgID).
		Order("user_id ASC").
		Find(&receipts).Error
	return receipts, err
}

// CountUnread 按回执口径统计会话内未读数，用于与成员行上的计数器交叉核对
func (r *ReceiptRepository) CountUnread(convID string, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Receipt{}).
		Joins("JOIN messages ON messages.id = receipts.message_id").
		Where("messages.conversation_id = ? AND receipts.user_id = ? AND receipts.read_at IS NULL", convID, userID).
		Where("messages.status <> ?", model.MessageDeleted).
		Count(&count).Error
	return count, err
}

func (r *ReceiptRepository) Get(msgID string, userID uint) (*model.Receipt, error) {
	var receipt model.Receipt
	err := r.DB.Where("message_id = ? AND user_id = ?", msgID, userID).First(&receipt).Error
	return &receipt, err
}
