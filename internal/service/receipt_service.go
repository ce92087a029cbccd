package service

import (
	"errors"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

type ReceiptService struct {
	ReceiptRepo *repository.ReceiptRepository
	MsgRepo     *repository.MessageRepository
	ConvRepo    *repository.ConversationRepository
}

func NewReceiptService(receiptRepo *repository.ReceiptRepository, msgRepo *repository.MessageRepository, convRepo *repository.ConversationRepository) *ReceiptService {
	return &ReceiptService{
		ReceiptRepo: receiptRepo,
		MsgRepo:     msgRepo,
		ConvRepo:    convRepo,
	}
}

// requireRecipient 上报回执的前提：消息存在且上报者是所在会话的成员
// 发送者不给自己记回执
func (s *ReceiptService) requireRecipient(msgID string, userID uint) (*model.Message, error) {
	msg, err := s.MsgRepo.FindByID(msgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	if msg.SenderID == userID {
		return nil, util.ErrNotParticipant
	}

	if _, err := s.ConvRepo.GetParticipant(msg.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}
	return msg, nil
}

// MarkDelivered 重复上报幂等，保留最早的时间戳
func (s *ReceiptService) MarkDelivered(msgID string, userID uint) (*model.Receipt, error) {
	if _, err := s.requireRecipient(msgID, userID); err != nil {
		return nil, err
	}
	if err := s.ReceiptRepo.MarkDelivered(msgID, userID); err != nil {
		return nil, err
	}
	return s.ReceiptRepo.Get(msgID, userID)
}

// MarkRead 允许未送达直接已读（客户端可能只上报已读）
func (s *ReceiptService) MarkRead(msgID string, userID uint) (*model.Receipt, error) {
	if _, err := s.requireRecipient(msgID, userID); err != nil {
		return nil, err
	}
	if err := s.ReceiptRepo.MarkRead(msgID, userID); err != nil {
		return nil, err
	}
	return s.ReceiptRepo.Get(msgID, userID)
}

// UnreadCount 回执口径的未读数，供客户端与成员行计数器交叉核对
// 权威值始终是成员行上的 unread_count
func (s *ReceiptService) UnreadCount(convID string, userID uint) (int64, error) {
	if _, err := s.ConvRepo.GetParticipant(convID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrNotParticipant
		}
		return 0, err
	}
	return s.ReceiptRepo.CountUnread(convID, userID)
}

// ListForMessage 查看回执汇总需要是会话成员
func (s *ReceiptService) ListForMessage(msgID string, userID uint) ([]model.Receipt, error) {
	msg, err := s.MsgRepo.FindByID(msgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.ConvRepo.GetParticipant(msg.ConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}
	return s.ReceiptRepo.ListForMessage(msgID)
}
