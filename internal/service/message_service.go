package service

import (
	"errors"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"
	"team_collab_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type MessageService struct {
	MsgRepo  *repository.MessageRepository
	ConvRepo *repository.ConversationRepository
}

func NewMessageService(msgRepo *repository.MessageRepository, convRepo *repository.ConversationRepository) *MessageService {
	return &MessageService{
		MsgRepo:  msgRepo,
		ConvRepo: convRepo,
	}
}

// Send 发消息：发送者必须是成员，归档会话只读
// 落库、未读数扇出和回执预建由仓储层在一个事务内完成
func (s *MessageService) Send(convID string, senderID uint, content string) (*model.Message, error) {
	if _, err := s.ConvRepo.GetParticipant(convID, senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, util.ErrConversationNotFound
			}
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}

	conv, err := s.ConvRepo.FindByID(convID)
	if err != nil {
		return nil, err
	}
	if conv.Archived {
		return nil, util.ErrConversationArchived
	}

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
		Status:         model.MessageActive,
	}
	if err := s.MsgRepo.CreateWithFanout(msg); err != nil {
		return nil, err
	}

	monitoring.MessagesSent.Inc()
	return msg, nil
}

func (s *MessageService) Get(msgID string, userID uint) (*model.Message, error) {
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
	return msg, nil
}

func (s *MessageService) List(convID string, userID uint, limit, offset int, beforeID string) ([]model.Message, error) {
	if _, err := s.ConvRepo.GetParticipant(convID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, util.ErrConversationNotFound
			}
			return nil, util.ErrNotParticipant
		}
		return nil, err
	}
	return s.MsgRepo.List(convID, limit, offset, beforeID)
}

// Search 可选传会话 ID 把检索收窄到单个会话；成员关系由仓储层联表保证
func (s *MessageService) Search(userID uint, query, convID string, limit, offset int) ([]model.Message, int64, error) {
	return s.MsgRepo.Search(userID, query, convID, limit, offset)
}

// Edit 只有发送者本人能改自己的消息；已删除消息不可编辑
func (s *MessageService) Edit(msgID string, userID uint, content string) (*model.Message, error) {
	msg, err := s.MsgRepo.FindByID(msgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, util.ErrNotSender
	}
	if msg.Status == model.MessageDeleted {
		return nil, util.ErrMessageNotFound
	}
	return s.MsgRepo.Edit(msgID, content)
}

// Delete 软删除，发送者本人或管理员可操作；重复删除幂等
func (s *MessageService) Delete(msgID string, userID uint, isAdmin bool) (*model.Message, error) {
	msg, err := s.MsgRepo.FindByID(msgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID && !isAdmin {
		return nil, util.ErrNotSender
	}
	return s.MsgRepo.SoftDelete(msgID)
}
