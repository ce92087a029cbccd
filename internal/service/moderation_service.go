package service

import (
	"errors"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

var moderationActions = map[model.ModerationActionType]bool{
	model.ModerationFlag:     true,
	model.ModerationHide:     true,
	model.ModerationUnhide:   true,
	model.ModerationWarn:     true,
	model.ModerationEscalate: true,
}

type ModerationService struct {
	ModRepo  *repository.ModerationRepository
	MsgRepo  *repository.MessageRepository
	ConvRepo *repository.ConversationRepository
}

func NewModerationService(modRepo *repository.ModerationRepository, msgRepo *repository.MessageRepository, convRepo *repository.ConversationRepository) *ModerationService {
	return &ModerationService{
		ModRepo:  modRepo,
		MsgRepo:  msgRepo,
		ConvRepo: convRepo,
	}
}

// requireModerator 治理权限：平台管理员直通；普通用户须是会话成员，
// flag 之外的操作还要求 owner 角色
func (s *ModerationService) requireModerator(msg *model.Message, actorID uint, actionType model.ModerationActionType, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	p, err := s.ConvRepo.GetParticipant(msg.ConversationID, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotParticipant
	}
	if err != nil {
		return err
	}
	if actionType != model.ModerationFlag && p.Role != model.RoleOwner {
		return util.ErrNotParticipant
	}
	return nil
}

// Record 记录一次治理操作。日志只追加，对已删除的消息也允许记录
// （审计链路不能因消息删除而中断）
func (s *ModerationService) Record(msgID string, actorID uint, actionType model.ModerationActionType, reason string, isAdmin bool) (*model.ModerationAction, error) {
	if !moderationActions[actionType] {
		return nil, util.ErrInvalidModerationAction
	}

	msg, err := s.MsgRepo.FindByID(msgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMessageNotFound
	} else if err != nil {
		return nil, err
	}

	if err := s.requireModerator(msg, actorID, actionType, isAdmin); err != nil {
		return nil, err
	}

	action := &model.ModerationAction{
		MessageID:  msgID,
		ActorID:    actorID,
		ActionType: actionType,
		Reason:     reason,
	}
	if err := s.ModRepo.Create(action); err != nil {
		return nil, err
	}
	return action, nil
}

// ListForMessage 审计历史按时间倒序；会话成员和平台管理员可查
func (s *ModerationService) ListForMessage(msgID string, actorID uint, isAdmin bool) ([]model.ModerationAction, error) {
	msg, err := s.MsgRepo.FindByID(msgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMessageNotFound
	} else if err != nil {
		return nil, err
	}

	if !isAdmin {
		if _, err := s.ConvRepo.GetParticipant(msg.ConversationID, actorID); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotParticipant
		} else if err != nil {
			return nil, err
		}
	}
	return s.ModRepo.ListForMessage(msgID)
}
