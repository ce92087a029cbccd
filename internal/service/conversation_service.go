package service

import (
	"errors"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

type ConversationService struct {
	ConvRepo *repository.ConversationRepository
	UserRepo *repository.UserRepository
}

func NewConversationService(convRepo *repository.ConversationRepository, userRepo *repository.UserRepository) *ConversationService {
	return &ConversationService{
		ConvRepo: convRepo,
		UserRepo: userRepo,
	}
}

// requireParticipant 成员门禁：所有会话级操作的统一入口
func (s *ConversationService) requireParticipant(convID string, userID uint) (*model.Participant, error) {
	p, err := s.ConvRepo.GetParticipant(convID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 区分会话不存在和非成员两种情况
		if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
			return nil, util.ErrConversationNotFound
		}
		return nil, util.ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ConversationService) Create(conv *model.Conversation, memberIDs []uint) (*model.Conversation, error) {
	// 成员必须全部是已知用户
	if len(memberIDs) > 0 {
		unique := make(map[uint]bool, len(memberIDs))
		var checkIDs []uint
		for _, id := range memberIDs {
			if !unique[id] {
				unique[id] = true
				checkIDs = append(checkIDs, id)
			}
		}
		count, err := s.UserRepo.CountByIDs(checkIDs)
		if err != nil {
			return nil, err
		}
		if count != int64(len(checkIDs)) {
			return nil, util.ErrUserNotFound
		}
	}

	if err := s.ConvRepo.CreateWithParticipants(conv, memberIDs); err != nil {
		return nil, err
	}
	return s.ConvRepo.FindByID(conv.ID)
}

func (s *ConversationService) Get(convID string, userID uint) (*model.Conversation, error) {
	if _, err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}
	return s.ConvRepo.FindByID(convID)
}

func (s *ConversationService) List(userID uint, query string, archived *bool, limit, offset int) ([]model.Conversation, int64, error) {
	return s.ConvRepo.ListForUser(userID, query, archived, limit, offset)
}

func (s *ConversationService) FindByRelatedEntity(entityType, entityID string, userID uint) ([]model.Conversation, error) {
	convs, err := s.ConvRepo.FindByRelatedEntity(entityType, entityID)
	if err != nil {
		return nil, err
	}

	// 只返回用户参与的会话
	visible := make([]model.Conversation, 0, len(convs))
	for _, conv := range convs {
		if _, err := s.ConvRepo.GetParticipant(conv.ID, userID); err == nil {
			visible = append(visible, conv)
		}
	}
	return visible, nil
}

// Update 成员可改标题与业务实体关联；归档会话不可再改
func (s *ConversationService) Update(convID string, userID uint, title, entityType, entityID *string) (*model.Conversation, error) {
	if _, err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}

	conv, err := s.ConvRepo.FindByID(convID)
	if err != nil {
		return nil, err
	}
	if conv.Archived {
		return nil, util.ErrConversationArchived
	}

	updates := make(map[string]interface{})
	if title != nil {
		updates["title"] = *title
	}
	if entityType != nil {
		updates["related_entity_type"] = *entityType
	}
	if entityID != nil {
		updates["related_entity_id"] = *entityID
	}
	if err := s.ConvRepo.UpdateDetails(convID, updates); err != nil {
		return nil, err
	}
	return s.ConvRepo.FindByID(convID)
}

// Archive 归档会话，仅 owner 可操作。归档不可逆
func (s *ConversationService) Archive(convID string, userID uint) error {
	p, err := s.requireParticipant(convID, userID)
	if err != nil {
		return err
	}
	if p.Role != model.RoleOwner {
		return util.ErrNotParticipant
	}
	return s.ConvRepo.Archive(convID, userID)
}

// AddParticipant 归档会话不允许再加人；重复加入报冲突
func (s *ConversationService) AddParticipant(convID string, actorID, userID uint) error {
	actor, err := s.requireParticipant(convID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != model.RoleOwner {
		return util.ErrNotParticipant
	}

	conv, err := s.ConvRepo.FindByID(convID)
	if err != nil {
		return err
	}
	if conv.Archived {
		return util.ErrConversationArchived
	}

	if _, err := s.UserRepo.FindByID(userID); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	} else if err != nil {
		return err
	}

	err = s.ConvRepo.AddParticipant(&model.Participant{
		ConversationID: convID,
		UserID:         userID,
		Role:           model.RoleMember,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrDuplicateParticipant
	}
	return err
}

// RemoveParticipant owner 可移除任意成员，普通成员只能移除自己（退出会话）
func (s *ConversationService) RemoveParticipant(convID string, actorID, userID uint) error {
	actor, err := s.requireParticipant(convID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != model.RoleOwner && actorID != userID {
		return util.ErrNotParticipant
	}

	if _, err := s.ConvRepo.GetParticipant(convID, userID); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotParticipant
	} else if err != nil {
		return err
	}

	return s.ConvRepo.RemoveParticipant(convID, userID)
}

// MarkRead 推进用户在会话内的已读游标并清零未读数
func (s *ConversationService) MarkRead(convID string, userID uint) (*model.Participant, error) {
	if _, err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}
	if err := s.ConvRepo.MarkRead(convID, userID); err != nil {
		return nil, err
	}
	return s.ConvRepo.GetParticipant(convID, userID)
}
