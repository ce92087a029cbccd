package service

import (
	"errors"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/util"

	"gorm.io/gorm"
)

type PreferenceService struct {
	PrefRepo *repository.PreferenceRepository
	ConvRepo *repository.ConversationRepository
}

func NewPreferenceService(prefRepo *repository.PreferenceRepository, convRepo *repository.ConversationRepository) *PreferenceService {
	return &PreferenceService{
		PrefRepo: prefRepo,
		ConvRepo: convRepo,
	}
}

func (s *PreferenceService) requireParticipant(convID string, userID uint) error {
	if _, err := s.ConvRepo.GetParticipant(convID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, cerr := s.ConvRepo.FindByID(convID); errors.Is(cerr, gorm.ErrRecordNotFound) {
				return util.ErrConversationNotFound
			}
			return util.ErrNotParticipant
		}
		return err
	}
	return nil
}

// GetPreference 没有记录时返回默认偏好
func (s *PreferenceService) GetPreference(userID uint, convID string) (*model.ConversationPreference, error) {
	if err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}
	return s.PrefRepo.GetPreference(userID, convID)
}

func (s *PreferenceService) UpdatePreference(userID uint, convID string, muted, emailNotifications bool) (*model.ConversationPreference, error) {
	if err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}

	pref := &model.ConversationPreference{
		UserID:             userID,
		ConversationID:     convID,
		Muted:              muted,
		EmailNotifications: emailNotifications,
	}
	if err := s.PrefRepo.UpsertPreference(pref); err != nil {
		return nil, err
	}
	return s.PrefRepo.GetPreference(userID, convID)
}

// Pin 置顶会话，重复置顶只调整顺序
func (s *PreferenceService) Pin(userID uint, convID string, displayOrder int) error {
	if err := s.requireParticipant(convID, userID); err != nil {
		return err
	}
	return s.PrefRepo.UpsertPin(&model.ConversationPin{
		UserID:         userID,
		ConversationID: convID,
		DisplayOrder:   displayOrder,
	})
}

// Unpin 取消不存在的置顶也返回成功
func (s *PreferenceService) Unpin(userID uint, convID string) error {
	return s.PrefRepo.RemovePin(userID, convID)
}

func (s *PreferenceService) ListPins(userID uint) ([]model.ConversationPin, error) {
	return s.PrefRepo.ListPins(userID)
}

// AddLabel 用户私有标签，重复添加幂等
func (s *PreferenceService) AddLabel(userID uint, convID, label string) error {
	if err := s.requireParticipant(convID, userID); err != nil {
		return err
	}
	return s.PrefRepo.AddLabel(&model.ConversationLabel{
		ConversationID: convID,
		UserID:         userID,
		Label:          label,
	})
}

func (s *PreferenceService) RemoveLabel(userID uint, convID, label string) error {
	return s.PrefRepo.RemoveLabel(userID, convID, label)
}

func (s *PreferenceService) ListLabels(userID uint, convID string) ([]model.ConversationLabel, error) {
	if err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}
	return s.PrefRepo.ListLabels(userID, convID)
}
