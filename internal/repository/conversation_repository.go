package repository

import (
	"context"
	"fmt"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewConversationRepository(db *gorm.DB, rdb *redis.Client) *ConversationRepository {
	return &ConversationRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

// CreateWithParticipants 会话与首批成员行在同一事务内落库
// 创建者固定为 owner，其余成员为 member
func (r *ConversationRepository) CreateWithParticipants(conv *model.Conversation, memberIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}

		participants := make([]model.Participant, 0, len(memberIDs)+1)
		participants = append(participants, model.Participant{
			ConversationID: conv.ID,
			UserID:         conv.CreatedBy,
			Role:           model.RoleOwner,
		})
		for _, uid := range memberIDs {
			if uid == conv.CreatedBy {
				continue
			}
			participants = append(participants, model.Participant{
				ConversationID: conv.ID,
				UserID:         uid,
				Role:           model.RoleMember,
			})
		}

		return tx.Create(&participants).Error
	})
}

func (r *ConversationRepository) FindByID(id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.Preload("Participants").First(&conv, "id = ?", id).Error
	return &conv, err
}

// ListForUser 列出用户参与的会话，按最近消息时间倒序，无消息的排最后
func (r *ConversationRepository) ListForUser(userID uint, query string, archived *bool, limit, offset int) ([]model.Conversation, int64, error) {
	var convs []model.Conversation
	var total int64

	db := r.DB.Model(&model.Conversation{}).
		Joins("JOIN participants ON participants.conversation_id = conversations.id").
		Where("participants.user_id = ?", userID)

	if query != "" {
		db = db.Where("conversations.title LIKE ?", "%"+query+"%")
	}
	if archived != nil {
		db = db.Where("conversations.archived = ?", *archived)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Participants").
		Order("conversations.last_message_at IS NULL, conversations.last_message_at DESC").
		Limit(limit).Offset(offset).
		Find(&convs).Error

	return convs, total, err
}

// FindByRelatedEntity 按外部业务实体定位会话
func (r *ConversationRepository) FindByRelatedEntity(entityType, entityID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.DB.Where("related_entity_type = ? AND related_entity_id = ?", entityType, entityID).
		Find(&convs).Error
	return convs, err
}

// UpdateDetails 仅允许改标题与业务实体关联，其余字段不可变
func (r *ConversationRepository) UpdateDetails(convID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB.Model(&model.Conversation{}).
		Where("id = ?", convID).
		Updates(updates).Error
}

// Archive 单向归档：仅 archived=false 的行可变更，重复归档报冲突
func (r *ConversationRepository) Archive(convID string, actorID uint) error {
	now := time.Now()
	result := r.DB.Model(&model.Conversation{}).
		Where("id = ? AND archived = ?", convID, false).
		Updates(map[string]interface{}{
			"archived":    true,
			"archived_by": actorID,
			"archived_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrConversationArchived
	}
	return nil
}

func (r *ConversationRepository) AddParticipant(p *model.Participant) error {
	err := r.DB.Create(p).Error
	if err == nil && r.Redis != nil {
		r.Redis.Del(r.ctx, fmt.Sprintf("collab:relation:participants:%s", p.ConversationID))
		r.Redis.Del(r.ctx, fmt.Sprintf("collab:relation:user_convs:%d", p.UserID))
	}
	return err
}

func (r *ConversationRepository) RemoveParticipant(convID string, userID uint) error {
	err := r.DB.Delete(&model.Participant{}, "conversation_id = ? AND user_id = ?", convID, userID).Error
	if err == nil && r.Redis != nil {
		r.Redis.Del(r.ctx, fmt.Sprintf("collab:relation:participants:%s", convID))
		r.Redis.Del(r.ctx, fmt.Sprintf("collab:relation:user_convs:%d", userID))
	}
	return err
}

func (r *ConversationRepository) GetParticipant(convID string, userID uint) (*model.Participant, error) {
	var p model.Participant
	err := r.DB.Where("conversation_id = ? AND user_id = ?", convID, userID).First(&p).Error
	return &p, err
}

func (r *ConversationRepository) GetParticipantIDs(convID string) ([]uint, error) {
	var ids []uint
	err := r.DB.Table("participants").
		Where("conversation_id = ?", convID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// GetParticipantIDsCached 获取会话成员 ID (带缓存)
func (r *ConversationRepository) GetParticipantIDsCached(convID string) ([]uint, error) {
	if r.Redis == nil {
		return r.GetParticipantIDs(convID)
	}

	key := fmt.Sprintf("collab:relation:participants:%s", convID)
	cached, err := r.Redis.SMembers(r.ctx, key).Result()
	if err == nil && len(cached) > 0 {
		var ids []uint
		for _, s := range cached {
			var id uint
			fmt.Sscanf(s, "%d", &id)
			if id > 0 {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	ids, err := r.GetParticipantIDs(convID)
	if err == nil && len(ids) > 0 {
		pipe := r.Redis.Pipeline()
		for _, id := range ids {
			pipe.SAdd(r.ctx, key, id)
		}
		pipe.Expire(r.ctx, key, 24*time.Hour)
		pipe.Exec(r.ctx)
	}
	return ids, err
}

// MarkRead 推进已读游标并清零未读数，原子完成
func (r *ConversationRepository) MarkRead(convID string, userID uint) error {
	now := time.Now()
	return r.DB.Model(&model.Participant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Updates(map[string]interface{}{
			"last_read_at": now,
			"unread_count": 0,
		}).Error
}

// UpdateParticipantRole 调整成员角色
func (r *ConversationRepository) UpdateParticipantRole(convID string, userID uint, role model.ParticipantRole) error {
	return r.DB.Model(&model.Participant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Update("role", role).Error
}
