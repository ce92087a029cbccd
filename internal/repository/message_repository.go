package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const maxCacheMessages = 50 // 每个会话缓存最近50条消息

type MessageRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewMessageRepository(db *gorm.DB, rdb *redis.Client) *MessageRepository {
	return &MessageRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

// CreateWithFanout 发消息的原子落库：
// 插入消息、推进会话活跃时间、给除发送者外的成员未读数 +1、
// 为每个接收者补一行回执，全部在一个事务内完成
func (r *MessageRepository) CreateWithFanout(msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = model.GenerateUUID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Participant{}).
			Where("conversation_id = ? AND user_id <> ?", msg.ConversationID, msg.SenderID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + 1")).Error; err != nil {
			return err
		}

		var recipientIDs []uint
		if err := tx.Table("participants").
			Where("conversation_id = ? AND user_id <> ?", msg.ConversationID, msg.SenderID).
			Pluck("user_id", &recipientIDs).Error; err != nil {
			return err
		}

		if len(recipientIDs) > 0 {
			receipts := make([]model.Receipt, 0, len(recipientIDs))
			for _, uid := range recipientIDs {
				receipts = append(receipts, model.Receipt{
					MessageID: msg.ID,
					UserID:    uid,
					CreatedAt: msg.CreatedAt,
				})
			}
			if err := tx.Create(&receipts).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err == nil && r.Redis != nil {
		go r.cacheMessage(msg)
	}
	return err
}

func (r *MessageRepository) cacheMessage(msg *model.Message) {
	key := fmt.Sprintf("collab:msgcache:%s", msg.ConversationID)
	data, _ := json.Marshal(msg)

	pipe := r.Redis.Pipeline()
	pipe.LPush(r.ctx, key, data)
	pipe.LTrim(r.ctx, key, 0, maxCacheMessages-1)
	pipe.Expire(r.ctx, key, 24*time.Hour)
	pipe.Exec(r.ctx)
}

func (r *MessageRepository) invalidateCache(convID string) {
	if r.Redis != nil {
		r.Redis.Del(r.ctx, fmt.Sprintf("collab:msgcache:%s", convID))
	}
}

func (r *MessageRepository) FindByID(id string) (*model.Message, error) {
	var msg model.Message
	err := r.DB.Preload("Attachments").First(&msg, "id = ?", id).Error
	return &msg, err
}

// List 按时间倒序翻页，已删除消息不出现在结果中
// 第一页无游标、无偏移时先读缓存，不足再回源补齐
func (r *MessageRepository) List(convID string, limit, offset int, beforeID string) ([]model.Message, error) {
	var cacheMsgs []model.Message
	if beforeID == "" && offset == 0 && r.Redis != nil {
		key := fmt.Sprintf("collab:msgcache:%s", convID)
		cached, err := r.Redis.LRange(r.ctx, key, 0, int64(limit-1)).Result()
		if err == nil && len(cached) > 0 {
			for _, item := range cached {
				var m model.Message
				if err := json.Unmarshal([]byte(item), &m); err == nil {
					cacheMsgs = append(cacheMsgs, m)
				}
			}
			if len(cacheMsgs) >= limit {
				return cacheMsgs, nil
			}
			if len(cacheMsgs) > 0 {
				beforeID = cacheMsgs[len(cacheMsgs)-1].ID
				limit = limit - len(cacheMsgs)
			}
		}
	}

	var msgs []model.Message
	db := r.DB.Preload("Attachments").
		Where("conversation_id = ?", convID).
		Where("status <> ?", model.MessageDeleted)

	if beforeID != "" {
		var beforeMsg model.Message
		if err := r.DB.First(&beforeMsg, "id = ?", beforeID).Error; err == nil {
			db = db.Where("created_at < ?", beforeMsg.CreatedAt)
		}
	}

	err := db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error

	if len(cacheMsgs) > 0 {
		return append(cacheMsgs, msgs...), err
	}
	return msgs, err
}

// Search 仅在用户参与的会话范围内做内容匹配，已删除消息不出现在结果中
// convID 非空时把范围收窄到单个会话
func (r *MessageRepository) Search(userID uint, query, convID string, limit, offset int) ([]model.Message, int64, error) {
	var msgs []model.Message
	var total int64

	db := r.DB.Model(&model.Message{}).
		Joins("JOIN participants ON participants.conversation_id = messages.conversation_id").
		Where("participants.user_id = ?", userID).
		Where("messages.status <> ?", model.MessageDeleted).
		Where("messages.content LIKE ?", "%"+query+"%")

	if convID != "" {
		db = db.Where("messages.conversation_id = ?", convID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("messages.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error
	return msgs, total, err
}

// Edit 只有未删除的消息可被改写；调用方已校验发送者身份
func (r *MessageRepository) Edit(msgID string, content string) (*model.Message, error) {
	now := time.Now()
	result := r.DB.Model(&model.Message{}).
		Where("id = ? AND status <> ?", msgID, model.MessageDeleted).
		Updates(map[string]interface{}{
			"content":   content,
			"status":    model.MessageEdited,
			"edited_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, util.ErrMessageNotFound
	}

	msg, err := r.FindByID(msgID)
	if err == nil {
		r.invalidateCache(msg.ConversationID)
	}
	return msg, err
}

// SoftDelete 标记删除：保留行与内容占位，回执和审计记录不受影响
// 重复删除幂等返回当前状态
func (r *MessageRepository) SoftDelete(msgID string) (*model.Message, error) {
	now := time.Now()
	result := r.DB.Model(&model.Message{}).
		Where("id = ? AND status <> ?", msgID, model.MessageDeleted).
		Updates(map[string]interface{}{
			"status":     model.MessageDeleted,
			"deleted_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	msg, err := r.FindByID(msgID)
	if err == nil {
		r.invalidateCache(msg.ConversationID)
	}
	return msg, err
}
