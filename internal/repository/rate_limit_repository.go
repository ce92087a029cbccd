package repository

import (
	"errors"
	"time"

	"team_collab_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateLimitRepository struct {
	DB *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{DB: db}
}

// Hit 记一次请求并返回窗口内累计次数与窗口到期时间
// 对窗口行加排他锁后读改写，保证并发请求计数不丢失；
// 窗口过期时在原行上重建，计数归 1
func (r *RateLimitRepository) Hit(userID uint, endpoint string, window time.Duration) (int, time.Time, error) {
	now := time.Now()
	var count int
	var expiresAt time.Time

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var w model.RateLimitWindow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND endpoint = ?", userID, endpoint).
			First(&w).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			w = model.RateLimitWindow{
				UserID:       userID,
				Endpoint:     endpoint,
				RequestCount: 1,
				WindowStart:  now,
				ExpiresAt:    now.Add(window),
			}
			// 两个事务同时首建时让后来者落到更新分支
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"request_count": gorm.Expr("request_count + 1"),
				}),
			}).Create(&w).Error; err != nil {
				return err
			}
			// 冲突落败方内存里的计数是过期的，回读行上的真实值
			var persisted model.RateLimitWindow
			if err := tx.Where("user_id = ? AND endpoint = ?", userID, endpoint).
				First(&persisted).Error; err != nil {
				return err
			}
			count = persisted.RequestCount
			expiresAt = persisted.ExpiresAt
			return nil
		}
		if err != nil {
			return err
		}

		if now.After(w.ExpiresAt) {
			w.RequestCount = 1
			w.WindowStart = now
			w.ExpiresAt = now.Add(window)
		} else {
			w.RequestCount++
		}

		if err := tx.Save(&w).Error; err != nil {
			return err
		}
		count = w.RequestCount
		expiresAt = w.ExpiresAt
		return nil
	})

	return count, expiresAt, err
}

func (r *RateLimitRepository) Get(userID uint, endpoint string) (*model.RateLimitWindow, error) {
	var w model.RateLimitWindow
	err := r.DB.Where("user_id = ? AND endpoint = ?", userID, endpoint).First(&w).Error
	return &w, err
}

// CleanupExpired 后台定期回收过期窗口行
func (r *RateLimitRepository) CleanupExpired() (int64, error) {
	result := r.DB.Delete(&model.RateLimitWindow{}, "expires_at < ?", time.Now())
	return result.RowsAffected, result.Error
}
