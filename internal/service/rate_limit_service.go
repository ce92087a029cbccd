package service

import (
	"time"

	"team_collab_backend/internal/config"
	"team_collab_backend/internal/repository"
	"team_collab_backend/pkg/logger"

	"go.uber.org/zap"
)

// RateLimitService 按 (用户, 端点) 的持久化滚动窗口计数
// 实现 middleware.RateLimitHitter
type RateLimitService struct {
	Repo   *repository.RateLimitRepository
	window time.Duration
}

func NewRateLimitService(repo *repository.RateLimitRepository, cfg *config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		Repo:   repo,
		window: time.Duration(cfg.WindowMinutes) * time.Minute,
	}
}

func (s *RateLimitService) Hit(userID uint, endpoint string) (int, time.Time, error) {
	return s.Repo.Hit(userID, endpoint, s.window)
}

// CleanupExpired 回收过期窗口行，由后台任务周期调用
func (s *RateLimitService) CleanupExpired() {
	deleted, err := s.Repo.CleanupExpired()
	if err != nil {
		logger.Log.Error("Rate limit window cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Log.Debug("Rate limit windows cleaned", zap.Int64("deleted", deleted))
	}
}
