package middleware

import (
	"strconv"
	"time"

	"team_collab_backend/internal/util"
	"team_collab_backend/pkg/logger"
	"team_collab_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitHitter 业务端点限流计数接口
// 返回窗口内累计次数与窗口到期时间
type RateLimitHitter interface {
	Hit(userID uint, endpoint string) (int, time.Time, error)
}

// EndpointRateLimit 按(用户,端点)持久化窗口限流
// ceiling <= 0 表示该端点不限流；计数器故障时放行并记录日志
func EndpointRateLimit(limiter RateLimitHitter, endpoint string, ceiling int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ceiling <= 0 {
			c.Next()
			return
		}

		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		count, expiresAt, err := limiter.Hit(claims.UserID, endpoint)
		if err != nil {
			logger.Log.Error("Rate limit counter failure, allowing request",
				zap.String("endpoint", endpoint),
				zap.Uint("userID", claims.UserID),
				zap.Error(err))
			c.Next()
			return
		}

		if count > ceiling {
			monitoring.RateLimitRejections.WithLabelValues(endpoint).Inc()
			retryAfter := int(time.Until(expiresAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			util.FromError(c, util.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
