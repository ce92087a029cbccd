package app

import (
	"team_collab_backend/internal/config"
	"team_collab_backend/internal/middleware"
	"team_collab_backend/internal/model"
	"team_collab_backend/internal/util"
	"team_collab_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 端点限流上限，按端点标识从配置取
	ceiling := func(endpoint string) int {
		return cfg.RateLimit.Endpoints[endpoint]
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		// 会话
		authGroup.POST("/conversations", c.conversation.Create)
		authGroup.GET("/conversations", c.conversation.List)
		authGroup.GET("/conversations/by-entity", c.conversation.ByRelatedEntity)
		authGroup.GET("/conversations/:id", c.conversation.Get)
		authGroup.PUT("/conversations/:id", c.conversation.Update)
		authGroup.POST("/conversations/:id/archive", c.conversation.Archive)
		authGroup.POST("/conversations/:id/participants", c.conversation.AddParticipant)
		authGroup.DELETE("/conversations/:id/participants/:userId", c.conversation.RemoveParticipant)
		authGroup.POST("/conversations/:id/read", c.conversation.MarkRead)

		// 消息
		authGroup.POST("/conversations/:id/messages",
			middleware.EndpointRateLimit(s.rateLimit, util.EndpointSendMessage, ceiling(util.EndpointSendMessage)),
			c.message.Send)
		authGroup.GET("/conversations/:id/messages", c.message.List)
		authGroup.GET("/messages/search", c.message.Search)
		authGroup.GET("/messages/:id", c.message.Get)
		authGroup.PATCH("/messages/:id", c.message.Edit)
		authGroup.DELETE("/messages/:id", c.message.Delete)

		// 回执
		authGroup.POST("/messages/:id/delivered", c.message.MarkDelivered)
		authGroup.POST("/messages/:id/read", c.message.MarkRead)
		authGroup.GET("/messages/:id/receipts", c.message.Receipts)
		authGroup.GET("/conversations/:id/unread", c.message.UnreadCount)

		// 文件与版本
		authGroup.POST("/conversations/:id/files",
			middleware.EndpointRateLimit(s.rateLimit, util.EndpointUploadFile, ceiling(util.EndpointUploadFile)),
			c.file.Upload)
		authGroup.GET("/conversations/:id/files", c.file.List)
		authGroup.GET("/files/:id", c.file.Get)
		authGroup.POST("/files/:id/versions",
			middleware.EndpointRateLimit(s.rateLimit, util.EndpointCreateVersion, ceiling(util.EndpointCreateVersion)),
			c.file.UploadVersion)
		authGroup.GET("/files/:id/versions", c.file.ListVersions)

		// 会议
		authGroup.POST("/meetings", c.meeting.Schedule)
		authGroup.GET("/meetings/:id", c.meeting.Get)
		authGroup.GET("/conversations/:id/meetings", c.meeting.ListForConversation)
		authGroup.PATCH("/meetings/:id/status", c.meeting.UpdateStatus)
		authGroup.POST("/meetings/:id/rsvp", c.meeting.RSVP)
		authGroup.POST("/meetings/:id/reminders", c.meeting.ScheduleReminder)

		// 治理日志（服务层校验：flag任意成员可用，其余操作需owner或管理员）
		authGroup.POST("/messages/:id/moderation", c.moderation.Record)
		authGroup.GET("/messages/:id/moderation", c.moderation.ListForMessage)

		// 偏好、置顶与标签
		authGroup.GET("/conversations/:id/preferences", c.preference.GetPreference)
		authGroup.PUT("/conversations/:id/preferences", c.preference.UpdatePreference)
		authGroup.POST("/conversations/:id/pin", c.preference.Pin)
		authGroup.DELETE("/conversations/:id/pin", c.preference.Unpin)
		authGroup.GET("/pins", c.preference.ListPins)
		authGroup.POST("/conversations/:id/labels", c.preference.AddLabel)
		authGroup.DELETE("/conversations/:id/labels/:label", c.preference.RemoveLabel)
		authGroup.GET("/conversations/:id/labels", c.preference.ListLabels)
	}

	// 3. 管理员相关接口
	adminGroup := router.Group("/api")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.GET("/reminders/pending", c.meeting.PendingReminders)
	}
}
