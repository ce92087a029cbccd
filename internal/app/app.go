package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"team_collab_backend/internal/config"
	"team_collab_backend/internal/controller"
	"team_collab_backend/internal/repository"
	"team_collab_backend/internal/service"
	"team_collab_backend/pkg/configwatcher"
	"team_collab_backend/pkg/database"
	"team_collab_backend/pkg/logger"
	"team_collab_backend/pkg/monitoring"
	"team_collab_backend/pkg/security"
	"team_collab_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	conversation *repository.ConversationRepository
	message      *repository.MessageRepository
	receipt      *repository.ReceiptRepository
	file         *repository.FileRepository
	meeting      *repository.MeetingRepository
	moderation   *repository.ModerationRepository
	preference   *repository.PreferenceRepository
	rateLimit    *repository.RateLimitRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	email        *service.EmailService
	conversation *service.ConversationService
	message      *service.MessageService
	receipt      *service.ReceiptService
	file         *service.FileService
	meeting      *service.MeetingService
	reminder     *service.ReminderService
	moderation   *service.ModerationService
	preference   *service.PreferenceService
	rateLimit    *service.RateLimitService
}

type controllers struct {
	auth         *controller.AuthController
	conversation *controller.ConversationController
	message      *controller.MessageController
	file         *controller.FileController
	meeting      *controller.MeetingController
	moderation   *controller.ModerationController
	preference   *controller.PreferenceController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		conversation: repository.NewConversationRepository(db, rdb),
		message:      repository.NewMessageRepository(db, rdb),
		receipt:      repository.NewReceiptRepository(db),
		file:         repository.NewFileRepository(db),
		meeting:      repository.NewMeetingRepository(db),
		moderation:   repository.NewModerationRepository(db),
		preference:   repository.NewPreferenceRepository(db),
		rateLimit:    repository.NewRateLimitRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.email = service.NewEmailService(&cfg.Email)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.conversation = service.NewConversationService(repos.conversation, repos.user)
	s.message = service.NewMessageService(repos.message, repos.conversation)
	s.receipt = service.NewReceiptService(repos.receipt, repos.message, repos.conversation)
	s.file = service.NewFileService(repos.file, repos.conversation, repos.message, s.storage)
	s.meeting = service.NewMeetingService(repos.meeting, repos.conversation, repos.user, s.email)
	s.reminder = service.NewReminderService(repos.meeting, repos.conversation, repos.user, s.email)
	s.moderation = service.NewModerationService(repos.moderation, repos.message, repos.conversation)
	s.preference = service.NewPreferenceService(repos.preference, repos.conversation)
	s.rateLimit = service.NewRateLimitService(repos.rateLimit, &cfg.RateLimit)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		conversation: controller.NewConversationController(s.conversation),
		message:      controller.NewMessageController(s.message, s.receipt),
		file:         controller.NewFileController(s.file),
		meeting:      controller.NewMeetingController(s.meeting, s.reminder),
		moderation:   controller.NewModerationController(s.moderation),
		preference:   controller.NewPreferenceController(s.preference),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	ipMax := cfg.RateLimit.IPMaxRequests
	if ipMax <= 0 {
		ipMax = 100000
	}
	router.Use(security.IPRateLimiter(ipMax, time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	// 提醒派发：进程内定时巡检到点的会议提醒
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Reminder.PollSeconds) * time.Second)
		for range ticker.C {
			if n, err := s.reminder.DispatchDue(); err != nil {
				logger.Log.Error("reminder dispatch error", zap.Error(err))
			} else if n > 0 {
				logger.Log.Info("reminders dispatched", zap.Int("count", n))
			}
		}
	}()

	// 过期限流窗口回收
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.RateLimit.CleanupMinutes) * time.Minute)
		for range ticker.C {
			s.rateLimit.CleanupExpired()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 是可选加速层，不可用时降级为纯数据库路径
		logger.Log.Warn("Redis unavailable, running without cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("team-collab-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, services, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

	// 配置热加载
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		c, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("Config reloaded")
		for _, cb := range app.configCallbacks {
			cb(c)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
