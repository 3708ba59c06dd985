package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coder_quest_backend/internal/config"
	"coder_quest_backend/internal/controller"
	"coder_quest_backend/internal/grader"
	"coder_quest_backend/internal/repository"
	"coder_quest_backend/internal/service"
	"coder_quest_backend/pkg/configwatcher"
	"coder_quest_backend/pkg/database"
	"coder_quest_backend/pkg/logger"
	"coder_quest_backend/pkg/monitoring"
	"coder_quest_backend/pkg/security"
	"coder_quest_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	progress *repository.ProgressRepository
	catalog  *repository.CatalogRepository
	cached   *repository.CachedCatalog
	ratings  *repository.RatingRepository
}

type services struct {
	progression *service.ProgressionService
	rating      *service.RatingService
}

type controllers struct {
	progress    *controller.ProgressController
	quest       *controller.QuestController
	achievement *controller.AchievementController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{
		progress: repository.NewProgressRepository(db),
		catalog:  repository.NewCatalogRepository(db),
		ratings:  repository.NewRatingRepository(db),
	}
	if cfg.CatalogCache.Enabled && rdb != nil {
		repos.cached = repository.NewCachedCatalog(repos.catalog, rdb, cfg.CatalogCache.TTL)
		// 目录可能在本次启动的迁移中变化，旧缓存不可信
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.cached.Invalidate(ctx); err != nil {
			logger.Log.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	var catalog service.Catalog = repos.catalog
	if repos.cached != nil {
		catalog = repos.cached
	}

	var locker service.UserLocker
	var events service.EventPublisher
	if rdb != nil {
		locker = repository.NewRedisUserLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait)
		events = service.NewRedisEventPublisher(rdb)
	} else {
		// 未配置 Redis：单实例部署
		locker = repository.NewLocalUserLocker(cfg.Lock.Wait)
		events = service.NopEventPublisher{}
	}

	var g service.Grader
	if cfg.Judge0.URL != "" {
		g = grader.NewJudge0Grader(cfg.Judge0)
	} else {
		logger.Log.Warn("Judge0 URL not configured, quest submissions will be rejected")
	}

	s := &services{
		progression: service.NewProgressionService(
			repos.progress,
			catalog,
			g,
			locker,
			events,
			cfg.Gamification,
			logger.Named("progression"),
		),
		rating: service.NewRatingService(repos.ratings, catalog, repos.progress, logger.Named("rating")),
	}

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.progression.SetRules(newCfg.Gamification)
		logger.Log.Info("Gamification rules reloaded",
			zap.Int("baseXP", newCfg.Gamification.BaseXP),
			zap.Int("xpStep", newCfg.Gamification.XPStep),
		)
	})
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		progress:    controller.NewProgressController(s.progression),
		quest:       controller.NewQuestController(s.progression, s.rating),
		achievement: controller.NewAchievementController(s.progression),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 监听配置文件，热更新成长规则
func (a *App) startBackgroundTasks(ctx context.Context) {
	go func() {
		err := configwatcher.WatchConfig(ctx, a.ConfigDir, time.Second, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb, cfg)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coder-quest", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startBackgroundTasks(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
