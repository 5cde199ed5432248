package app

import (
	"context"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/config"
	"growth_assessment/internal/controller"
	"growth_assessment/internal/repository"
	"growth_assessment/internal/service"
	"growth_assessment/internal/util"
	"growth_assessment/pkg/configwatcher"
	"growth_assessment/pkg/database"
	"growth_assessment/pkg/logger"
	"growth_assessment/pkg/monitoring"
	"growth_assessment/pkg/security"
	"growth_assessment/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Registry *catalog.Registry

	services *services
	tracer   *sdktrace.TracerProvider
	ctx      context.Context
	cancel   context.CancelFunc

	mu              sync.RWMutex
	configCallbacks []func(*config.Config)
	jwtSecret       string
}

type repositories struct {
	answers     repository.AnswerRepository
	submissions *repository.SubmissionRepository
}

type services struct {
	advice        *service.AdviceService
	storage       *service.StorageService
	questionnaire *service.QuestionnaireService
}

type controllers struct {
	advice        *controller.AdviceController
	questionnaire *controller.QuestionnaireController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig fans a reloaded configuration out to every subscriber.
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.RLock()
	callbacks := make([]func(*config.Config), len(a.configCallbacks))
	copy(callbacks, a.configCallbacks)
	a.mu.RUnlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// JWTSecret returns the current signing secret.
func (a *App) JWTSecret() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jwtSecret
}

func (a *App) initRepositories() *repositories {
	repos := &repositories{}
	if a.Redis != nil {
		repos.answers = repository.NewRedisAnswerRepository(a.Redis, a.Config.Redis.KeyPrefix, a.Config.Redis.AnswerTTL)
	} else {
		repos.answers = repository.NewMemoryAnswerRepository()
	}
	if a.DB != nil {
		repos.submissions = repository.NewSubmissionRepository(a.DB)
	}
	return repos
}

func (a *App) initServices(repos *repositories) *services {
	s := &services{}

	s.advice = service.NewAdviceService(a.Config.Advice, nil)
	a.RegisterConfigCallback(s.advice.OnConfigChange)

	s.storage = service.NewStorageService(a.Config)
	s.questionnaire = service.NewQuestionnaireService(a.Registry, repos.answers, repos.submissions, s.storage, s.advice)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		advice:        controller.NewAdviceController(s.advice),
		questionnaire: controller.NewQuestionnaireController(s.questionnaire),
		health:        controller.NewHealthController(a.DB, a.Redis, s.advice),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine) {
	cfg := a.Config
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Registry:  catalog.MustLoad(),
		ctx:       ctx,
		cancel:    cancel,
		jwtSecret: cfg.JWT.Secret,
	}

	if cfg.Database.Enabled {
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		app.DB = db
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.RegisterConfigCallback(func(c *config.Config) {
		app.mu.Lock()
		app.jwtSecret = c.JWT.Secret
		app.mu.Unlock()
	})

	repos := app.initRepositories()
	app.services = app.initServices(repos)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	logger.Log.Info("Catalog loaded", zap.Int("sections", len(app.Registry.Sections())))
	return app
}

func (a *App) watchConfig() {
	if a.Config.ConfigFile == "" {
		return
	}
	go func() {
		if err := configwatcher.WatchConfig(a.ctx, a.Config.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	a.watchConfig()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close stops background work and releases connections.
func (a *App) Close(ctx context.Context) {
	a.cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
