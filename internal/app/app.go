package app

import (
	"classroom_champions_backend/internal/config"
	"classroom_champions_backend/internal/controller"
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/repository"
	"classroom_champions_backend/internal/service"
	"classroom_champions_backend/pkg/configwatcher"
	"classroom_champions_backend/pkg/database"
	"classroom_champions_backend/pkg/logger"
	"classroom_champions_backend/pkg/monitoring"
	"classroom_champions_backend/pkg/security"
	"classroom_champions_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	class   *repository.ClassRepository
	student *repository.StudentRepository
	quest   *repository.QuestRepository
	catalog *repository.CatalogRepository
	shop    *repository.ShopRepository
	checkin *repository.CheckinRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	progression *service.ProgressionService
	student     *service.StudentService
	shop        *service.ShopService
	quest       *service.QuestService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth    *controller.AuthController
	class   *controller.ClassController
	student *controller.StudentController
	shop    *controller.ShopController
	quest   *controller.QuestController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		class:   repository.NewClassRepository(db),
		student: repository.NewStudentRepository(db),
		quest:   repository.NewQuestRepository(db),
		catalog: repository.NewCatalogRepository(db),
		shop:    repository.NewShopRepository(db),
		checkin: repository.NewCheckinRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)

	s.progression = service.NewProgressionService(repos.student, repos.catalog, repos.catalog, cfg.Game)
	s.progression.OnLevelUp(func(student *model.Student, oldLevel, newLevel int) {
		logger.Log.Info("student leveled up",
			zap.Uint("student_id", student.ID),
			zap.Int("from", oldLevel),
			zap.Int("to", newLevel))
	})
	s.progression.OnPetUnlock(func(student *model.Student, pet model.Pet) {
		logger.Log.Info("pet unlocked",
			zap.Uint("student_id", student.ID),
			zap.String("pet", pet.Name))
	})
	s.progression.OnAchievement(func(student *model.Student, def model.AchievementDef) {
		logger.Log.Info("achievement earned",
			zap.Uint("student_id", student.ID),
			zap.String("code", def.Code))
	})

	s.student = service.NewStudentService(repos.student, repos.class, repos.checkin, s.progression, rdb)
	s.shop = service.NewShopService(repos.student, repos.shop, repos.catalog, s.progression, cfg.Game.CoinsPerXP)
	s.quest = service.NewQuestService(repos.quest, repos.student, s.progression)
	s.leaderboard = service.NewLeaderboardService(repos.student, rdb)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		class:   controller.NewClassController(repos.class, s.student, s.leaderboard),
		student: controller.NewStudentController(s.student, s.progression),
		shop:    controller.NewShopController(repos.shop, s.shop, s.student, s.storage),
		quest:   controller.NewQuestController(repos.quest, s.quest, s.student),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 每小时检查一次周重置，实际执行由Redis锁保证全局一次
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := s.student.AutoWeeklyReset(context.Background()); err != nil {
				logger.Log.Error("weekly reset error", zap.Error(err))
			}
		}
	}()

	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(v interface{}) {
		newCfg, ok := v.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("config file reloaded")
		for _, cb := range a.configCallbacks {
			cb(newCfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("classroom-champions", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

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

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
