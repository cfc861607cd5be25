package app

import (
	"classroom_champions_backend/docs"
	"classroom_champions_backend/internal/config"
	"classroom_champions_backend/internal/middleware"
	"classroom_champions_backend/internal/model"

	"classroom_champions_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerClassroomRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerClassroomRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 班级
	rg.POST("/classes", c.class.CreateClass)
	rg.GET("/classes", c.class.ListClasses)
	rg.GET("/classes/:id/students", c.class.GetRoster)
	rg.POST("/classes/:id/students", c.class.EnrollStudent)
	rg.GET("/classes/:id/leaderboard", c.class.GetLeaderboard)
	rg.POST("/classes/:id/weekly-reset", c.class.WeeklyReset)
	rg.GET("/classes/:id/quests", c.quest.ListClassQuests)

	// 学生
	rg.GET("/students/:id", c.student.GetStudent)
	rg.DELETE("/students/:id", c.student.RemoveStudent)
	rg.POST("/students/:id/xp", c.student.AwardXP)
	rg.POST("/students/bulk-xp", c.student.BulkAwardXP)
	rg.GET("/students/:id/progress", c.student.GetProgress)
	rg.GET("/students/:id/logs", c.student.GetLogs)
	rg.POST("/students/:id/checkin", c.student.CheckIn)
	rg.GET("/students/:id/quests", c.quest.AvailableQuests)

	// 商城
	rg.GET("/shop/items", c.shop.ListItems)
	rg.POST("/students/:id/purchase", c.shop.Purchase)
	rg.POST("/students/:id/items/:itemId/use", c.shop.UseItem)

	// 任务
	rg.GET("/quests/givers", c.quest.ListGivers)
	rg.POST("/quests", c.quest.CreateQuest)
	rg.GET("/quests/:id", c.quest.GetQuest)
	rg.POST("/quests/:id/archive", c.quest.ArchiveQuest)
	rg.POST("/quests/:id/complete", c.quest.CompleteQuest)
	rg.POST("/quests/:id/complete-class", c.quest.CompleteQuestForClass)
	rg.POST("/quests/:id/start", c.quest.StartQuest)

	// 任务蓝本
	rg.GET("/quests/templates", c.quest.ListTemplates)
	rg.POST("/quests/templates", c.quest.CreateTemplate)
	rg.POST("/quests/templates/:id/instantiate", c.quest.InstantiateTemplate)
	rg.DELETE("/quests/templates/:id", c.quest.DeleteTemplate)
}

// registerAdminRoutes 商品管理等仅限管理员的接口
func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/shop/items", c.shop.CreateItem)
		admin.DELETE("/shop/items/:id", c.shop.DeleteItem)
		admin.POST("/shop/art", c.shop.UploadArt)
	}
}
