package app

import (
	"time"

	"coder_quest_backend/docs"
	"coder_quest_backend/internal/config"
	"coder_quest_backend/internal/middleware"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/pkg/monitoring"
	"coder_quest_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由，登录后按用户限流
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(cfg),
		security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute),
	)
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/progress", c.progress.GetProgress)
	r.POST("/progress/check-in", c.progress.CheckIn)
	r.PUT("/progress/character-class", c.progress.ChooseCharacterClass)
	r.GET("/leaderboard", c.progress.GetLeaderboard)
	r.POST("/skill-trees/:tree/skills/:skillId", c.progress.SpendSkillPoints)

	quests := r.Group("/quests")
	{
		quests.GET("", c.quest.ListQuests)
		quests.GET("/recommended", c.quest.RecommendQuests)
		quests.GET("/:questId", c.quest.GetQuest)
		quests.POST("/:questId/rate", c.quest.RateQuest)
		quests.POST("/:questId/start", c.quest.StartQuest)
		quests.POST("/:questId/submit", c.quest.SubmitQuest)
		quests.POST("/:questId/abandon", c.quest.AbandonQuest)
		quests.POST("/:questId/hints/:index", c.quest.UseHint)
	}

	achievements := r.Group("/achievements")
	{
		achievements.GET("", c.achievement.ListAchievements)
		achievements.POST("/check", c.achievement.CheckAchievements)
	}
}

// registerTeacherRoutes 教师与管理员可手动发放经验、上报行为计数
func (a *App) registerTeacherRoutes(r *gin.RouterGroup, c *controllers) {
	admin := r.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		admin.POST("/users/:userId/xp", c.progress.GrantXP)
		admin.POST("/users/:userId/stats", c.progress.RecordActivity)
	}
}
