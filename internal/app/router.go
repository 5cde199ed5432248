package app

import (
	"growth_assessment/docs"
	"growth_assessment/internal/middleware"
	"growth_assessment/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 用户问卷路由
	a.registerUserRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		// 建议网关
		public.POST("/llm-advice", c.advice.GetAdvice)
		public.POST("/save-user-report", c.advice.SaveUserReport)

		// 问卷目录
		public.GET("/sections", c.questionnaire.ListSections)
		public.GET("/sections/:key", c.questionnaire.GetSection)
	}
}

func (a *App) registerUserRoutes(router *gin.Engine, c *controllers) {
	users := router.Group("/api/users/:userId")
	if a.Config.Auth.Enabled {
		users.Use(middleware.AuthMiddleware(a.JWTSecret), middleware.SameUserMiddleware("userId"))
	}
	{
		users.GET("/answers", c.questionnaire.GetAnswers)
		users.DELETE("/answers", c.questionnaire.ResetAnswers)
		users.PUT("/answers/:questionId", c.questionnaire.UpdateAnswer)
		users.GET("/sections/:key/panels", c.questionnaire.GetPanels)
		users.POST("/submit", c.questionnaire.Submit)
		users.GET("/submissions", c.questionnaire.ListSubmissions)
		users.GET("/submissions/:id", c.questionnaire.GetSubmission)
	}
}
