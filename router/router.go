// Package router assembles the gin engine.
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prepdaily/handler"
	"prepdaily/middleware"
	"prepdaily/usecase"
)

const defaultMaxBodyBytes = 1 << 20

type Deps struct {
	Tasks     *usecase.TasksService
	Daily     *usecase.DailyService
	Questions *usecase.QuestionsService

	Auth         middleware.AuthConfig
	Revoker      handler.TokenRevoker
	// HealthChecks are probed by /healthz; a nil entry reports "disabled".
	HealthChecks map[string]handler.Pinger

	Now          usecase.Clock
	Logger       *slog.Logger
	MaxBodyBytes int64
}

func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = defaultMaxBodyBytes
	}

	router := gin.New()
	router.Use(
		middleware.RequestTracingMiddleware(),
		middleware.EnhancedRecoveryMiddleware(d.Logger),
		middleware.RequestLogger(d.Logger),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(),
	)

	health := handler.NewHealthHandler(d.HealthChecks)
	router.GET("/healthz", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tasks := handler.NewTaskHandler(d.Tasks)
	daily := handler.NewDailyHandler(d.Daily, d.Now)
	questions := handler.NewQuestionHandler(d.Questions)
	auth := handler.NewAuthHandler(d.Revoker)

	// Protected routes (authentication required)
	api := router.Group("/api")
	api.Use(
		middleware.AuthMiddleware(d.Auth),
		middleware.RequestSizeLimiter(d.MaxBodyBytes),
		middleware.CacheControlMiddleware("no-store"),
	)
	{
		t := api.Group("/tasks")
		{
			t.POST("", tasks.CreateTask)
			t.GET("", tasks.ListTasks)
			t.GET("/:id", tasks.GetTask)
			t.PUT("/:id", tasks.UpdateTask)
			t.POST("/:id/complete", tasks.CompleteTask)
			t.DELETE("/:id", tasks.DeleteTask)
		}

		dy := api.Group("/daily")
		{
			dy.GET("", daily.GetDay)
			dy.GET("/range", daily.GetRange)
		}

		q := api.Group("/questions")
		{
			q.POST("", questions.CreateQuestion)
			q.GET("/backlog", questions.GetBacklog)
			q.POST("/bulk-delete", questions.BulkDelete)
			q.POST("/bulk-move", questions.BulkMove)
			q.GET("/:id", questions.GetQuestion)
			q.PUT("/:id", questions.UpdateQuestion)
			q.DELETE("/:id", questions.DeleteQuestion)
			q.POST("/:id/solve", questions.SolveQuestion)
			q.POST("/:id/reset", questions.ResetQuestion)
			q.POST("/:id/review", questions.ReviewQuestion)
			q.POST("/:id/star", questions.ToggleStar)
			q.POST("/:id/move", questions.MoveToOccurrence)
			q.POST("/:id/backlog", questions.MoveToBacklog)
		}

		api.GET("/reviews/due", questions.DueReviews)
		api.POST("/auth/logout", auth.Logout)
	}

	return router
}
