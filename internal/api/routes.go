package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/tasks", h.ListTasks)
		api.POST("/tasks", h.CreateTask)
		api.PATCH("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)
		api.POST("/tasks/:id/toggle", h.ToggleTask)

		api.GET("/views/day", h.DayView)
		api.GET("/views/week", h.WeekView)
		api.GET("/views/month", h.MonthView)
		api.GET("/views/timeline", h.TimelineView)
		api.GET("/history", h.History)
		api.GET("/progress", h.Progress)
		api.GET("/missed", h.Missed)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)
		api.PATCH("/categories/:id", h.UpdateCategory)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.GET("/alerts", h.ListAlerts)
		api.POST("/alerts/:id/ack", h.AckAlert)
		api.POST("/alerts/:id/snooze", h.SnoozeAlert)
	}
}

// NewRouter builds the engine with recovery and request logging installed.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), GinZapMiddleware(logger))
	RegisterRoutes(r, h)
	return r
}
