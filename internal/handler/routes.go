package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine serving h
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	Register(r, h)
	return r
}

// Register mounts the tracker routes on r
func Register(r gin.IRouter, h *Handler) {
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/metadata", h.HandleMetadata)
		api.POST("/levels", h.HandleLevels)
		api.POST("/types", h.HandleTypes)
		api.POST("/categories", h.HandleCategories)

		api.POST("/submissions/all", h.HandleListSubmissions)
		api.POST("/submissions/summary", h.HandleSummary)
		api.POST("/submissions/insert", h.HandleInsert)
		api.POST("/submissions/update", h.HandleUpdate)

		api.POST("/weekly_progress", h.HandleWeeklyProgress)
		api.POST("/overall_progress", h.HandleOverallProgress)
		api.POST("/overall_pending", h.HandleOverallPending)
	}
}
