package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhinaba-ghosh/sarodwala/internal/middleware"
	"github.com/abhinaba-ghosh/sarodwala/internal/service"
	"github.com/abhinaba-ghosh/sarodwala/pkg/config"
	"github.com/abhinaba-ghosh/sarodwala/pkg/logger"
	corsmiddleware "github.com/abhinaba-ghosh/sarodwala/pkg/middleware/cors"
	reqidmiddleware "github.com/abhinaba-ghosh/sarodwala/pkg/middleware/requestid"
)

// Router assembles the HTTP surface.
func Router(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, teacher *TeacherHandler, bookings *BookingHandler, whatsapp *WhatsAppHandler) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	r.GET("/teacher", teacher.Profile)
	r.GET("/teacher/availability", teacher.Availability)
	r.PUT("/teacher/availability", teacher.ReplaceAvailability)

	r.POST("/bookings", bookings.Create)
	r.GET("/bookings/all", bookings.ListAll)
	r.GET("/bookings/date", bookings.ListByDate)
	r.GET("/bookings/export", bookings.Export)
	r.DELETE("/bookings/:id", bookings.Delete)

	r.POST("/whatsapp", whatsapp.Send)

	return r
}
