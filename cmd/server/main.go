package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhinaba-ghosh/sarodwala/internal/handler"
	"github.com/abhinaba-ghosh/sarodwala/internal/notify"
	"github.com/abhinaba-ghosh/sarodwala/internal/repository"
	"github.com/abhinaba-ghosh/sarodwala/internal/service"
	"github.com/abhinaba-ghosh/sarodwala/pkg/cache"
	"github.com/abhinaba-ghosh/sarodwala/pkg/config"
	"github.com/abhinaba-ghosh/sarodwala/pkg/database"
	"github.com/abhinaba-ghosh/sarodwala/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.Teacher.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid teacher timezone", "timezone", cfg.Teacher.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Bootstrap(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to bootstrap schema", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, slot caching disabled", "error", err)
		redisClient = nil
	}

	teacherRepo := repository.NewTeacherRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	teacherSvc := service.NewTeacherService(teacherRepo, cfg.Teacher, loc, logr)
	availabilitySvc := service.NewAvailabilityService(teacherSvc, bookingRepo, cacheRepo, cfg.Teacher.ID, loc, cfg.Booking.SlotCacheTTL, logr)

	waClient := notify.NewClient(cfg.WhatsApp)
	if !waClient.Configured() {
		logr.Info("whatsapp business api credentials not configured, confirmations disabled")
	}
	dispatcher := notify.NewDispatcher(waClient, cfg.Teacher.DefaultName, cfg.Teacher.DefaultInstrument, loc, logr)

	bookingSvc := service.NewBookingService(bookingRepo, dispatcher, availabilitySvc, metricsSvc, validator.New(), cfg.Teacher.ID, loc, logr)
	exportSvc := service.NewExportService(bookingRepo, cfg.Teacher.ID, loc, logr)

	if err := teacherSvc.EnsureDefaults(ctx); err != nil {
		logr.Sugar().Fatalw("failed to seed teacher record", "error", err)
	}

	teacherHandler := handler.NewTeacherHandler(teacherSvc, availabilitySvc, loc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, exportSvc, loc)
	whatsappHandler := handler.NewWhatsAppHandler(dispatcher)

	r := handler.Router(cfg, logr, metricsSvc, teacherHandler, bookingHandler, whatsappHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "teacher_id", cfg.Teacher.ID)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
