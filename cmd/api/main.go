package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/slot-booking-api/api/swagger"
	"github.com/noah-isme/slot-booking-api/db/migrations"
	"github.com/noah-isme/slot-booking-api/internal/handler"
	internalmiddleware "github.com/noah-isme/slot-booking-api/internal/middleware"
	"github.com/noah-isme/slot-booking-api/internal/repository"
	"github.com/noah-isme/slot-booking-api/internal/service"
	"github.com/noah-isme/slot-booking-api/pkg/cache"
	"github.com/noah-isme/slot-booking-api/pkg/config"
	"github.com/noah-isme/slot-booking-api/pkg/database"
	"github.com/noah-isme/slot-booking-api/pkg/jobs"
	"github.com/noah-isme/slot-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/slot-booking-api/pkg/middleware/cors"
	"github.com/noah-isme/slot-booking-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/slot-booking-api/pkg/middleware/requestid"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

// @title Slot Booking API
// @version 1.0.0
// @description Appointment slot availability, booking and administration.
// @BasePath /v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		logr.Fatal("apply migrations", zap.Error(err))
	}
	logr.Info("migrations applied", zap.Strings("files", applied))

	redisClient, err := cache.NewRedis(cfg.Redis, cfg.SlotCache)
	if err != nil {
		logr.Fatal("connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validation.New()
	metrics := service.NewMetricsService()

	slotRepo := repository.NewTimeSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.SlotCache.TTL, logr, redisClient != nil)
	slotSvc := service.NewSlotService(slotRepo, cacheSvc, metrics, validate, logr)
	bookingSvc := service.NewBookingService(slotRepo, bookingRepo, cacheSvc, metrics, validate, logr)
	exportSvc := service.NewExportService(bookingRepo, validate, logr)
	identity := service.NewIdentityService(service.IdentityConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Lifetime: cfg.JWT.Expiration,
	})

	worker := service.NewReminderWorker(reminderRepo, bookingRepo, service.NewLogNotifier(logr), metrics, cfg.Reminders.Retries, logr)
	queue := jobs.NewQueue("reminders", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reminders.Workers,
		MaxRetries: cfg.Reminders.Retries,
		RetryDelay: cfg.Reminders.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	reminderSvc := service.NewReminderService(reminderRepo, bookingRepo, queue, logr)
	if n, err := reminderSvc.RecoverPending(ctx); err != nil {
		logr.Warn("recover pending reminders", zap.Error(err))
	} else if n > 0 {
		logr.Info("requeued pending reminders", zap.Int("count", n))
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logr.Fatal("set trusted proxies", zap.Error(err))
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, handler.Handlers{
		Slots:    handler.NewSlotHandler(slotSvc),
		Bookings: handler.NewBookingHandler(bookingSvc, reminderSvc, exportSvc),
		Metrics:  handler.NewMetricsHandler(metrics, db),
	}, handler.RouteOptions{
		APIPrefix:    cfg.APIPrefix,
		Identity:     internalmiddleware.Identity(identity),
		BookingLimit: ratelimit.New(cfg.RateLimit.BookingPerMinute, cfg.RateLimit.BookingBurst).Middleware(logr),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
}
