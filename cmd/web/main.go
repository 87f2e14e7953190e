package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/slot-booking-api/internal/client"
	"github.com/noah-isme/slot-booking-api/internal/web"
	"github.com/noah-isme/slot-booking-api/pkg/config"
	"github.com/noah-isme/slot-booking-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/slot-booking-api/pkg/middleware/requestid"
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	httpClient := &http.Client{Timeout: cfg.Web.APITimeout}
	visitor := client.New(cfg.Web.APIBaseURL, client.WithHTTPClient(httpClient))
	admin := client.New(cfg.Web.APIBaseURL, client.WithHTTPClient(httpClient), client.WithToken(cfg.Web.AdminToken))
	if cfg.Web.AdminToken == "" {
		logr.Warn("WEB_ADMIN_TOKEN is empty; slot creation from the admin console will be rejected")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logr.Fatal("set trusted proxies", zap.Error(err))
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	web.NewServer(visitor, admin, logr).Register(r)

	addr := fmt.Sprintf(":%d", cfg.Web.Port)
	logr.Sugar().Infow("web ui starting", "addr", addr, "api", cfg.Web.APIBaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("web ui failed", "error", err)
	}
}
