package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/api-gateway/internal/proxy"
	"github.com/manikantaaddala217-hub/fin-backend/shared/config"
	"github.com/manikantaaddala217-hub/fin-backend/shared/logger"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/server"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load("api-gateway", "8080")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Service, cfg.LogLevel, cfg.LogFormat)
	middleware.MustInitJWTSecret(cfg.JWTSecret)
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Service})
	})

	routes := proxy.Routes(proxy.Targets{
		Auth: cfg.AuthServiceURL,
		User: cfg.UserServiceURL,
		Loan: cfg.LoanServiceURL,
	})
	proxy.Register(router, routes, proxy.NewClient(60*time.Second))

	if err := server.Run(context.Background(), cfg.Service, cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
