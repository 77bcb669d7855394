package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	authcmd "github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/command"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/handler"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/notify"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/otp"
	authqry "github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/query"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/config"
	"github.com/manikantaaddala217-hub/fin-backend/shared/database"
	"github.com/manikantaaddala217-hub/fin-backend/shared/logger"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	redisClient "github.com/manikantaaddala217-hub/fin-backend/shared/redis"
	"github.com/manikantaaddala217-hub/fin-backend/shared/server"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load("auth-service", "8081")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Service, cfg.LogLevel, cfg.LogFormat)
	middleware.MustInitJWTSecret(cfg.JWTSecret)
	gin.SetMode(cfg.GinMode)

	db := database.MustOpen(cfg.DatabaseDriver, cfg.DatabaseURL, &models.User{})
	defer database.Close(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OTP state lives in Redis when reachable so every instance shares it
	var store otp.Store
	if redis, err := redisClient.NewClient(redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, keeping OTP state in memory")
		mem := otp.NewMemoryStore()
		go mem.RunSweeper(ctx, time.Minute)
		store = mem
	} else {
		defer redis.Close()
		store = otp.NewRedisStore(redis.Client)
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	// --- CQRS wiring ---
	userRepo := repository.NewUserRepository(db)
	commandSvc := authcmd.NewAuthCommandService(userRepo, store, mailer, cfg.OTPTTL, cfg.GrantTTL)
	querySvc := authqry.NewAuthQueryService(userRepo, cfg.TokenTTL)
	authHandler := handler.NewAuthHandler(commandSvc, querySvc)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware())

	router.POST("/login", authHandler.Login)
	router.POST("/refresh", authHandler.RefreshToken)
	router.GET("/send-otp", authHandler.SendOTP)
	router.POST("/validate-otp", authHandler.ValidateOTP)
	router.POST("/update-password", authHandler.UpdatePassword)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Service})
	})

	if err := server.Run(ctx, cfg.Service, cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
