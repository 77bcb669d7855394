package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/config"
	"github.com/manikantaaddala217-hub/fin-backend/shared/database"
	"github.com/manikantaaddala217-hub/fin-backend/shared/events"
	"github.com/manikantaaddala217-hub/fin-backend/shared/logger"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	redisClient "github.com/manikantaaddala217-hub/fin-backend/shared/redis"
	"github.com/manikantaaddala217-hub/fin-backend/shared/server"
	usercmd "github.com/manikantaaddala217-hub/fin-backend/user-service/internal/command"
	"github.com/manikantaaddala217-hub/fin-backend/user-service/internal/handler"
	userqry "github.com/manikantaaddala217-hub/fin-backend/user-service/internal/query"
	"github.com/manikantaaddala217-hub/fin-backend/user-service/internal/repository"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load("user-service", "8082")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Service, cfg.LogLevel, cfg.LogFormat)
	middleware.MustInitJWTSecret(cfg.JWTSecret)
	gin.SetMode(cfg.GinMode)

	// Database connection (write store)
	db := database.MustOpen(cfg.DatabaseDriver, cfg.DatabaseURL, &models.User{})
	defer database.Close(db)

	// Redis connection (read model store + event streaming)
	redis, err := redisClient.NewClient(redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)

	writeRepo := repository.NewUserWriteRepository(db)
	readRepo := repository.NewUserReadRepository(db, redis.Client)

	commandSvc := usercmd.NewUserCommandService(writeRepo, readRepo, publisher)
	querySvc := userqry.NewUserQueryService(readRepo)

	if created, err := commandSvc.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin user")
	} else if created {
		log.Info().Str("username", cfg.AdminUsername).Msg("bootstrap admin user created")
	}

	userHandler := handler.NewUserHandler(commandSvc, querySvc)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Service})
	})

	authed := router.Group("/", middleware.AuthMiddleware())
	{
		authed.GET("/userById", userHandler.GetUser)
	}
	admin := router.Group("/", middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/new-user", userHandler.CreateUser)
		admin.GET("/all-users", userHandler.ListUsers)
		admin.POST("/update-user", userHandler.UpdateUser)
		admin.DELETE("/delete-user", userHandler.DeleteUser)
		admin.POST("/add-area", userHandler.AddArea)
	}

	if err := server.Run(context.Background(), cfg.Service, cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
