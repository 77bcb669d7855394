package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	loancmd "github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/command"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/handler"
	loanqry "github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/query"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/config"
	"github.com/manikantaaddala217-hub/fin-backend/shared/database"
	"github.com/manikantaaddala217-hub/fin-backend/shared/events"
	"github.com/manikantaaddala217-hub/fin-backend/shared/logger"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	redisClient "github.com/manikantaaddala217-hub/fin-backend/shared/redis"
	"github.com/manikantaaddala217-hub/fin-backend/shared/server"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load("loan-service", "8083")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Service, cfg.LogLevel, cfg.LogFormat)
	middleware.MustInitJWTSecret(cfg.JWTSecret)
	gin.SetMode(cfg.GinMode)

	// Database connection (write store)
	db := database.MustOpen(cfg.DatabaseDriver, cfg.DatabaseURL,
		&models.LoanAccount{}, &models.LedgerEntry{}, &models.CashFlowEntry{}, &models.BackupEntry{})
	defer database.Close(db)

	// Redis connection (summary cache + event streaming)
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

	writeRepo := repository.NewLoanWriteRepository(db)
	readRepo := repository.NewLoanReadRepository(db, redis.Client, cfg.SummaryCacheTTL)
	registerRepo := repository.NewRegisterRepository(db)

	commandSvc := loancmd.NewLoanCommandService(writeRepo, readRepo, publisher)
	querySvc := loanqry.NewLoanQueryService(readRepo)
	loanHandler := handler.NewLoanHandler(commandSvc, querySvc)
	registerHandler := handler.NewRegisterHandler(
		loancmd.NewRegisterCommandService(registerRepo),
		loanqry.NewRegisterQueryService(registerRepo),
	)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Service})
	})

	authed := router.Group("/", middleware.AuthMiddleware())
	{
		authed.POST("/loan/create", loanHandler.CreateLoan)
		authed.GET("/loan/all", loanHandler.ListLoans)
		authed.PUT("/loan/update", loanHandler.UpdateLoan)
		authed.DELETE("/loan/delete", loanHandler.DeleteLoan)
		authed.POST("/loan/renew", loanHandler.RenewLoan)
		authed.GET("/loan/summary", loanHandler.Summary)
		authed.POST("/loan/download", loanHandler.Download)

		authed.POST("/table/save", loanHandler.RecordCollection)
		authed.PUT("/table/update", loanHandler.AmendCollection)
		authed.GET("/table/loan", loanHandler.LoanLedger)

		authed.POST("/cf/save", registerHandler.SaveCashFlow)
		authed.GET("/cf/all", registerHandler.ListCashFlow)
		authed.DELETE("/cf/clear", middleware.RequireRole(models.RoleAdmin), registerHandler.ClearCashFlow)

		authed.POST("/bkp/save", registerHandler.SaveBackup)
		authed.DELETE("/bkp/delete", registerHandler.DeleteBackup)
		authed.GET("/bkp/all", registerHandler.ListBackups)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Every instance drops its cached summaries when any instance writes.
	host, _ := os.Hostname()
	subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
		Group:    "loan-service-group-" + host,
		Consumer: "loan-consumer-" + host,
		Stream:   events.LoanEventsStream,
		Handler:  commandSvc.HandleLoanEvent,
	})
	go func() {
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("subscriber stopped")
		}
	}()

	if err := server.Run(ctx, cfg.Service, cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
