package main

import (
	"context"

	"go.uber.org/zap"

	"mailtriage/config"
	"mailtriage/internal/api"
	"mailtriage/internal/ingest"
	"mailtriage/internal/llm"
	"mailtriage/internal/mq"
	"mailtriage/internal/repository"
	"mailtriage/internal/service"
	"mailtriage/pkg/db"
	"mailtriage/pkg/logger"
	pkgmq "mailtriage/pkg/mq"
	"mailtriage/pkg/outbox"
	redisclient "mailtriage/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis (analytics cache)
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// 4. Outbox publisher + dispatcher
	producer, err := pkgmq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer producer.Close()

	outboxRepo := outbox.NewRepository(dbConn)
	publisher := mq.NewOutboxPublisher(dbConn, outboxRepo)

	dispatcher := outbox.NewDispatcher(outboxRepo, producer, log)
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	go dispatcher.Start(dispatcherCtx)

	// 5. LLM provider
	provider, err := llm.NewProviderFromConfig(cfg.AI)
	if err != nil {
		log.Fatal("failed to init AI provider", zap.Error(err))
	}
	log.Info("AI provider ready", zap.String("provider", provider.Name()), zap.String("engine", provider.EngineName()))

	// 6. Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	emailRepo := repository.NewEmailRepository(dbConn)
	responseRepo := repository.NewResponseRepository(dbConn)

	// 7. Init services
	analyzer := service.NewAnalysisService(provider, log)
	processor := ingest.NewProcessor(log)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	analyticsService := service.NewAnalyticsService(emailRepo, rdb, provider.EngineName(), log)
	emailService := service.NewEmailService(emailRepo, analyticsService, publisher, log)
	ingestService := service.NewIngestService(emailRepo, analyzer, processor, publisher, analyticsService, cfg.Ingest.SampleCSVPath, log)
	responseService := service.NewResponseService(emailRepo, responseRepo, analyzer, publisher, analyticsService, log)

	// 8. Init handlers
	authHandler := api.NewAuthHandler(authService)
	emailHandler := api.NewEmailHandler(emailService, responseService)
	ingestHandler := api.NewIngestHandler(ingestService)
	responseHandler := api.NewResponseHandler(responseService)
	analyticsHandler := api.NewAnalyticsHandler(analyticsService)
	adminHandler := api.NewAdminHandler(outboxRepo)

	// 9. Init router
	router := api.NewRouter(authHandler, emailHandler, ingestHandler, responseHandler, analyticsHandler, adminHandler, cfg.JWT.Secret, dbConn, producer)

	// 10. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
