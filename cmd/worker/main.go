package main

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mailtriage/config"
	"mailtriage/internal/mq"
	"mailtriage/internal/mqhandler"
	"mailtriage/internal/repository"
	"mailtriage/pkg/db"
	"mailtriage/pkg/logger"
	pkgmq "mailtriage/pkg/mq"
	redisclient "mailtriage/pkg/redis"
	"mailtriage/pkg/util"
)

func main() {
	// Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting worker service...")

	// Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduperWithLogger(rdb, time.Hour, log)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	log.Info("Database connection established")

	// DLQ declarations (publisher for dead-lettered payloads)
	dlqConn, err := pkgmq.NewConnection(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to connect to MQ", zap.Error(err))
	}
	defer dlqConn.Close()
	dlqCh, err := dlqConn.Channel()
	if err != nil {
		log.Fatal("failed to open MQ channel", zap.Error(err))
	}
	if err := pkgmq.DeclareDLQExchange(dlqCh); err != nil {
		log.Fatal("failed to declare DLQ exchange", zap.Error(err))
	}
	if _, err := pkgmq.DeclareDLQQueue(dlqCh, mq.EventEmailIngested); err != nil {
		log.Fatal("failed to declare DLQ queue", zap.Error(err))
	}
	dlqCh.Close()

	dlqPublisher, err := pkgmq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init DLQ publisher", zap.Error(err))
	}
	defer dlqPublisher.Close()

	// Init repositories
	notiLogRepo := repository.NewNotificationLogRepository(dbConn)

	// Init handlers + event router
	ingestedHandler := mqhandler.NewEmailIngestedLogHandler(notiLogRepo, deduper, retryCounter, dlqPublisher, log)
	sentHandler := mqhandler.NewResponseSentLogHandler(notiLogRepo, deduper, log)
	clearedHandler := mqhandler.NewDatabaseClearedLogHandler(notiLogRepo, log)

	router := mq.NewRouter(log)
	router.Register(mq.EventEmailIngested, ingestedHandler.Handle)
	router.Register(mq.EventResponseSent, sentHandler.Handle)
	router.Register(mq.EventDatabaseCleared, clearedHandler.Handle)

	// 消费者收到的是 Event 信封，解包后交给 router
	dispatch := func(ctx context.Context, raw json.RawMessage) error {
		var evt mq.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Error("invalid event envelope, dropping", zap.String("raw", string(raw)), zap.Error(err))
			return nil
		}
		return router.Handle(ctx, evt)
	}

	queues := []struct {
		name       string
		routingKey string
	}{
		{"email.ingested.log.q", mq.EventEmailIngested},
		{"response.sent.log.q", mq.EventResponseSent},
		{"database.cleared.log.q", mq.EventDatabaseCleared},
	}

	for _, q := range queues {
		log.Info("Initializing consumer", zap.String("queue", q.name), zap.String("routing_key", q.routingKey))
		consumer, err := pkgmq.NewConsumer(cfg.MQ.URL, q.name, q.routingKey, log)
		if err != nil {
			log.Fatal("failed to init consumer", zap.String("queue", q.name), zap.Error(err))
		}
		consumer.SetHandler(dispatch)
		go func(c *pkgmq.Consumer, queue string) {
			if err := c.StartConsuming(); err != nil {
				log.Fatal("consumer failed", zap.String("queue", queue), zap.Error(err))
			}
		}(consumer, q.name)
		defer consumer.Close()
	}

	log.Info("All consumers started, worker is ready to process messages")

	// Keep worker running
	select {}
}
