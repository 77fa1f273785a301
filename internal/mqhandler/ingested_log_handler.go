package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mailtriage/internal/mq"
	"mailtriage/pkg/metrics"
	pkgmq "mailtriage/pkg/mq"
	"mailtriage/pkg/util"
)

const maxRetries = 5

// NotificationLogStore is the slice of the repository this package needs.
type NotificationLogStore interface {
	Insert(ctx context.Context, emailID int, eventType, detail string) error
}

// EmailIngestedLogHandler records an audit entry for every classified
// email that lands in the mailbox.
type EmailIngestedLogHandler struct {
	repo         NotificationLogStore
	deduper      *util.Deduper
	retryCounter *util.RetryCounter
	dlqPublisher *pkgmq.Publisher
	logger       *zap.Logger
}

func NewEmailIngestedLogHandler(
	repo NotificationLogStore,
	deduper *util.Deduper,
	retryCounter *util.RetryCounter,
	dlqPublisher *pkgmq.Publisher,
	logger *zap.Logger,
) *EmailIngestedLogHandler {
	return &EmailIngestedLogHandler{
		repo:         repo,
		deduper:      deduper,
		retryCounter: retryCounter,
		dlqPublisher: dlqPublisher,
		logger:       logger,
	}
}

func (h *EmailIngestedLogHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.EventEmailIngested, "email.ingested.log.q", time.Since(start))
	}()

	var p mq.EmailIngestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// JSON decode 错误 - 不可重试，发送到 DLQ
		h.logger.Error("Invalid EmailIngestedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		h.sendToDLQ(raw, err)
		return nil
	}

	// Redis 去重（避免并发重复消费）
	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, "ingested_log", p.EmailID) {
		h.logger.Info("Duplicated event, skip", zap.Int("email_id", p.EmailID))
		return nil
	}

	retryKey := util.FormatRetryKey("ingested_log", p.EmailID)
	var retryCount int64
	if h.retryCounter != nil {
		retryCount, _ = h.retryCounter.IncrementAndGet(ctx, retryKey)
	}

	detail := fmt.Sprintf("Email %d from %s classified as %s priority, %s sentiment",
		p.EmailID, p.Sender, p.Priority, p.Sentiment)

	if err := h.repo.Insert(ctx, p.EmailID, mq.EventEmailIngested, detail); err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Error("Failed to insert notification log",
			zap.Int("email_id", p.EmailID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Int64("retry", retryCount),
			zap.Error(err),
		)

		if retryCount > maxRetries {
			h.logger.Warn("Max retries exceeded, sending to DLQ", zap.Int("email_id", p.EmailID))
			h.sendToDLQ(raw, err)
			if h.retryCounter != nil {
				h.retryCounter.Reset(ctx, retryKey)
			}
			return nil // ack
		}
		if !isRetryable {
			h.sendToDLQ(raw, err)
			return nil // ack
		}
		return err // nack → 重试
	}

	if h.retryCounter != nil {
		h.retryCounter.Reset(ctx, retryKey)
	}

	h.logger.Info("Notification log created",
		zap.Int("email_id", p.EmailID),
		zap.String("priority", p.Priority),
	)
	return nil
}

func (h *EmailIngestedLogHandler) sendToDLQ(raw json.RawMessage, cause error) {
	if h.dlqPublisher == nil {
		return
	}
	if err := h.dlqPublisher.PublishToDLQ(mq.EventEmailIngested, raw, cause.Error()); err != nil {
		h.logger.Error("Failed to publish to DLQ", zap.Error(err))
	}
}
