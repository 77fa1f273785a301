package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mailtriage/internal/mq"
	"mailtriage/pkg/util"
)

// ResponseSentLogHandler writes an audit entry when a reply is sent.
type ResponseSentLogHandler struct {
	repo    NotificationLogStore
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewResponseSentLogHandler(repo NotificationLogStore, deduper *util.Deduper, logger *zap.Logger) *ResponseSentLogHandler {
	return &ResponseSentLogHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ResponseSentLogHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.ResponseSentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Invalid ResponseSentPayload", zap.Error(err), zap.String("raw", string(raw)))
		return nil // 不可重试，吃掉
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, "response_sent_log", p.EmailID) {
		h.logger.Info("Duplicated event, skip", zap.Int("email_id", p.EmailID))
		return nil
	}

	detail := fmt.Sprintf("Reply for email %d sent at %s", p.EmailID, p.SentAt.Format("2006-01-02 15:04:05"))

	if err := h.repo.Insert(ctx, p.EmailID, mq.EventResponseSent, detail); err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Error("Failed to insert notification log",
			zap.Int("email_id", p.EmailID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Error(err),
		)
		if isRetryable {
			return err
		}
		return nil
	}

	h.logger.Info("Sent-reply log created", zap.Int("email_id", p.EmailID))
	return nil
}
