package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mailtriage/internal/mq"
	"mailtriage/pkg/util"
)

// DatabaseClearedLogHandler records destructive clears for audit.
type DatabaseClearedLogHandler struct {
	repo   NotificationLogStore
	logger *zap.Logger
}

func NewDatabaseClearedLogHandler(repo NotificationLogStore, logger *zap.Logger) *DatabaseClearedLogHandler {
	return &DatabaseClearedLogHandler{repo: repo, logger: logger}
}

func (h *DatabaseClearedLogHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.DatabaseClearedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Invalid DatabaseClearedPayload", zap.Error(err))
		return nil
	}

	detail := fmt.Sprintf("Database cleared: %d emails, %d responses deleted", p.DeletedEmails, p.DeletedResponses)

	if err := h.repo.Insert(ctx, 0, mq.EventDatabaseCleared, detail); err != nil {
		isRetryable, _ := util.IsRetryableError(err)
		h.logger.Error("Failed to insert clear log", zap.Error(err))
		if isRetryable {
			return err
		}
		return nil
	}

	h.logger.Info("Clear log created",
		zap.Int64("deleted_emails", p.DeletedEmails),
		zap.Int64("deleted_responses", p.DeletedResponses),
	)
	return nil
}
