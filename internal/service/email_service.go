package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mailtriage/internal/model"
	"mailtriage/internal/mq"
	"mailtriage/pkg/logger"
)

// EmailService covers listing and the destructive clear operation.
type EmailService struct {
	emails    EmailStore
	analytics CacheInvalidator
	publisher mq.EventPublisher
	logger    *zap.Logger
}

func NewEmailService(emails EmailStore, analytics CacheInvalidator, publisher mq.EventPublisher, log *zap.Logger) *EmailService {
	return &EmailService{
		emails:    emails,
		analytics: analytics,
		publisher: publisher,
		logger:    log,
	}
}

// List returns all emails in triage order: priority rank first, then
// newest sent date.
func (s *EmailService) List(ctx context.Context) ([]model.Email, error) {
	return s.emails.ListWithResponseFlag(ctx)
}

// ClearAll wipes every email and response, invalidates analytics and
// emits a database.cleared event.
func (s *EmailService) ClearAll(ctx context.Context) (int64, int64, error) {
	log := logger.WithTrace(ctx, s.logger)

	deletedEmails, deletedResponses, err := s.emails.ClearAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	if s.analytics != nil {
		s.analytics.Invalidate(ctx)
	}

	payload := mq.DatabaseClearedPayload{
		DeletedEmails:    deletedEmails,
		DeletedResponses: deletedResponses,
		ClearedAt:        time.Now(),
	}
	if err := s.publisher.Publish(ctx, mq.EventDatabaseCleared, payload); err != nil {
		log.Error("failed to record clear event", zap.Error(err))
	}

	log.Info("database cleared",
		zap.Int64("deleted_emails", deletedEmails),
		zap.Int64("deleted_responses", deletedResponses))

	return deletedEmails, deletedResponses, nil
}
