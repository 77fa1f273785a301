package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailtriage/internal/model"
	"mailtriage/internal/mq"
	"mailtriage/pkg/logger"
)

var ErrEmailNotFound = errors.New("email not found")

// GenerateResult carries a freshly generated reply plus the email
// context the caller displays alongside it.
type GenerateResult struct {
	Response  string
	Priority  string
	Sentiment string
	Engine    string
}

// ResponseService manages AI reply drafts: generation, manual edits,
// simulated sending and resolution.
type ResponseService struct {
	emails    EmailStore
	responses ResponseStore
	analyzer  Analyzer
	publisher mq.EventPublisher
	analytics CacheInvalidator
	logger    *zap.Logger
}

func NewResponseService(emails EmailStore, responses ResponseStore, analyzer Analyzer, publisher mq.EventPublisher, analytics CacheInvalidator, log *zap.Logger) *ResponseService {
	return &ResponseService{
		emails:    emails,
		responses: responses,
		analyzer:  analyzer,
		publisher: publisher,
		analytics: analytics,
		logger:    log,
	}
}

// 解决数、无回复数等都依赖下面的写操作，成功后统一清缓存
func (s *ResponseService) invalidateAnalytics(ctx context.Context) {
	if s.analytics != nil {
		s.analytics.Invalidate(ctx)
	}
}

// GetResponse returns the draft for an email. A missing draft is not
// an error; the zero Response with HasResponse unset signals it.
func (s *ResponseService) GetResponse(ctx context.Context, emailID int) (*model.Response, bool, error) {
	resp, err := s.responses.FindByEmailID(ctx, emailID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Response{EmailID: emailID}, false, nil
		}
		return nil, false, err
	}
	return resp, true, nil
}

// Generate produces an AI reply for the email and stores it as the
// current draft.
func (s *ResponseService) Generate(ctx context.Context, emailID int) (*GenerateResult, error) {
	log := logger.WithTrace(ctx, s.logger)

	email, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	log.Info("generating reply",
		zap.Int("email_id", emailID),
		zap.String("priority", email.Priority),
		zap.String("sentiment", email.Sentiment))

	text, engine := s.analyzer.GenerateReply(ctx, email)

	if err := s.responses.UpsertGenerated(ctx, emailID, text); err != nil {
		return nil, err
	}
	s.invalidateAnalytics(ctx)

	return &GenerateResult{
		Response:  text,
		Priority:  email.Priority,
		Sentiment: email.Sentiment,
		Engine:    engine,
	}, nil
}

// Send stores the final text and, when immediate, marks the email
// resolved and emits a response.sent event. Sending is simulated;
// no SMTP delivery happens.
func (s *ResponseService) Send(ctx context.Context, emailID int, text string, sendImmediately bool) error {
	log := logger.WithTrace(ctx, s.logger)

	email, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmailNotFound
		}
		return err
	}

	isSent := 0
	if sendImmediately {
		isSent = 1
	}
	// 草稿不存在时静默跳过，与历史行为一致
	if _, err := s.responses.SetFinal(ctx, emailID, text, isSent); err != nil {
		return err
	}

	if sendImmediately {
		if err := s.emails.UpdateStatus(ctx, emailID, model.StatusResolved); err != nil {
			return err
		}
		log.Info("email simulated as sent", zap.Int("email_id", emailID), zap.String("recipient", email.Sender))

		payload := mq.ResponseSentPayload{
			EmailID:         emailID,
			SentImmediately: true,
			SentAt:          time.Now(),
		}
		if err := s.publisher.Publish(ctx, mq.EventResponseSent, payload); err != nil {
			log.Error("failed to record sent event", zap.Error(err), zap.Int("email_id", emailID))
		}
	}
	s.invalidateAnalytics(ctx)

	return nil
}

// SaveDraft persists manual edits without sending.
func (s *ResponseService) SaveDraft(ctx context.Context, emailID int, text string) error {
	if err := s.responses.SaveDraft(ctx, emailID, text); err != nil {
		return err
	}
	s.invalidateAnalytics(ctx)
	return nil
}

// Resolve marks an email resolved without sending anything.
func (s *ResponseService) Resolve(ctx context.Context, emailID int) error {
	_, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmailNotFound
		}
		return err
	}
	if err := s.emails.UpdateStatus(ctx, emailID, model.StatusResolved); err != nil {
		return err
	}
	s.invalidateAnalytics(ctx)
	return nil
}
