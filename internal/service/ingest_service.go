package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"mailtriage/internal/ingest"
	"mailtriage/internal/model"
	"mailtriage/internal/mq"
	"mailtriage/pkg/logger"
	"mailtriage/pkg/metrics"
)

// IngestResult summarizes one ingest run.
type IngestResult struct {
	Processed  int
	Skipped    int
	TotalInCSV int
	Engine     string
}

// IngestService loads support emails from CSV sources, runs AI
// analysis and stores classified records. Each stored email also
// produces an email.ingested event via the outbox.
type IngestService struct {
	emails     EmailStore
	analyzer   Analyzer
	processor  *ingest.Processor
	publisher  mq.EventPublisher
	analytics  CacheInvalidator
	samplePath string
	logger     *zap.Logger
}

func NewIngestService(emails EmailStore, analyzer Analyzer, processor *ingest.Processor, publisher mq.EventPublisher, analytics CacheInvalidator, samplePath string, log *zap.Logger) *IngestService {
	return &IngestService{
		emails:     emails,
		analyzer:   analyzer,
		processor:  processor,
		publisher:  publisher,
		analytics:  analytics,
		samplePath: samplePath,
		logger:     log,
	}
}

// LoadSamples ingests the configured sample CSV file.
func (s *IngestService) LoadSamples(ctx context.Context) (*IngestResult, error) {
	f, err := os.Open(s.samplePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample csv: %w", err)
	}
	defer f.Close()

	return s.ingestFrom(ctx, f)
}

// UploadCSV ingests an uploaded CSV stream.
func (s *IngestService) UploadCSV(ctx context.Context, r io.Reader) (*IngestResult, error) {
	return s.ingestFrom(ctx, r)
}

func (s *IngestService) ingestFrom(ctx context.Context, r io.Reader) (*IngestResult, error) {
	log := logger.WithTrace(ctx, s.logger)

	records, _, err := s.processor.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	log.Info("loaded raw emails from csv", zap.Int("count", len(records)))

	filtered := s.processor.FilterSupport(records)

	result := &IngestResult{
		TotalInCSV: len(records),
		Engine:     s.analyzer.EngineName(),
	}

	for _, rec := range filtered {
		exists, err := s.emails.ExistsBySenderSubject(ctx, rec.Sender, rec.Subject)
		if err != nil {
			return nil, err
		}
		if exists {
			log.Info("skipping duplicate email", zap.String("sender", rec.Sender))
			result.Skipped++
			continue
		}

		analysis := s.analyzer.Analyze(ctx, rec.Sender, rec.Subject, rec.Body)

		email := &model.Email{
			Sender:              rec.Sender,
			Subject:             rec.Subject,
			Body:                rec.Body,
			SentDate:            rec.SentDate,
			Sentiment:           analysis.Sentiment,
			SentimentConfidence: analysis.Confidence,
			Priority:            analysis.Priority,
			Status:              model.StatusPending,
		}

		id, err := s.emails.Create(ctx, email)
		if err != nil {
			log.Error("failed to store email", zap.Error(err), zap.String("sender", rec.Sender))
			metrics.IncrementEmailProcessed("error")
			continue
		}
		result.Processed++
		metrics.IncrementEmailProcessed("ok")

		payload := mq.EmailIngestedPayload{
			EmailID:    id,
			Sender:     rec.Sender,
			Subject:    rec.Subject,
			Sentiment:  analysis.Sentiment,
			Priority:   analysis.Priority,
			IngestedAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, mq.EventEmailIngested, payload); err != nil {
			log.Error("failed to record ingest event", zap.Error(err), zap.Int("email_id", id))
		}

		log.Info("processed email",
			zap.Int("email_id", id),
			zap.String("priority", analysis.Priority),
			zap.String("sentiment", analysis.Sentiment))
	}

	// 有新邮件入库时让统计缓存失效，保证 dashboard 拉到最新计数
	if s.analytics != nil && result.Processed > 0 {
		s.analytics.Invalidate(ctx)
	}

	return result, nil
}
