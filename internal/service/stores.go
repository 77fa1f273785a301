package service

import (
	"context"

	"mailtriage/internal/model"
)

// Store interfaces keep services testable without a live database.
// The pgx repositories satisfy them.

type EmailStore interface {
	Create(ctx context.Context, e *model.Email) (int, error)
	ExistsBySenderSubject(ctx context.Context, sender, subject string) (bool, error)
	ListWithResponseFlag(ctx context.Context) ([]model.Email, error)
	FindByID(ctx context.Context, id int) (*model.Email, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	Aggregates(ctx context.Context) (*model.AnalyticsSummary, error)
	ClearAll(ctx context.Context) (int64, int64, error)
}

type ResponseStore interface {
	FindByEmailID(ctx context.Context, emailID int) (*model.Response, error)
	UpsertGenerated(ctx context.Context, emailID int, text string) error
	SaveDraft(ctx context.Context, emailID int, text string) error
	SetFinal(ctx context.Context, emailID int, text string, isSent int) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (int, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
}

// CacheInvalidator is the slice of AnalyticsService mutating services
// need: dropping the cached summary after the underlying counts change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Analyzer is the slice of AnalysisService the other services need.
type Analyzer interface {
	Analyze(ctx context.Context, sender, subject, body string) *model.Analysis
	GenerateReply(ctx context.Context, email *model.Email) (string, string)
	EngineName() string
}
