package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailtriage/internal/model"
)

type EmailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

// Create inserts a classified email and returns its id.
func (r *EmailRepository) Create(ctx context.Context, e *model.Email) (int, error) {
	query := `
        INSERT INTO emails (sender, subject, body, sent_date, sentiment, sentiment_confidence, priority, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		e.Sender,
		e.Subject,
		e.Body,
		e.SentDate,
		e.Sentiment,
		e.SentimentConfidence,
		e.Priority,
		e.Status,
	).Scan(&id)
	return id, err
}

// ExistsBySenderSubject reports whether an email with the same sender and
// subject is already stored. Used for ingest dedupe.
func (r *EmailRepository) ExistsBySenderSubject(ctx context.Context, sender, subject string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM emails WHERE sender = $1 AND subject = $2
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, sender, subject).Scan(&exists)
	return exists, err
}

// ListWithResponseFlag returns all emails ordered by priority rank then
// sent date, with has_response derived from the responses table.
func (r *EmailRepository) ListWithResponseFlag(ctx context.Context) ([]model.Email, error) {
	query := `
        SELECT
            e.id,
            e.sender,
            e.subject,
            e.body,
            e.sent_date,
            e.sentiment,
            e.sentiment_confidence,
            e.priority,
            e.status,
            (resp.id IS NOT NULL) AS has_response
        FROM emails e
        LEFT JOIN responses resp ON resp.email_id = e.id
        ORDER BY
            CASE e.priority
                WHEN 'Urgent' THEN 1
                WHEN 'High'   THEN 2
                WHEN 'Normal' THEN 3
                WHEN 'Low'    THEN 4
                ELSE 5
            END ASC,
            e.sent_date DESC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.Email{}
	for rows.Next() {
		var e model.Email
		err := rows.Scan(
			&e.ID,
			&e.Sender,
			&e.Subject,
			&e.Body,
			&e.SentDate,
			&e.Sentiment,
			&e.SentimentConfidence,
			&e.Priority,
			&e.Status,
			&e.HasResponse,
		)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// FindByID returns an email by id.
func (r *EmailRepository) FindByID(ctx context.Context, id int) (*model.Email, error) {
	query := `
        SELECT id, sender, subject, body, sent_date, sentiment, sentiment_confidence, priority, status, created_at
        FROM emails
        WHERE id = $1
    `
	var e model.Email
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.Sender,
		&e.Subject,
		&e.Body,
		&e.SentDate,
		&e.Sentiment,
		&e.SentimentConfidence,
		&e.Priority,
		&e.Status,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateStatus sets email status (e.g. resolved).
func (r *EmailRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	query := `
        UPDATE emails
        SET status = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

// Aggregates computes the analytics counts and distributions in SQL.
// AIEngine is left empty; the service fills it in.
func (r *EmailRepository) Aggregates(ctx context.Context) (*model.AnalyticsSummary, error) {
	summary := &model.AnalyticsSummary{
		SentimentDistribution: map[string]int{},
		PriorityDistribution:  map[string]int{},
	}

	countsQuery := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = 'resolved'),
            COUNT(resp.id)
        FROM emails e
        LEFT JOIN responses resp ON resp.email_id = e.id
    `
	err := r.db.QueryRow(ctx, countsQuery).Scan(
		&summary.TotalEmails,
		&summary.ResolvedEmails,
		&summary.EmailsWithResponses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count emails: %w", err)
	}
	summary.PendingEmails = summary.TotalEmails - summary.ResolvedEmails
	summary.EmailsWithoutResponses = summary.TotalEmails - summary.EmailsWithResponses

	rows, err := r.db.Query(ctx, `SELECT sentiment, COUNT(*) FROM emails GROUP BY sentiment`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		summary.SentimentDistribution[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.Query(ctx, `SELECT priority, COUNT(*) FROM emails GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to query priority distribution: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var label string
		var count int
		if err := prows.Scan(&label, &count); err != nil {
			return nil, err
		}
		summary.PriorityDistribution[label] = count
	}

	return summary, prows.Err()
}

// ClearAll deletes every email and response. Returns deleted counts.
func (r *EmailRepository) ClearAll(ctx context.Context) (int64, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	respTag, err := tx.Exec(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete responses: %w", err)
	}

	emailTag, err := tx.Exec(ctx, `DELETE FROM emails`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete emails: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}

	return emailTag.RowsAffected(), respTag.RowsAffected(), nil
}
