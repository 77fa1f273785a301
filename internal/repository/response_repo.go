package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailtriage/internal/model"
)

type ResponseRepository struct {
	db *pgxpool.Pool
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// FindByEmailID returns the stored response for an email, or pgx.ErrNoRows.
func (r *ResponseRepository) FindByEmailID(ctx context.Context, emailID int) (*model.Response, error) {
	query := `
        SELECT id, email_id, generated_response, final_response, is_sent, created_at
        FROM responses
        WHERE email_id = $1
    `
	var resp model.Response
	err := r.db.QueryRow(ctx, query, emailID).Scan(
		&resp.ID,
		&resp.EmailID,
		&resp.GeneratedResponse,
		&resp.FinalResponse,
		&resp.IsSent,
		&resp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpsertGenerated stores a freshly generated response, replacing any
// previous draft for the email.
func (r *ResponseRepository) UpsertGenerated(ctx context.Context, emailID int, text string) error {
	query := `
        INSERT INTO responses (email_id, generated_response, final_response, is_sent, created_at)
        VALUES ($1, $2, $2, 0, NOW())
        ON CONFLICT (email_id)
        DO UPDATE SET generated_response = EXCLUDED.generated_response,
                      final_response    = EXCLUDED.final_response,
                      is_sent           = 0
    `
	_, err := r.db.Exec(ctx, query, emailID, text)
	return err
}

// SaveDraft stores edited draft text without marking it sent.
func (r *ResponseRepository) SaveDraft(ctx context.Context, emailID int, text string) error {
	query := `
        INSERT INTO responses (email_id, generated_response, final_response, is_sent, created_at)
        VALUES ($1, $2, $2, 0, NOW())
        ON CONFLICT (email_id)
        DO UPDATE SET final_response = EXCLUDED.final_response
    `
	_, err := r.db.Exec(ctx, query, emailID, text)
	return err
}

// SetFinal updates the final text and sent flag for an existing response.
// Returns the number of rows updated; zero means no response exists yet.
func (r *ResponseRepository) SetFinal(ctx context.Context, emailID int, text string, isSent int) (int64, error) {
	query := `
        UPDATE responses
        SET final_response = $1, is_sent = $2
        WHERE email_id = $3
    `
	tag, err := r.db.Exec(ctx, query, text, isSent, emailID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
