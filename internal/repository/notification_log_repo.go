package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailtriage/internal/model"
)

type NotificationLogRepository struct {
	db *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Insert(ctx context.Context, emailID int, eventType, detail string) error {
	query := `
        INSERT INTO notification_log (email_id, event_type, detail, created_at)
        VALUES ($1, $2, $3, NOW())
    `
	_, err := r.db.Exec(ctx, query, emailID, eventType, detail)
	return err
}

func (r *NotificationLogRepository) ListRecent(ctx context.Context, limit int) ([]model.NotificationLog, error) {
	query := `
        SELECT id, email_id, event_type, detail, created_at
        FROM notification_log
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.NotificationLog{}
	for rows.Next() {
		var l model.NotificationLog
		if err := rows.Scan(&l.ID, &l.EmailID, &l.EventType, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
