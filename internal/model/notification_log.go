package model

import "time"

// NotificationLog records one consumed domain event, written by the worker.
type NotificationLog struct {
	ID        int
	EmailID   int
	EventType string
	Detail    string
	CreatedAt time.Time
}
