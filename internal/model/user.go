package model

import "time"

type User struct {
	ID           int
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
