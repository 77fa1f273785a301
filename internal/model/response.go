package model

import "time"

// Response holds the AI-generated and user-edited reply for an email.
// is_sent mirrors the wire contract: 0 = not sent, 1 = sent.
type Response struct {
	ID                int
	EmailID           int
	GeneratedResponse string
	FinalResponse     string
	IsSent            int
	CreatedAt         time.Time
}
