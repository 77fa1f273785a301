package mq

import "time"

const (
	EventEmailIngested   = "email.ingested"
	EventResponseSent    = "response.sent"
	EventDatabaseCleared = "database.cleared"
)

// 邮件入库事件的 payload
type EmailIngestedPayload struct {
	EmailID    int       `json:"email_id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Sentiment  string    `json:"sentiment"`
	Priority   string    `json:"priority"`
	IngestedAt time.Time `json:"ingested_at"`
}

// 回复发送事件的 payload
type ResponseSentPayload struct {
	EmailID         int       `json:"email_id"`
	SentImmediately bool      `json:"sent_immediately"`
	SentAt          time.Time `json:"sent_at"`
}

// 数据库清空事件的 payload
type DatabaseClearedPayload struct {
	DeletedEmails    int64     `json:"deleted_emails"`
	DeletedResponses int64     `json:"deleted_responses"`
	ClearedAt        time.Time `json:"cleared_at"`
}
