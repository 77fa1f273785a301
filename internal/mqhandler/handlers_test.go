package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/internal/mq"
)

type fakeLogStore struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (f *fakeLogStore) Insert(ctx context.Context, emailID int, eventType, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, eventType+": "+detail)
	return nil
}

func TestEmailIngestedLogHandler(t *testing.T) {
	store := &fakeLogStore{}
	h := NewEmailIngestedLogHandler(store, nil, nil, nil, zap.NewNop())

	payload, err := json.Marshal(mq.EmailIngestedPayload{
		EmailID:   3,
		Sender:    "a@b.c",
		Priority:  "Urgent",
		Sentiment: "Negative",
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), payload))
	require.Len(t, store.entries, 1)
	assert.Contains(t, store.entries[0], "email.ingested")
	assert.Contains(t, store.entries[0], "Urgent priority")
}

func TestEmailIngestedLogHandlerBadPayloadAcked(t *testing.T) {
	store := &fakeLogStore{}
	h := NewEmailIngestedLogHandler(store, nil, nil, nil, zap.NewNop())

	err := h.Handle(context.Background(), json.RawMessage(`{invalid`))
	assert.NoError(t, err)
	assert.Empty(t, store.entries)
}

func TestEmailIngestedLogHandlerRetryableError(t *testing.T) {
	store := &fakeLogStore{err: errors.New("connection refused")}
	h := NewEmailIngestedLogHandler(store, nil, nil, nil, zap.NewNop())

	payload, _ := json.Marshal(mq.EmailIngestedPayload{EmailID: 1})
	err := h.Handle(context.Background(), payload)
	assert.Error(t, err)
}

func TestEmailIngestedLogHandlerNonRetryableAcked(t *testing.T) {
	store := &fakeLogStore{err: errors.New("duplicate key value violates unique constraint")}
	h := NewEmailIngestedLogHandler(store, nil, nil, nil, zap.NewNop())

	payload, _ := json.Marshal(mq.EmailIngestedPayload{EmailID: 1})
	err := h.Handle(context.Background(), payload)
	assert.NoError(t, err)
}

func TestResponseSentLogHandler(t *testing.T) {
	store := &fakeLogStore{}
	h := NewResponseSentLogHandler(store, nil, zap.NewNop())

	payload, _ := json.Marshal(mq.ResponseSentPayload{
		EmailID:         7,
		SentImmediately: true,
		SentAt:          time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, h.Handle(context.Background(), payload))
	require.Len(t, store.entries, 1)
	assert.Contains(t, store.entries[0], "response.sent")
}

func TestDatabaseClearedLogHandler(t *testing.T) {
	store := &fakeLogStore{}
	h := NewDatabaseClearedLogHandler(store, zap.NewNop())

	payload, _ := json.Marshal(mq.DatabaseClearedPayload{DeletedEmails: 10, DeletedResponses: 4})
	require.NoError(t, h.Handle(context.Background(), payload))
	require.Len(t, store.entries, 1)
	assert.Contains(t, store.entries[0], "10 emails")
}
