package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	jsonErr := json.Unmarshal([]byte("{"), &struct{}{})

	tests := []struct {
		name      string
		err       error
		retryable bool
		errType   string
	}{
		{"nil", nil, false, ""},
		{"json syntax", jsonErr, false, "json_decode_error"},
		{"no rows", pgx.ErrNoRows, false, "email_not_found"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "emails_sender_subject_key"`), false, "duplicate_key"},
		{"db connection", errors.New("failed to establish connection to db"), true, "db_connection_error"},
		// context.DeadlineExceeded satisfies net.Error, so the network
		// branch classifies it first.
		{"deadline", context.DeadlineExceeded, true, "network_timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"llm 5xx", fmt.Errorf("llm provider returned error: 503"), true, "llm_provider_error"},
		{"unknown", errors.New("something odd"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, errType := IsRetryableError(tt.err)
			assert.Equal(t, tt.retryable, retryable)
			assert.Equal(t, tt.errType, errType)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(1, 5, false))
	assert.True(t, ShouldRetry(5, 5, true))
	assert.False(t, ShouldRetry(6, 5, true))
}
