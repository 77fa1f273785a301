package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"sender,subject,body,sent_date",
		"alice@example.com,Login issue,I cannot access my account,2024-01-15 10:30:00",
		"bob@example.com,Invoice,Please find attached,2024-01-16",
		",missing sender,body,2024-01-17",
	}, "\n")

	p := NewProcessor(zap.NewNop())
	records, skipped, err := p.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, records, 2)

	assert.Equal(t, "alice@example.com", records[0].Sender)
	assert.Equal(t, "Login issue", records[0].Subject)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), records[0].SentDate)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), records[1].SentDate)
}

func TestParseCSVMissingColumn(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	_, _, err := p.ParseCSV(strings.NewReader("sender,subject,body\na,b,c"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sent_date")
}

func TestParseDateFallback(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	before := time.Now()
	got := p.parseDate("not a date")
	assert.False(t, got.Before(before.Add(-time.Second)))
}

func TestIsSupportEmail(t *testing.T) {
	assert.True(t, IsSupportEmail("Need help with billing", ""))
	assert.True(t, IsSupportEmail("Hello", "there is a problem with my order"))
	assert.False(t, IsSupportEmail("Team lunch", "See you at noon"))
}

func TestFilterSupport(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	records := []Record{
		{Subject: "Support request", Body: "help"},
		{Subject: "Newsletter", Body: "weekly digest"},
	}
	filtered := p.FilterSupport(records)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Support request", filtered[0].Subject)
}

func TestDeterminePriority(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"critical phrase", "Outage", "production down since 9am", "Urgent"},
		{"two urgent hits", "Urgent", "system down, please escalate", "Urgent"},
		{"single hit", "Please reply asap", "thanks", "High"},
		{"calm", "Question about invoices", "when is the due date shown?", "Normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeterminePriority(tt.subject, tt.body))
		})
	}
}
