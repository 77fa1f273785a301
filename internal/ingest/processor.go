package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// supportKeywords filters the inbox down to support-related traffic.
var supportKeywords = []string{
	"support", "help", "query", "request", "urgent", "critical",
	"issue", "problem", "error", "question", "assistance",
	"billing", "account", "login", "access", "technical",
	"bug", "feature", "feedback", "complaint", "refund",
}

// urgentKeywords drive priority scoring.
var urgentKeywords = []string{
	"urgent", "immediately", "critical", "emergency", "asap",
	"cannot access", "system down", "not working", "broken",
	"servers down", "inaccessible", "immediate", "billing error",
	"deadline", "priority", "escalate", "frustrated", "angry",
	"losing money", "business critical", "production down",
}

var criticalPhrases = []string{"production down", "system failure", "data loss"}

var dateLayouts = []string{
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"02-01-2006",
}

// Record is one raw email row parsed from CSV, before AI analysis.
type Record struct {
	Sender   string
	Subject  string
	Body     string
	SentDate time.Time
}

// Processor parses CSV email exports and applies support filtering
// and urgency scoring.
type Processor struct {
	logger *zap.Logger
}

func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{logger: logger}
}

// ParseCSV reads rows with columns sender, subject, body, sent_date.
// Malformed rows are skipped, not fatal; the skipped count is returned.
func (p *Processor) ParseCSV(r io.Reader) ([]Record, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"sender", "subject", "body", "sent_date"} {
		if _, ok := idx[required]; !ok {
			return nil, 0, fmt.Errorf("csv missing required column %q", required)
		}
	}

	records := []Record{}
	skipped := 0
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			p.logger.Warn("skipping malformed csv row", zap.Int("row", rowNum), zap.Error(err))
			skipped++
			continue
		}

		maxIdx := idx["sent_date"]
		for _, i := range idx {
			if i > maxIdx {
				maxIdx = i
			}
		}
		if len(row) <= maxIdx {
			p.logger.Warn("skipping short csv row", zap.Int("row", rowNum))
			skipped++
			continue
		}

		rec := Record{
			Sender:   strings.TrimSpace(row[idx["sender"]]),
			Subject:  strings.TrimSpace(row[idx["subject"]]),
			Body:     strings.TrimSpace(row[idx["body"]]),
			SentDate: p.parseDate(row[idx["sent_date"]]),
		}
		if rec.Sender == "" || rec.Subject == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

// parseDate tries a few common export formats and falls back to now.
func (p *Processor) parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	p.logger.Warn("could not parse date, using current time", zap.String("value", s))
	return time.Now()
}

// IsSupportEmail reports whether the subject or body contains at least
// one support keyword.
func IsSupportEmail(subject, body string) bool {
	subjectLower := strings.ToLower(subject)
	bodyLower := strings.ToLower(body)
	for _, kw := range supportKeywords {
		if strings.Contains(subjectLower, kw) || strings.Contains(bodyLower, kw) {
			return true
		}
	}
	return false
}

// FilterSupport keeps only records that look like support traffic.
func (p *Processor) FilterSupport(records []Record) []Record {
	filtered := []Record{}
	for _, rec := range records {
		if IsSupportEmail(rec.Subject, rec.Body) {
			filtered = append(filtered, rec)
		}
	}
	p.logger.Info("filtered support emails",
		zap.Int("kept", len(filtered)),
		zap.Int("total", len(records)))
	return filtered
}

// DeterminePriority scores urgency from keyword hits. Used as the
// fallback when AI analysis does not yield a priority.
func DeterminePriority(subject, body string) string {
	text := strings.ToLower(subject + " " + body)

	urgentCount := 0
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			urgentCount++
		}
	}

	for _, phrase := range criticalPhrases {
		if strings.Contains(text, phrase) {
			return "Urgent"
		}
	}

	switch {
	case urgentCount >= 2:
		return "Urgent"
	case strings.Contains(text, "critical") || strings.Contains(text, "emergency") || strings.Contains(text, "cannot access"):
		return "Urgent"
	case urgentCount >= 1:
		return "High"
	default:
		return "Normal"
	}
}
