package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/internal/dashboard"
	"mailtriage/internal/model"
)

type stubAPI struct {
	emails    []model.Email
	analytics model.AnalyticsSummary
	draft     dashboard.DraftPayload
	sent      []string
	saved     []string
}

func (s *stubAPI) ListEmails(ctx context.Context) ([]model.Email, error) { return s.emails, nil }
func (s *stubAPI) GetAnalytics(ctx context.Context) (*model.AnalyticsSummary, error) {
	cp := s.analytics
	return &cp, nil
}
func (s *stubAPI) LoadSamples(ctx context.Context) (*dashboard.ActionAck, error) {
	return &dashboard.ActionAck{Message: "loaded", Engine: "Gemini Pro"}, nil
}
func (s *stubAPI) UploadCSV(ctx context.Context, filename string, data io.Reader) (*dashboard.ActionAck, error) {
	return &dashboard.ActionAck{Message: "uploaded"}, nil
}
func (s *stubAPI) ClearDatabase(ctx context.Context) (*dashboard.ActionAck, error) {
	s.emails = nil
	return &dashboard.ActionAck{Message: "cleared"}, nil
}
func (s *stubAPI) GetResponse(ctx context.Context, emailID int) (*dashboard.DraftPayload, error) {
	cp := s.draft
	return &cp, nil
}
func (s *stubAPI) Resolve(ctx context.Context, emailID int) error { return nil }
func (s *stubAPI) GenerateResponse(ctx context.Context, emailID int) (*dashboard.GeneratedReply, error) {
	return &dashboard.GeneratedReply{Response: "generated", Engine: "Gemini Pro"}, nil
}
func (s *stubAPI) Send(ctx context.Context, emailID int, text string) error {
	s.sent = append(s.sent, text)
	return nil
}
func (s *stubAPI) SaveDraft(ctx context.Context, emailID int, text string) error {
	s.saved = append(s.saved, text)
	return nil
}

func newTestModel(api dashboard.APIClient) (Model, *dashboard.Controller) {
	c := dashboard.NewController(api, time.Hour, zap.NewNop())
	m := NewModel(c)
	m.width = 120
	m.height = 40
	return m, c
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSnapshotTickPullsState(t *testing.T) {
	api := &stubAPI{emails: []model.Email{{ID: 1, Subject: "help"}}}
	m, c := newTestModel(api)
	c.Select(context.Background(), api.emails[0])

	updated, _ := m.Update(snapshotTickMsg{Time: time.Now()})
	m = updated.(Model)
	// the controller has not refreshed yet, so the list is still empty
	assert.Empty(t, m.emails)

	outcome := c.Resolve(context.Background(), 1)
	require.NoError(t, outcome.Err)

	updated, _ = m.Update(snapshotTickMsg{Time: time.Now()})
	m = updated.(Model)
	assert.Len(t, m.emails, 1)
}

func TestNavigationStaysInBounds(t *testing.T) {
	api := &stubAPI{}
	m, c := newTestModel(api)
	c.Resolve(context.Background(), 0) // triggers refresh, list stays empty
	m.emails = []model.Email{{ID: 1}, {ID: 2}}

	updated, _ := m.Update(keyMsg("k"))
	m = updated.(Model)
	assert.Equal(t, 0, m.selectedIdx)

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(Model)
	assert.Equal(t, 1, m.selectedIdx)

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(Model)
	assert.Equal(t, 1, m.selectedIdx)
}

func TestEnterSelectsAndLoadsDraft(t *testing.T) {
	api := &stubAPI{
		emails: []model.Email{{ID: 7, Subject: "login broken"}},
		draft:  dashboard.DraftPayload{GeneratedResponse: "stored reply", HasResponse: true},
	}
	m, c := newTestModel(api)
	m.emails = api.emails

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, selectionDoneMsg{}, msg)

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.Equal(t, "stored reply", m.draftBuffer)
	require.NotNil(t, c.Selected())
	assert.Equal(t, 7, c.Selected().ID)
}

func TestEditorKeysAreLocalUntilDone(t *testing.T) {
	api := &stubAPI{emails: []model.Email{{ID: 1}}}
	m, c := newTestModel(api)
	m.emails = api.emails
	c.Select(context.Background(), api.emails[0])

	updated, _ := m.Update(keyMsg("e"))
	m = updated.(Model)
	require.True(t, m.editingDraft)

	updated, _ = m.Update(keyMsg("hi"))
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("there"))
	m = updated.(Model)
	assert.Equal(t, "hi there", m.draftBuffer)
	// nothing committed yet
	assert.Equal(t, "", c.Draft())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = updated.(Model)
	assert.Equal(t, "hi ther", m.draftBuffer)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.False(t, m.editingDraft)
	assert.Equal(t, "hi ther", c.Draft())
}

func TestSendDispatchesDraft(t *testing.T) {
	api := &stubAPI{emails: []model.Email{{ID: 1}}}
	m, c := newTestModel(api)
	m.emails = api.emails
	c.Select(context.Background(), api.emails[0])
	c.EditDraft("final answer")

	updated, cmd := m.Update(keyMsg("s"))
	m = updated.(Model)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Outcome.Err)
	require.Equal(t, []string{"final answer"}, api.sent)

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.True(t, m.statusIsTemp)
}

func TestClearResetsSelectionState(t *testing.T) {
	api := &stubAPI{emails: []model.Email{{ID: 1}, {ID: 2}}}
	m, c := newTestModel(api)
	m.emails = api.emails
	m.selectedIdx = 1
	c.Select(context.Background(), api.emails[1])

	updated, cmd := m.Update(keyMsg("x"))
	m = updated.(Model)
	require.Nil(t, cmd)
	require.True(t, m.confirmingClear)

	updated, cmd = m.Update(keyMsg("x"))
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, 0, m.selectedIdx)

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Outcome.Err)

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.Nil(t, c.Selected())
	assert.Empty(t, m.emails)
}

func TestClearConfirmationCancels(t *testing.T) {
	api := &stubAPI{emails: []model.Email{{ID: 1}}}
	m, _ := newTestModel(api)
	m.emails = api.emails

	updated, _ := m.Update(keyMsg("x"))
	m = updated.(Model)
	require.True(t, m.confirmingClear)

	updated, cmd := m.Update(keyMsg("j"))
	m = updated.(Model)
	assert.False(t, m.confirmingClear)
	assert.Nil(t, cmd)
	assert.Len(t, m.emails, 1)
}

func TestActionErrorShowsInStatusBar(t *testing.T) {
	api := &stubAPI{}
	m, _ := newTestModel(api)

	updated, _ := m.Update(actionDoneMsg{
		Action:  "generate",
		Outcome: dashboard.Outcome{Err: errors.New("llm unavailable")},
	})
	m = updated.(Model)

	assert.True(t, m.statusIsError)
	assert.Contains(t, m.statusBarText, "generate failed")
}

func TestViewRendersWithoutPanic(t *testing.T) {
	api := &stubAPI{emails: []model.Email{{ID: 1, Subject: "refund", Sender: "a@b.c", Priority: model.PriorityUrgent}}}
	m, c := newTestModel(api)
	m.emails = api.emails
	m.analytics = &model.AnalyticsSummary{
		TotalEmails:           1,
		SentimentDistribution: map[string]int{"Negative": 1},
		PriorityDistribution:  map[string]int{"Urgent": 1},
		AIEngine:              "Gemini Pro",
	}

	out := m.View()
	assert.Contains(t, out, "Inbox")

	c.Select(context.Background(), api.emails[0])
	out = m.View()
	assert.Contains(t, out, "refund")

	m.currentView = viewAnalytics
	out = m.View()
	assert.Contains(t, out, "Analytics")
}
