package service

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"mailtriage/internal/model"
)

type fakeEmailStore struct {
	mu     sync.Mutex
	nextID int
	emails map[int]*model.Email
}

func newFakeEmailStore() *fakeEmailStore {
	return &fakeEmailStore{nextID: 1, emails: map[int]*model.Email{}}
}

func (f *fakeEmailStore) Create(ctx context.Context, e *model.Email) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	stored := *e
	stored.ID = id
	f.emails[id] = &stored
	return id, nil
}

func (f *fakeEmailStore) ExistsBySenderSubject(ctx context.Context, sender, subject string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.emails {
		if e.Sender == sender && e.Subject == subject {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEmailStore) ListWithResponseFlag(ctx context.Context) ([]model.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Email{}
	for _, e := range f.emails {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := model.PriorityRank(out[i].Priority), model.PriorityRank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return out[i].SentDate.After(out[j].SentDate)
	})
	return out, nil
}

func (f *fakeEmailStore) FindByID(ctx context.Context, id int) (*model.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.emails[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmailStore) UpdateStatus(ctx context.Context, id int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.emails[id]
	if !ok {
		return pgx.ErrNoRows
	}
	e.Status = status
	return nil
}

func (f *fakeEmailStore) Aggregates(ctx context.Context) (*model.AnalyticsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &model.AnalyticsSummary{
		SentimentDistribution: map[string]int{},
		PriorityDistribution:  map[string]int{},
	}
	for _, e := range f.emails {
		s.TotalEmails++
		if e.Status == model.StatusResolved {
			s.ResolvedEmails++
		}
		s.SentimentDistribution[e.Sentiment]++
		s.PriorityDistribution[e.Priority]++
	}
	s.PendingEmails = s.TotalEmails - s.ResolvedEmails
	s.EmailsWithoutResponses = s.TotalEmails
	return s, nil
}

func (f *fakeEmailStore) ClearAll(ctx context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.emails))
	f.emails = map[int]*model.Email{}
	return n, 0, nil
}

type fakeResponseStore struct {
	mu        sync.Mutex
	responses map[int]*model.Response
}

func newFakeResponseStore() *fakeResponseStore {
	return &fakeResponseStore{responses: map[int]*model.Response{}}
}

func (f *fakeResponseStore) FindByEmailID(ctx context.Context, emailID int) (*model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.responses[emailID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResponseStore) UpsertGenerated(ctx context.Context, emailID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[emailID] = &model.Response{
		EmailID:           emailID,
		GeneratedResponse: text,
		FinalResponse:     text,
	}
	return nil
}

func (f *fakeResponseStore) SaveDraft(ctx context.Context, emailID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.responses[emailID]
	if !ok {
		f.responses[emailID] = &model.Response{
			EmailID:           emailID,
			GeneratedResponse: text,
			FinalResponse:     text,
		}
		return nil
	}
	r.FinalResponse = text
	return nil
}

func (f *fakeResponseStore) SetFinal(ctx context.Context, emailID int, text string, isSent int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.responses[emailID]
	if !ok {
		return 0, nil
	}
	r.FinalResponse = text
	r.IsSent = isSent
	return 1, nil
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[string]*model.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, email, passwordHash string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.users[email] = &model.User{ID: id, Email: email, PasswordHash: passwordHash}
	return id, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type publishedEvent struct {
	eventType string
	payload   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(ctx context.Context, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{eventType: eventType, payload: payload})
	return nil
}

func (f *fakePublisher) byType(eventType string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []publishedEvent{}
	for _, e := range f.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProvider struct {
	name    string
	replies []string
	calls   int
	err     error
}

func (p *fakeProvider) Name() string       { return p.name }
func (p *fakeProvider) EngineName() string { return "Test Engine" }

func (p *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", nil
	}
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return reply, nil
}
