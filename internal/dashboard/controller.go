package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"mailtriage/internal/model"
)

var (
	ErrBusy        = errors.New("another action of this class is in progress")
	ErrNoSelection = errors.New("no email selected")
	ErrNoStaged    = errors.New("no file staged for upload")
	ErrStopped     = errors.New("controller is stopped")
)

// Outcome is the typed result of a dispatched action.
type Outcome struct {
	Message string
	Engine  string
	Err     error
}

func (o Outcome) OK() bool { return o.Err == nil }

func failure(err error) Outcome { return Outcome{Err: err} }

// Controller keeps local dashboard state consistent with the server
// under polling and user actions. The server is the sole source of
// truth: every mutating action refreshes both collections afterwards
// instead of patching locally.
//
// A poll tick racing a user action is resolved last-write-wins; both
// paths replace the collections wholesale with whatever snapshot their
// response carried. This is accepted, not fixed.
type Controller struct {
	client   APIClient
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	emails    []model.Email
	analytics *model.AnalyticsSummary

	selected     *model.Email
	draft        string
	selectionGen uint64

	stagedPath string

	bulkBusy     bool
	generateBusy bool
}

func NewController(client APIClient, interval time.Duration, logger *zap.Logger) *Controller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Controller{
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// Start issues an immediate refresh of both collections, then polls
// on the configured interval until Stop.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("controller already started")
	}
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	c.refreshAll(ctx)

	c.wg.Add(1)
	go c.pollLoop(ctx)

	return nil
}

// Stop cancels the poll loop. In-flight requests are not cancelled;
// their late responses are discarded by the stopped guard.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.stopped = true
		c.mu.Unlock()
		return
	}
	c.running = false
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshAll(ctx)
		}
	}
}

// refreshAll replaces both server-derived collections wholesale. A
// failed fetch keeps the previous snapshot and logs; no retry before
// the next tick, no user-facing error.
func (c *Controller) refreshAll(ctx context.Context) {
	emails, err := c.client.ListEmails(ctx)
	if err != nil {
		c.logger.Warn("email list refresh failed", zap.Error(err))
	} else {
		c.mu.Lock()
		if !c.stopped {
			c.emails = emails
		}
		c.mu.Unlock()
	}

	analytics, err := c.client.GetAnalytics(ctx)
	if err != nil {
		c.logger.Warn("analytics refresh failed", zap.Error(err))
	} else {
		c.mu.Lock()
		if !c.stopped {
			c.analytics = analytics
		}
		c.mu.Unlock()
	}
}

// Emails returns the cached email collection.
func (c *Controller) Emails() []model.Email {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Email, len(c.emails))
	copy(out, c.emails)
	return out
}

// Analytics returns the cached analytics snapshot, or nil before the
// first successful fetch.
func (c *Controller) Analytics() *model.AnalyticsSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.analytics == nil {
		return nil
	}
	cp := *c.analytics
	return &cp
}

// Selected returns the current selection snapshot, or nil.
func (c *Controller) Selected() *model.Email {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	cp := *c.selected
	return &cp
}

// Draft returns the editable draft text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Select sets the selection to the given record and fetches its stored
// response. If the selection changes again before the fetch resolves,
// the late result is discarded, so a slow response for A can never
// populate B's draft. A fetch failure resets the draft to empty.
func (c *Controller) Select(ctx context.Context, email model.Email) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	snapshot := email
	c.selected = &snapshot
	c.draft = ""
	c.selectionGen++
	gen := c.selectionGen
	c.mu.Unlock()

	payload, err := c.client.GetResponse(ctx, email.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || gen != c.selectionGen {
		return // 选择已变更，丢弃迟到的响应
	}
	if err != nil {
		c.logger.Warn("response fetch failed", zap.Int("email_id", email.ID), zap.Error(err))
		c.draft = ""
		return
	}
	if payload.FinalResponse != "" {
		c.draft = payload.FinalResponse
	} else {
		c.draft = payload.GeneratedResponse
	}
}

// EditDraft mutates the draft locally. No network effect.
func (c *Controller) EditDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.draft = text
}

// ClearSelection drops the selection and draft.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.draft = ""
	c.selectionGen++
}

// StageUpload records a CSV file path awaiting explicit upload.
func (c *Controller) StageUpload(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stagedPath = path
}

// StagedUpload returns the staged file path, if any.
func (c *Controller) StagedUpload() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stagedPath
}

func (c *Controller) acquireBulk() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bulkBusy || c.stopped {
		return false
	}
	c.bulkBusy = true
	return true
}

func (c *Controller) releaseBulk() {
	c.mu.Lock()
	c.bulkBusy = false
	c.mu.Unlock()
}

// BulkBusy reports whether a bulk action is in flight.
func (c *Controller) BulkBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bulkBusy
}

// GenerateBusy reports whether response generation is in flight.
func (c *Controller) GenerateBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generateBusy
}

// LoadSamples ingests the server's bundled sample CSV.
func (c *Controller) LoadSamples(ctx context.Context) Outcome {
	if !c.acquireBulk() {
		return failure(ErrBusy)
	}
	defer c.releaseBulk()

	ack, err := c.client.LoadSamples(ctx)
	if err != nil {
		return failure(err)
	}

	c.refreshAll(ctx)
	return Outcome{Message: ack.Message, Engine: ack.Engine}
}

// UploadCSV sends the staged file to the server. The staged file is
// cleared only on success so a failed upload can be retried.
func (c *Controller) UploadCSV(ctx context.Context) Outcome {
	c.mu.Lock()
	path := c.stagedPath
	c.mu.Unlock()
	if path == "" {
		return failure(ErrNoStaged)
	}

	if !c.acquireBulk() {
		return failure(ErrBusy)
	}
	defer c.releaseBulk()

	f, err := os.Open(path)
	if err != nil {
		return failure(fmt.Errorf("failed to open staged file: %w", err))
	}
	defer f.Close()

	ack, err := c.client.UploadCSV(ctx, filepath.Base(path), f)
	if err != nil {
		return failure(err)
	}

	c.mu.Lock()
	c.stagedPath = ""
	c.mu.Unlock()

	c.refreshAll(ctx)
	return Outcome{Message: ack.Message, Engine: ack.Engine}
}

// ClearAll wipes the server database. The selection is always nulled,
// regardless of prior state, so the UI never references deleted rows.
func (c *Controller) ClearAll(ctx context.Context) Outcome {
	if !c.acquireBulk() {
		return failure(ErrBusy)
	}
	defer c.releaseBulk()

	ack, err := c.client.ClearDatabase(ctx)
	if err != nil {
		return failure(err)
	}

	c.ClearSelection()
	c.refreshAll(ctx)
	return Outcome{Message: ack.Message}
}

// Resolve marks the given email resolved, then refreshes so the
// displayed status is server truth.
func (c *Controller) Resolve(ctx context.Context, emailID int) Outcome {
	if err := c.client.Resolve(ctx, emailID); err != nil {
		return failure(err)
	}
	c.refreshAll(ctx)
	return Outcome{Message: "Email marked as resolved"}
}

// GenerateResponse replaces the draft with server-generated text for
// the current selection. The selected record's has-response flag is
// set optimistically; the follow-up refresh restores server truth.
func (c *Controller) GenerateResponse(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return failure(ErrNoSelection)
	}
	if c.generateBusy || c.stopped {
		c.mu.Unlock()
		return failure(ErrBusy)
	}
	c.generateBusy = true
	emailID := c.selected.ID
	gen := c.selectionGen
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.generateBusy = false
		c.mu.Unlock()
	}()

	reply, err := c.client.GenerateResponse(ctx, emailID)
	if err != nil {
		// 失败时草稿保持原样
		return failure(err)
	}

	c.mu.Lock()
	if !c.stopped && gen == c.selectionGen && c.selected != nil {
		c.draft = reply.Response
		c.selected.HasResponse = true
	}
	c.mu.Unlock()

	c.refreshAll(ctx)
	return Outcome{Message: reply.Message, Engine: reply.Engine}
}

// Send submits the current draft as the final reply. The draft is
// retained either way so a failed send can be retried.
func (c *Controller) Send(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return failure(ErrNoSelection)
	}
	emailID := c.selected.ID
	text := c.draft
	c.mu.Unlock()

	if err := c.client.Send(ctx, emailID, text); err != nil {
		return failure(err)
	}

	c.refreshAll(ctx)
	return Outcome{Message: "Email sent successfully"}
}

// SaveDraft persists the current draft without sending. No local
// state changes beyond the confirmation.
func (c *Controller) SaveDraft(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return failure(ErrNoSelection)
	}
	emailID := c.selected.ID
	text := c.draft
	c.mu.Unlock()

	if err := c.client.SaveDraft(ctx, emailID, text); err != nil {
		return failure(err)
	}

	return Outcome{Message: "Draft saved successfully"}
}
