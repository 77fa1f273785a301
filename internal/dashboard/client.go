package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"mailtriage/internal/model"
	"mailtriage/pkg/trace"
)

// ActionAck is the server's acknowledgment of a bulk action.
type ActionAck struct {
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Engine    string `json:"ai_engine"`
}

// DraftPayload is the stored response for one email.
type DraftPayload struct {
	GeneratedResponse string `json:"generated_response"`
	FinalResponse     string `json:"final_response"`
	IsSent            int    `json:"is_sent"`
	HasResponse       bool   `json:"has_response"`
}

// GeneratedReply is the result of on-demand response generation.
type GeneratedReply struct {
	Message   string `json:"message"`
	Response  string `json:"response"`
	Priority  string `json:"email_priority"`
	Sentiment string `json:"email_sentiment"`
	Engine    string `json:"ai_engine"`
}

// APIClient is the backend surface the controller depends on.
type APIClient interface {
	ListEmails(ctx context.Context) ([]model.Email, error)
	GetAnalytics(ctx context.Context) (*model.AnalyticsSummary, error)
	LoadSamples(ctx context.Context) (*ActionAck, error)
	UploadCSV(ctx context.Context, filename string, data io.Reader) (*ActionAck, error)
	ClearDatabase(ctx context.Context) (*ActionAck, error)
	GetResponse(ctx context.Context, emailID int) (*DraftPayload, error)
	Resolve(ctx context.Context, emailID int) error
	GenerateResponse(ctx context.Context, emailID int) (*GeneratedReply, error)
	Send(ctx context.Context, emailID int, text string) error
	SaveDraft(ctx context.Context, emailID int, text string) error
}

// Client is the HTTP implementation of APIClient.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetToken installs the bearer token used on /api requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) ListEmails(ctx context.Context) ([]model.Email, error) {
	var emails []model.Email
	if err := c.doJSON(ctx, http.MethodGet, "/api/emails", nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) GetAnalytics(ctx context.Context) (*model.AnalyticsSummary, error) {
	var summary model.AnalyticsSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) LoadSamples(ctx context.Context) (*ActionAck, error) {
	var ack ActionAck
	if err := c.doJSON(ctx, http.MethodPost, "/api/load-emails", nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) UploadCSV(ctx context.Context, filename string, data io.Reader) (*ActionAck, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload-csv", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var ack ActionAck
	if err := c.do(req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) ClearDatabase(ctx context.Context) (*ActionAck, error) {
	var ack ActionAck
	if err := c.doJSON(ctx, http.MethodPost, "/api/clear-database", nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) GetResponse(ctx context.Context, emailID int) (*DraftPayload, error) {
	var payload DraftPayload
	path := fmt.Sprintf("/api/emails/%d/response", emailID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Resolve(ctx context.Context, emailID int) error {
	path := fmt.Sprintf("/api/emails/%d/resolve", emailID)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) GenerateResponse(ctx context.Context, emailID int) (*GeneratedReply, error) {
	var reply GeneratedReply
	path := fmt.Sprintf("/api/emails/%d/generate-response", emailID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Send(ctx context.Context, emailID int, text string) error {
	path := fmt.Sprintf("/api/emails/%d/send", emailID)
	body := map[string]any{"response_text": text, "send_immediately": true}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) SaveDraft(ctx context.Context, emailID int, text string) error {
	path := fmt.Sprintf("/api/emails/%d/save-draft", emailID)
	body := map[string]any{"response_text": text, "send_immediately": false}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName(), traceID)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 服务端错误统一是 {"error": "..."}
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
