package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultSubmitTimeout = 60 * time.Second
)

type Config struct {
	BaseURL   string
	AuthToken string
	// HTTPClient defaults to a plain http.Client. Deadlines come from the
	// per-call timeouts below, not from the client.
	HTTPClient    *http.Client
	Timeout       time.Duration
	SubmitTimeout time.Duration
}

// Client talks to the practice API. It is safe for concurrent use; the
// base URL and token can be swapped at any time.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	token   string

	http          *http.Client
	timeout       time.Duration
	submitTimeout time.Duration
}

func New(cfg Config) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         cfg.AuthToken,
		http:          cfg.HTTPClient,
		timeout:       cfg.Timeout,
		submitTimeout: cfg.SubmitTimeout,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.submitTimeout <= 0 {
		c.submitTimeout = DefaultSubmitTimeout
	}
	return c
}

func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var out envelope[AuthResult]
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out envelope[AuthResult]
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out envelope[User]
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GeneratePractice(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/practice/generate", req, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitAnswer uses the longer submit timeout; evaluation waits on the LLM.
func (c *Client) SubmitAnswer(ctx context.Context, practiceID, answer string) (*SubmitResponse, error) {
	body := map[string]string{"practiceId": practiceID, "answer": answer}
	var out SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/practice/submit", body, &out, c.submitTimeout); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, userID string, page, limit int) (*HistoryResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out HistoryResponse
	path := "/api/practice/history/" + url.PathEscape(userID) + "?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportHistory downloads the history workbook as raw XLSX bytes.
func (c *Client) ExportHistory(ctx context.Context, userID string) ([]byte, error) {
	var out []byte
	path := "/api/practice/history/" + url.PathEscape(userID) + "/export"
	if err := c.do(ctx, http.MethodGet, path, nil, &out, c.timeout); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) EnterAdjustmentMode(ctx context.Context, learningSubject string) (*AdjustmentMode, error) {
	body := map[string]string{"learningSubject": learningSubject}
	var out struct {
		AdjustmentMode AdjustmentMode `json:"adjustmentMode"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/practice/enter-adjustment-mode", body, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out.AdjustmentMode, nil
}

func (c *Client) Progress(ctx context.Context, userID, learningSubject string) (*UserProgress, error) {
	path := "/api/progress/" + url.PathEscape(userID)
	if learningSubject != "" {
		path += "?learningSubject=" + url.QueryEscape(learningSubject)
	}
	var out envelope[UserProgress]
	if err := c.do(ctx, http.MethodGet, path, nil, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, userID string, req PreferencesRequest) (*UserProgress, error) {
	var out envelope[UserProgress]
	if err := c.do(ctx, http.MethodPut, "/api/progress/"+url.PathEscape(userID)+"/preferences", req, &out, c.timeout); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) SendFeedback(ctx context.Context, req FeedbackRequest) error {
	return c.do(ctx, http.MethodPost, "/api/feedback", req, nil, c.timeout)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do performs one request. out may be nil, a *[]byte for raw bodies, or a
// JSON destination.
func (c *Client) do(ctx context.Context, method, path string, body, out any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.mu.RLock()
	baseURL, token := c.baseURL, c.token
	c.mu.RUnlock()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			if eb.Message != "" {
				apiErr.Message = eb.Message
			} else if eb.Error != "" {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = raw
		return nil
	default:
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}
