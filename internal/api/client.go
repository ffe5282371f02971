// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/knowme-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL of the retrieval service (default: http://localhost:8000).
	BaseURL string

	// Timeout per request. Zero means no client-side limit; callers can
	// still bound a call through its context.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero disables it.
	RequestsPerSecond float64

	// MaxUploadBytes rejects larger uploads before sending. Zero disables
	// the check.
	MaxUploadBytes int64

	// UserID is sent as X-User-ID when set.
	UserID string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// DefaultBaseURL is where the backend listens when started locally.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// DefaultConfig returns the default client configuration.
func DefaultConfig() ClientConfig {
	return ClientConfig{BaseURL: DefaultBaseURL}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client wraps the five backend operations. Every failure is returned as
// an *Error whose Kind tells validation, transport and server problems
// apart. There are no retries.
//
// The Client is safe for concurrent use.
//
// Example:
//
//	client := api.NewClient()
//	res, err := client.SendChat(ctx, "What are my goals for this year?")
//	if api.IsTransport(err) {
//	    // backend unreachable
//	}
type Client struct {
	baseURL   string
	userID    string
	maxUpload int64
	http      *http.Client
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client, filling in defaults for zero values.
func NewClientWithConfig(cfg ClientConfig) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userID:    cfg.UserID,
		maxUpload: cfg.MaxUploadBytes,
		http:      hc,
		limiter:   limiter,
		log:       log.Named("api"),
	}
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// FetchWelcome asks the backend for its greeting. The result is advisory.
func (c *Client) FetchWelcome(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/", nil, "application/json")
	if err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return text, nil
	}
	return strings.TrimSpace(string(body)), nil
}

// SendChat submits a query. The text travels as the user_msg query
// parameter, percent-encoded.
func (c *Client) SendChat(ctx context.Context, text string) (*ChatResult, error) {
	q := url.Values{"user_msg": {text}}
	body, err := c.do(ctx, http.MethodPost, "/chat/?"+q.Encode(), nil, "application/json")
	if err != nil {
		return nil, err
	}

	var res ChatResult
	if err := decode(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListDocuments returns the documents the backend stores.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/pdfs/", nil, "")
	if err != nil {
		return nil, err
	}

	var res listResponse
	if err := decode(body, &res); err != nil {
		return nil, err
	}
	return res.PDFs, nil
}

// UploadDocument sends r as the multipart field "file" named fileName.
// Names without a .pdf extension fail with KindValidation and nothing is
// sent.
func (c *Client) UploadDocument(ctx context.Context, fileName string, r io.Reader) (*UploadResult, error) {
	if !model.IsPDFName(fileName) {
		return nil, validationError("Please select a PDF file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": filepath.Base(fileName),
	}))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Detail: "failed to build upload", Cause: err}
	}

	src := r
	if c.maxUpload > 0 {
		src = io.LimitReader(r, c.maxUpload+1)
	}
	n, err := io.Copy(part, src)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Detail: "could not read " + filepath.Base(fileName), Cause: err}
	}
	if c.maxUpload > 0 && n > c.maxUpload {
		return nil, validationError(fmt.Sprintf("%s is larger than the %d MB upload limit", filepath.Base(fileName), c.maxUpload>>20))
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Kind: KindUnknown, Detail: "failed to build upload", Cause: err}
	}

	body, err := c.do(ctx, http.MethodPost, "/upload_pdf/", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var res UploadResult
	if err := decode(body, &res); err != nil {
		return nil, err
	}
	if res.Filename == "" {
		res.Filename = filepath.Base(fileName)
	}
	return &res, nil
}

// UploadFile opens path and uploads it. The extension is checked before
// the file is opened.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	if !model.IsPDFName(path) {
		return nil, validationError("Please select a PDF file")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Detail: "could not open " + filepath.Base(path), Cause: err}
	}
	defer f.Close()
	return c.UploadDocument(ctx, filepath.Base(path), f)
}

// DeleteDocument removes a document and everything indexed from it. The
// name is escaped as a single path segment.
func (c *Client) DeleteDocument(ctx context.Context, name string) (*DeleteResult, error) {
	body, err := c.do(ctx, http.MethodDelete, "/pdfs/"+url.PathEscape(name), nil, "")
	if err != nil {
		return nil, err
	}

	var res DeleteResult
	if err := decode(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Detail: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := serverError(resp.StatusCode, data)
		c.log.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail))
		return nil, apiErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// The status line arrived but the body did not.
		return nil, transportError(err)
	}
	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Kind: KindServer, Detail: DetailBadResponse, Cause: err}
	}
	return nil
}
