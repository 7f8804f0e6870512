// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the client for the regulatory answering service.
//
// The service exposes a single POST /chat endpoint: the client sends the
// session id, the current question, and the full conversation history, and
// receives an answer with optional source citations.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/regchat-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps response bodies to prevent memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// chatPath is the answering endpoint, relative to the base URL.
	chatPath = "/chat"
)

// GenericFailureMessage is shown when the service fails without a usable
// error body.
const GenericFailureMessage = "Failed to get a response. Please try again."

// sharedHTTPClient pools connections across all requests. The Timeout is
// left unset; each request carries its own deadline via context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// HistoryEntry is one turn of conversation history on the wire.
type HistoryEntry struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message content
}

// AskRequest is the POST /chat request body. History carries every message
// of the conversation so far, the just-asked question included as its final
// entry; the service relies on that ordering.
type AskRequest struct {
	SessionID string         `json:"session_id"`
	Question  string         `json:"question"`
	History   []HistoryEntry `json:"history"`
}

// AskResponse is the POST /chat success body.
type AskResponse struct {
	Answer              string           `json:"answer"`
	HighlightedContexts []model.Citation `json:"highlighted_contexts,omitempty"`
}

// apiErrorResponse is the error body the service returns on failure.
type apiErrorResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// ERRORS
// =============================================================================

// APIError represents a failure response from the answering service.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("answering service error (HTTP %d): %s", e.Status, e.Message)
}

// UserMessage returns the text suitable for showing in the UI.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return GenericFailureMessage
}

// =============================================================================
// CLIENT
// =============================================================================

// Asker is the behavior the exchange layer needs from this package.
type Asker interface {
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)
}

// Client talks to the answering service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Ask submits a question and returns the service's answer. The context
// bounds the request; an additional timeout is applied on top so a hung
// service cannot stall the UI indefinitely. Failures are returned as
// *APIError when the service responded, or the transport error otherwise.
// The client never retries; the user decides whether to resend.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("session", req.SessionID).Dur("elapsed", time.Since(start)).Msg("ask timed out")
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseErrorResponse(resp.StatusCode, data)
	}

	var out AskResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Debug().
		Str("session", req.SessionID).
		Int("history_len", len(req.History)).
		Int("citations", len(out.HighlightedContexts)).
		Dur("elapsed", time.Since(start)).
		Msg("ask completed")

	return &out, nil
}

// readResponse reads the body with the size cap applied.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d byte limit", MaxResponseSize)
	}
	return data, nil
}

// parseErrorResponse extracts the service's error message, falling back to
// an empty message when the body is not the expected shape.
func parseErrorResponse(status int, data []byte) *APIError {
	var body apiErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return &APIError{Status: status, Message: body.Message}
	}
	return &APIError{Status: status}
}
