// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package storehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/benzlock/fropbox/lib/store"
)

// copyRequest is the JSON body of POST /copy.
type copyRequest struct {
	FileName  string `json:"file_name"`
	OtherFile string `json:"other_file"`
	Offset    int64  `json:"offset"`
	Length    int64  `json:"length"`
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the server's base URL (e.g., "http://127.0.0.1:11000").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client implements store.Appender against a remote Fropbox server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ store.Appender = (*Client)(nil)

// NewClient creates a client for the server at config.BaseURL.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("storehttp: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("storehttp: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// AppendLiteral sends data as the raw body of POST /upload/{target}.
func (c *Client) AppendLiteral(ctx context.Context, target string, data []byte) error {
	if err := store.ValidateName(target); err != nil {
		return fmt.Errorf("append literal: %w", err)
	}

	requestURL := c.baseURL + "/upload/" + url.PathEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	c.logger.Debug("append literal", "target", target, "bytes", len(data))
	return c.do(req, "upload")
}

// AppendCopy sends the copy coordinates as JSON to POST /copy.
func (c *Client) AppendCopy(ctx context.Context, target, source string, offset, length int64) error {
	if err := store.ValidateName(target); err != nil {
		return fmt.Errorf("append copy: %w", err)
	}
	if err := store.ValidateName(source); err != nil {
		return fmt.Errorf("append copy: %w", err)
	}

	body, err := json.Marshal(copyRequest{
		FileName:  target,
		OtherFile: source,
		Offset:    offset,
		Length:    length,
	})
	if err != nil {
		return fmt.Errorf("encoding copy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/copy", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building copy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("append copy", "target", target, "source", source, "offset", offset, "length", length)
	return c.do(req, "copy")
}

// do executes the request and maps any non-2xx status to an error
// carrying the server's response body.
func (c *Client) do(req *http.Request, operation string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s request: server returned %s: %s",
			operation, resp.Status, strings.TrimSpace(string(body)))
	}
	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	return nil
}
