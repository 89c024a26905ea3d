//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package morph

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

// Frame delimiter of the analysis protocol. A request is the raw text
// followed by a NUL byte; the service answers with its analysis followed
// by a NUL byte (or by closing the connection).
const frameDelimiter = '\x00'

// Default client settings.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 200 * time.Millisecond
)

// Client talks to a long-lived morphological analysis service over TCP.
// The text is sent as an opaque payload and never interpreted by a shell.
type Client struct {
	addr       string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	dialer     net.Dialer
	logger     *slog.Logger
}

// ClientConfig contains the settings for a Client.
type ClientConfig struct {
	Address    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// NewClient creates a client for the service at cfg.Address.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("analyzer address is required")
	}

	c := &Client{
		addr:       cfg.Address,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Address returns the service address.
func (c *Client) Address() string { return c.addr }

// Lemmatize sends text to the service and returns its lemmas.
func (c *Client) Lemmatize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var output string
	err := retryWithBackoff(ctx, c.logger, func() error {
		var err error
		output, err = c.exchange(ctx, text)
		return err
	}, c.maxRetries, c.retryDelay)
	if err != nil {
		return "", err
	}

	lemmas := ParseAnalysis(output)
	if lemmas == "" {
		return "", ErrEmptyAnalysis
	}
	return lemmas, nil
}

// exchange performs one request/response round trip.
func (c *Client) exchange(ctx context.Context, text string) (string, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalyzerUnavailable, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalyzerUnavailable, err)
	}

	payload := make([]byte, 0, len(text)+1)
	payload = append(payload, text...)
	payload = append(payload, frameDelimiter)
	if _, err := conn.Write(payload); err != nil {
		return "", fmt.Errorf("%w: write: %v", ErrAnalyzerUnavailable, err)
	}

	resp, err := bufio.NewReader(conn).ReadString(frameDelimiter)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read: %v", ErrAnalyzerUnavailable, err)
	}

	return strings.TrimSuffix(resp, string(frameDelimiter)), nil
}
