// Package supabase drives the hosted lead database over its REST surface.
// The provider's client library is deliberately not used; a raw HTTP POST is
// all the insert needs.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JacqueDave/WebsiteJacques/internal/config"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
	"github.com/JacqueDave/WebsiteJacques/internal/model"
)

const errBodyLimit = 4096

// Client talks to a Supabase project with the anonymous key.
type Client struct {
	baseURL string
	anonKey string
	table   string
	httpc   *http.Client
	log     *logger.Logger
}

// NewClient creates a Client from configuration. Per-call deadlines come from
// the caller's context, so the underlying http.Client carries no timeout of
// its own.
func NewClient(cfg config.SupabaseConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		table:   cfg.Table,
		httpc:   &http.Client{},
		log:     log.WithComponent("supabase"),
	}
}

// leadRecord is the wire shape of one inserted row. Name is null when blank.
type leadRecord struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// InsertLead inserts one row into the lead table. The request is bounded by
// ctx; on deadline the call fails with a TimeoutError and the connection is
// released. Non-2xx responses become an InsertError carrying status and body.
func (c *Client) InsertLead(ctx context.Context, lead model.Lead) error {
	record := leadRecord{Email: lead.Email}
	if lead.Name != "" {
		record.Name = &lead.Name
	}
	// PostgREST expects a bulk payload: a single-element array.
	body, err := json.Marshal([]leadRecord{record})
	if err != nil {
		return fmt.Errorf("failed to encode lead: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, c.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build insert request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyTransport(ctx, err, time.Since(start))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return &InsertError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}

// SendOTP asks the provider's auth API to email a one-time passcode to the
// address, creating the account if it doesn't exist yet.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	payload := map[string]interface{}{
		"email":       email,
		"create_user": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &OTPError{Cause: err}
	}

	url := c.baseURL + "/auth/v1/otp"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &OTPError{Cause: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &OTPError{Cause: classifyTransport(ctx, err, time.Since(start))}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return &OTPError{Cause: &InsertError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}}
	}
	return nil
}

// classifyTransport turns a transport-level error into one of the closed
// failure variants: a deadline becomes TimeoutError, everything else a
// status-0 InsertError.
func classifyTransport(ctx context.Context, err error, elapsed time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Bound: elapsed.Round(time.Millisecond)}
	}
	return &InsertError{Status: 0, Body: err.Error()}
}
