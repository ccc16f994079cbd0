package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendSender implements Sender using the Resend HTTP API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	senderName    string

	// BaseURL is overridable for tests; defaults to the public API.
	BaseURL string

	httpc *http.Client
}

// NewResendSender creates a new ResendSender.
func NewResendSender(apiKey, senderAddress, senderName string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend: API key is required")
	}
	if senderAddress == "" {
		return nil, fmt.Errorf("resend: sender address is required")
	}
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: senderAddress,
		senderName:    senderName,
		BaseURL:       defaultResendBaseURL,
		httpc:         &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

type resendPayload struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html,omitempty"`
	Text        string             `json:"text,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// Send sends an email via the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	from := s.senderAddress
	if s.senderName != "" {
		from = fmt.Sprintf("%s <%s>", s.senderName, s.senderAddress)
	}

	payload := resendPayload{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTMLBody,
		Text:    msg.TextBody,
	}
	for _, att := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename: att.Filename,
			Content:  base64.StdEncoding.EncodeToString(att.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("resend: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("resend: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend: send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
