package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/JacqueDave/WebsiteJacques/internal/config"
	"github.com/JacqueDave/WebsiteJacques/internal/email"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
)

// PurchaseService fulfills completed checkouts by emailing the guide PDF.
type PurchaseService struct {
	sender email.Sender
	cfg    *config.Config
	log    *logger.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(sender email.Sender, cfg *config.Config, log *logger.Logger) *PurchaseService {
	return &PurchaseService{
		sender: sender,
		cfg:    cfg,
		log:    log.WithComponent("purchase_service"),
	}
}

// ParseCheckoutSession decodes the checkout session out of a webhook event
// payload.
func ParseCheckoutSession(raw json.RawMessage) (*stripe.CheckoutSession, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &sess, nil
}

// RecipientEmail picks the buyer address off a checkout session, preferring
// the collected customer details over the session-level email.
func RecipientEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	return sess.CustomerEmail
}

// FulfillCheckout sends the guide to the session's buyer. It returns
// ErrNoRecipient when the session carries no email, and never sends without
// the attachment: an unreadable PDF fails the whole fulfillment.
func (s *PurchaseService) FulfillCheckout(ctx context.Context, sess *stripe.CheckoutSession) error {
	to := RecipientEmail(sess)
	if to == "" {
		return ErrNoRecipient
	}
	if s.sender == nil {
		return fmt.Errorf("email sender is not configured")
	}

	pdfPath := filepath.Join(s.cfg.Site.AssetsDir, s.cfg.Email.Guide.Filename)
	content, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to read guide PDF: %w", err)
	}

	msg := email.Message{
		To:       to,
		Subject:  s.cfg.Email.Guide.Subject,
		HTMLBody: email.GuideEmailHTML(s.cfg.Email.SenderName),
		TextBody: email.GuideEmailText(s.cfg.Email.SenderName),
		Attachments: []email.Attachment{
			{
				Filename:    s.cfg.Email.Guide.Filename,
				ContentType: "application/pdf",
				Content:     content,
			},
		},
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send guide email: %w", err)
	}

	s.log.Info().Str("email", to).Str("session_id", sess.ID).Msg("guide delivered")
	return nil
}
