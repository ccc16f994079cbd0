package service

import (
	"errors"
	"strings"

	"github.com/JacqueDave/WebsiteJacques/internal/supabase"
)

// Common service errors
var (
	ErrMissingConfig = errors.New("lead database is not configured")
	ErrInvalidEmail  = errors.New("a valid email address is required")
	ErrNoRecipient   = errors.New("checkout session has no customer email")
)

// UserMessage maps a submission failure onto the message shown to the
// visitor. Every failure variant gets a distinct, actionable message; the
// fallback matches the alert the site has always shown.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrMissingConfig) {
		return "Signups aren't configured yet. Please try again later."
	}
	if errors.Is(err, ErrInvalidEmail) {
		return "Please enter a valid email address."
	}

	var timeoutErr *supabase.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "The request timed out. Please try again."
	}

	var otpErr *supabase.OTPError
	if errors.As(err, &otpErr) {
		if containsFold(otpErr.Error(), "signups not allowed") {
			return "Your information was saved, but sign-in codes are currently disabled."
		}
		return "Your information was saved, but we couldn't send a sign-in code."
	}

	var insertErr *supabase.InsertError
	if errors.As(err, &insertErr) {
		switch {
		case insertErr.Status == 0:
			return "We couldn't reach the signup service. Please check your connection and try again."
		case containsFold(insertErr.Body, "permission denied"):
			return "The signup service rejected the request. Please contact the site owner."
		case containsFold(insertErr.Body, "does not exist"):
			return "The signup service isn't fully set up yet. Please try again later."
		}
	}

	return "There was an error submitting your information. Please try again."
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
