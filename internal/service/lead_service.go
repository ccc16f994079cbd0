package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JacqueDave/WebsiteJacques/internal/config"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
	"github.com/JacqueDave/WebsiteJacques/internal/model"
	"github.com/JacqueDave/WebsiteJacques/internal/repository"
)

// otpCooldown suppresses repeated passcode dispatches to the same address.
const otpCooldown = time.Minute

// LeadStore is the hosted lead database surface the service depends on.
type LeadStore interface {
	InsertLead(ctx context.Context, lead model.Lead) error
	SendOTP(ctx context.Context, email string) error
}

// SessionMarkers holds short-lived per-session state (rescue dedupe, OTP
// cooldown). The Redis wrapper satisfies it.
type SessionMarkers interface {
	Exists(ctx context.Context, keys ...string) (int64, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// LeadService handles lead capture business logic
type LeadService struct {
	store   LeadStore
	archive *repository.LeadRepository
	markers SessionMarkers
	cfg     *config.Config
	log     *logger.Logger
}

// NewLeadService creates a new LeadService. store is nil when the hosted
// database is unconfigured; archive and markers are nil when their backing
// stores are disabled.
func NewLeadService(
	store LeadStore,
	archive *repository.LeadRepository,
	markers SessionMarkers,
	cfg *config.Config,
	log *logger.Logger,
) *LeadService {
	return &LeadService{
		store:   store,
		archive: archive,
		markers: markers,
		cfg:     cfg,
		log:     log.WithComponent("lead_service"),
	}
}

// SubmitRequest is one lead form submission.
type SubmitRequest struct {
	Name       string
	Email      string
	RequestOTP bool
	Redirect   string
}

// SubmitResult is what the caller shows the visitor. Redirect is always set:
// a failed insert is classified and reported in Warning, but the visitor is
// sent on regardless.
type SubmitResult struct {
	Redirect  string
	LeadSaved bool
	OTPSent   bool
	Warning   string
}

// Submit normalizes, persists, and optionally requests a passcode for a lead.
// Only an empty normalized email is a hard failure; every downstream failure
// is swallowed into the result so the redirect still happens.
func (s *LeadService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	lead := model.NewLead(req.Name, req.Email)
	if !lead.Valid() {
		return nil, ErrInvalidEmail
	}

	result := &SubmitResult{Redirect: s.resolveRedirect(req.Redirect)}

	if s.store == nil {
		s.log.LeadEvent("submit_skipped", lead.Email, ErrMissingConfig)
		result.Warning = UserMessage(ErrMissingConfig)
		return result, nil
	}

	if err := s.insert(ctx, lead); err != nil {
		s.log.LeadEvent("submit_failed", lead.Email, err)
		result.Warning = UserMessage(err)
		return result, nil
	}
	result.LeadSaved = true
	s.log.LeadEvent("submitted", lead.Email, nil)

	s.mirrorToArchive(ctx, lead)

	if req.RequestOTP {
		if err := s.dispatchOTP(ctx, lead.Email); err != nil {
			s.log.LeadEvent("otp_failed", lead.Email, err)
			result.Warning = UserMessage(err)
		} else {
			result.OTPSent = true
		}
	}

	return result, nil
}

// RescueRequest is a lead recovered from a native form post's query string.
type RescueRequest struct {
	// Session identifies the browser via the lead_session cookie.
	Session string
	// Path is the page the native post landed on.
	Path  string
	Name  string
	Email string
	// RequestOTP carries the form's passcode flag through the query string.
	RequestOTP bool
}

// RescueResult reports what the replay did. Warning carries an OTP dispatch
// failure; the insert itself succeeded when err is nil.
type RescueResult struct {
	// Inserted is false when the session marker already covered this exact
	// submission (back-navigation replay).
	Inserted bool
	OTPSent  bool
	Warning  string
}

// Rescue replays the insert, and optionally the passcode dispatch, for a
// query-string lead. A suppressed replay skips both.
func (s *LeadService) Rescue(ctx context.Context, req RescueRequest) (*RescueResult, error) {
	lead := model.NewLead(req.Name, req.Email)
	if !lead.Valid() {
		return nil, ErrInvalidEmail
	}
	if s.store == nil {
		return nil, ErrMissingConfig
	}

	key := rescueKey(req.Session, req.Path, lead)
	if s.markers != nil {
		if n, err := s.markers.Exists(ctx, key); err == nil && n > 0 {
			s.log.LeadEvent("rescue_replay_suppressed", lead.Email, nil)
			return &RescueResult{}, nil
		}
	}

	if err := s.insert(ctx, lead); err != nil {
		s.log.LeadEvent("rescue_failed", lead.Email, err)
		return nil, err
	}
	s.log.LeadEvent("rescued", lead.Email, nil)

	result := &RescueResult{Inserted: true}

	s.mirrorToArchive(ctx, lead)

	if s.markers != nil {
		if err := s.markers.SetWithTTL(ctx, key, "1", s.cfg.Lead.RescueTTL); err != nil {
			s.log.Warn().Err(err).Msg("failed to set rescue marker")
		}
	}

	if req.RequestOTP {
		if err := s.dispatchOTP(ctx, lead.Email); err != nil {
			s.log.LeadEvent("otp_failed", lead.Email, err)
			result.Warning = UserMessage(err)
		} else {
			result.OTPSent = true
		}
	}

	return result, nil
}

// insert runs the hosted-table insert under the configured deadline. The
// losing call is cancelled with the context.
func (s *LeadService) insert(ctx context.Context, lead model.Lead) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Lead.InsertTimeout)
	defer cancel()
	return s.store.InsertLead(ctx, lead)
}

// dispatchOTP asks the hosted auth API to email a passcode, honoring a
// per-address cooldown so form double-submits don't spam the inbox.
func (s *LeadService) dispatchOTP(ctx context.Context, email string) error {
	cooldownKey := "otp:cooldown:" + email
	if s.markers != nil {
		if n, err := s.markers.Exists(ctx, cooldownKey); err == nil && n > 0 {
			s.log.LeadEvent("otp_cooldown", email, nil)
			return nil
		}
	}

	otpCtx, cancel := context.WithTimeout(ctx, s.cfg.Lead.OTPTimeout)
	defer cancel()
	if err := s.store.SendOTP(otpCtx, email); err != nil {
		return err
	}

	if s.markers != nil {
		if err := s.markers.SetWithTTL(ctx, cooldownKey, "1", otpCooldown); err != nil {
			s.log.Warn().Err(err).Msg("failed to set otp cooldown")
		}
	}
	return nil
}

// mirrorToArchive writes the lead to the optional local archive. Failures are
// log-only; the hosted table is the system of record.
func (s *LeadService) mirrorToArchive(ctx context.Context, lead model.Lead) {
	if s.archive == nil {
		return
	}
	lead.ID = uuid.NewString()
	lead.CreatedAt = time.Now().UTC()
	if err := s.archive.Create(ctx, &lead); err != nil {
		s.log.Warn().Err(err).Str("email", lead.Email).Msg("failed to archive lead")
	}
}

func (s *LeadService) resolveRedirect(requested string) string {
	if requested != "" {
		return requested
	}
	if s.cfg.Lead.DefaultRedirect != "" {
		return s.cfg.Lead.DefaultRedirect
	}
	return "/thank-you.html"
}

// rescueKey derives the dedupe marker for one session's submission. The hash
// binds path, email, and name so a different form fill is a fresh insert.
func rescueKey(session, path string, lead model.Lead) string {
	sum := sha256.Sum256([]byte(path + "|" + lead.Email + "|" + lead.Name))
	return fmt.Sprintf("rescue:%s:%s", session, hex.EncodeToString(sum[:]))
}
