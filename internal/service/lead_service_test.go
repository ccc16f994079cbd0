package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JacqueDave/WebsiteJacques/internal/config"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
	"github.com/JacqueDave/WebsiteJacques/internal/model"
	"github.com/JacqueDave/WebsiteJacques/internal/supabase"
)

type fakeStore struct {
	mu        sync.Mutex
	inserted  []model.Lead
	otpSent   []string
	insertErr error
	otpErr    error
	// block makes InsertLead wait for the context deadline, mimicking a
	// hosted table that never answers.
	block bool
}

func (f *fakeStore) InsertLead(ctx context.Context, lead model.Lead) error {
	if f.block {
		start := time.Now()
		<-ctx.Done()
		return &supabase.TimeoutError{Bound: time.Since(start)}
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, lead)
	return nil
}

func (f *fakeStore) SendOTP(ctx context.Context, email string) error {
	if f.otpErr != nil {
		return f.otpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpSent = append(f.otpSent, email)
	return nil
}

type fakeMarkers struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeMarkers() *fakeMarkers {
	return &fakeMarkers{keys: make(map[string]bool)}
}

func (f *fakeMarkers) Exists(ctx context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			n++
		}
	}
	return n, nil
}

func (f *fakeMarkers) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Lead: config.LeadConfig{
			InsertTimeout:   time.Second,
			OTPTimeout:      time.Second,
			RescueTTL:       30 * time.Minute,
			DefaultRedirect: "/thank-you.html",
		},
	}
}

func newTestService(store LeadStore, markers SessionMarkers) *LeadService {
	return NewLeadService(store, nil, markers, testConfig(), logger.New("error", "json"))
}

func TestSubmitInvalidEmail(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	_, err := svc.Submit(context.Background(), SubmitRequest{Email: "   "})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
}

func TestSubmitNormalizesAndSaves(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil)

	result, err := svc.Submit(context.Background(), SubmitRequest{
		Name:  "  Jane  ",
		Email: " Jane@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.LeadSaved {
		t.Error("LeadSaved = false, want true")
	}
	if result.Redirect != "/thank-you.html" {
		t.Errorf("Redirect = %q", result.Redirect)
	}
	if result.Warning != "" {
		t.Errorf("Warning = %q, want empty", result.Warning)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserts = %d, want 1", len(store.inserted))
	}
	if store.inserted[0].Name != "Jane" || store.inserted[0].Email != "jane@example.com" {
		t.Errorf("inserted lead = %+v", store.inserted[0])
	}
}

func TestSubmitRedirectOverride(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	result, err := svc.Submit(context.Background(), SubmitRequest{
		Email:    "a@b.com",
		Redirect: "/guide-thanks.html",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Redirect != "/guide-thanks.html" {
		t.Errorf("Redirect = %q", result.Redirect)
	}
}

func TestSubmitFailureStillRedirects(t *testing.T) {
	store := &fakeStore{insertErr: &supabase.InsertError{Status: 401, Body: "permission denied for table leads"}}
	svc := newTestService(store, nil)

	result, err := svc.Submit(context.Background(), SubmitRequest{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Submit returned error, failures should be swallowed: %v", err)
	}
	if result.LeadSaved {
		t.Error("LeadSaved = true after failed insert")
	}
	if result.Redirect != "/thank-you.html" {
		t.Errorf("Redirect = %q, failure must not lose the redirect", result.Redirect)
	}
	if !strings.Contains(result.Warning, "rejected") {
		t.Errorf("Warning = %q, want permission-denied classification", result.Warning)
	}
}

func TestSubmitMissingConfig(t *testing.T) {
	svc := newTestService(nil, nil)
	result, err := svc.Submit(context.Background(), SubmitRequest{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.LeadSaved {
		t.Error("LeadSaved = true without a configured store")
	}
	if result.Redirect == "" {
		t.Error("Redirect is empty")
	}
	if result.Warning == "" {
		t.Error("Warning is empty, want missing-config message")
	}
}

func TestSubmitTimeoutAtBound(t *testing.T) {
	store := &fakeStore{block: true}
	svc := newTestService(store, nil)
	svc.cfg.Lead.InsertTimeout = 50 * time.Millisecond

	start := time.Now()
	result, err := svc.Submit(context.Background(), SubmitRequest{Email: "a@b.com"})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.LeadSaved {
		t.Error("LeadSaved = true after timeout")
	}
	if !strings.Contains(result.Warning, "timed out") {
		t.Errorf("Warning = %q, want timeout classification", result.Warning)
	}
	if elapsed > time.Second {
		t.Errorf("submit took %s, should fail at the 50ms bound", elapsed)
	}
}

func TestSubmitOTPFailureNonBlocking(t *testing.T) {
	store := &fakeStore{otpErr: &supabase.OTPError{Cause: errors.New("Signups not allowed for otp")}}
	svc := newTestService(store, nil)

	result, err := svc.Submit(context.Background(), SubmitRequest{Email: "a@b.com", RequestOTP: true})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.LeadSaved {
		t.Error("LeadSaved = false, insert succeeded")
	}
	if result.OTPSent {
		t.Error("OTPSent = true after dispatch failure")
	}
	if !strings.Contains(result.Warning, "disabled") {
		t.Errorf("Warning = %q, want signups-disabled classification", result.Warning)
	}
	if result.Redirect == "" {
		t.Error("Redirect lost after OTP failure")
	}
}

func TestSubmitOTPCooldown(t *testing.T) {
	store := &fakeStore{}
	markers := newFakeMarkers()
	markers.keys["otp:cooldown:a@b.com"] = true
	svc := newTestService(store, markers)

	_, err := svc.Submit(context.Background(), SubmitRequest{Email: "a@b.com", RequestOTP: true})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.otpSent) != 0 {
		t.Errorf("otp dispatches = %d, cooldown should suppress", len(store.otpSent))
	}
}

func TestRescueInsertsAndDedupes(t *testing.T) {
	store := &fakeStore{}
	markers := newFakeMarkers()
	svc := newTestService(store, markers)

	req := RescueRequest{
		Session: "session-1",
		Path:    "/",
		Name:    " Jane ",
		Email:   "Jane@Example.com",
	}

	result, err := svc.Rescue(context.Background(), req)
	if err != nil {
		t.Fatalf("Rescue: %v", err)
	}
	if !result.Inserted {
		t.Fatal("first rescue did not insert")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserts = %d, want 1", len(store.inserted))
	}
	if store.inserted[0].Name != "Jane" || store.inserted[0].Email != "jane@example.com" {
		t.Errorf("inserted lead = %+v, want normalized values", store.inserted[0])
	}

	result, err = svc.Rescue(context.Background(), req)
	if err != nil {
		t.Fatalf("second Rescue: %v", err)
	}
	if result.Inserted {
		t.Error("replayed rescue inserted again")
	}
	if len(store.inserted) != 1 {
		t.Errorf("inserts = %d after replay, want 1", len(store.inserted))
	}
}

func TestRescueDistinctSubmissionsBothInsert(t *testing.T) {
	store := &fakeStore{}
	markers := newFakeMarkers()
	svc := newTestService(store, markers)

	if _, err := svc.Rescue(context.Background(), RescueRequest{Session: "s", Path: "/", Email: "a@b.com"}); err != nil {
		t.Fatalf("Rescue: %v", err)
	}
	if _, err := svc.Rescue(context.Background(), RescueRequest{Session: "s", Path: "/", Email: "c@d.com"}); err != nil {
		t.Fatalf("Rescue: %v", err)
	}
	if len(store.inserted) != 2 {
		t.Errorf("inserts = %d, want 2 for distinct emails", len(store.inserted))
	}
}

func TestRescueFailurePropagates(t *testing.T) {
	store := &fakeStore{insertErr: &supabase.InsertError{Status: 0, Body: "connection refused"}}
	svc := newTestService(store, newFakeMarkers())

	result, err := svc.Rescue(context.Background(), RescueRequest{Session: "s", Path: "/", Email: "a@b.com"})
	if result != nil || err == nil {
		t.Fatalf("Rescue = (%v, %v), want failure", result, err)
	}
	var insertErr *supabase.InsertError
	if !errors.As(err, &insertErr) {
		t.Errorf("err = %v, want InsertError", err)
	}
}

func TestRescueReplaysOTP(t *testing.T) {
	store := &fakeStore{}
	markers := newFakeMarkers()
	svc := newTestService(store, markers)

	req := RescueRequest{Session: "s", Path: "/", Email: "a@b.com", RequestOTP: true}
	result, err := svc.Rescue(context.Background(), req)
	if err != nil {
		t.Fatalf("Rescue: %v", err)
	}
	if !result.Inserted || !result.OTPSent {
		t.Errorf("result = %+v, want insert and OTP dispatch", result)
	}
	if len(store.otpSent) != 1 || store.otpSent[0] != "a@b.com" {
		t.Errorf("otp dispatches = %v, want one for the rescued lead", store.otpSent)
	}

	// A suppressed replay must not dispatch a second passcode either.
	result, err = svc.Rescue(context.Background(), req)
	if err != nil {
		t.Fatalf("second Rescue: %v", err)
	}
	if result.Inserted || result.OTPSent {
		t.Errorf("result = %+v after replay, want nothing done", result)
	}
	if len(store.otpSent) != 1 {
		t.Errorf("otp dispatches = %d after replay, want still 1", len(store.otpSent))
	}
}

func TestRescueOTPFailureNonBlocking(t *testing.T) {
	store := &fakeStore{otpErr: &supabase.OTPError{Cause: errors.New("boom")}}
	svc := newTestService(store, newFakeMarkers())

	result, err := svc.Rescue(context.Background(), RescueRequest{Session: "s", Path: "/", Email: "a@b.com", RequestOTP: true})
	if err != nil {
		t.Fatalf("Rescue: %v, OTP failure must not fail the rescue", err)
	}
	if !result.Inserted {
		t.Error("Inserted = false, insert succeeded")
	}
	if result.OTPSent {
		t.Error("OTPSent = true after dispatch failure")
	}
	if result.Warning == "" {
		t.Error("Warning is empty, dispatch failure must be reported")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing config", ErrMissingConfig, "Signups aren't configured yet. Please try again later."},
		{"invalid email", ErrInvalidEmail, "Please enter a valid email address."},
		{"timeout", &supabase.TimeoutError{Bound: time.Second}, "The request timed out. Please try again."},
		{"network", &supabase.InsertError{Status: 0, Body: "dial tcp: refused"}, "We couldn't reach the signup service. Please check your connection and try again."},
		{"permission denied", &supabase.InsertError{Status: 401, Body: "Permission Denied for table leads"}, "The signup service rejected the request. Please contact the site owner."},
		{"missing relation", &supabase.InsertError{Status: 404, Body: `relation "public.leads" does not exist`}, "The signup service isn't fully set up yet. Please try again later."},
		{"other insert failure", &supabase.InsertError{Status: 500, Body: "internal"}, "There was an error submitting your information. Please try again."},
		{"otp signups disabled", &supabase.OTPError{Cause: errors.New("Signups not allowed for otp")}, "Your information was saved, but sign-in codes are currently disabled."},
		{"otp other", &supabase.OTPError{Cause: errors.New("boom")}, "Your information was saved, but we couldn't send a sign-in code."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
