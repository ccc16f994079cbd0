package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JacqueDave/WebsiteJacques/internal/supabase"
)

func postLead(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSubmitLead(t *testing.T) {
	cfg := testHandlerConfig(t)
	store := &fakeStore{}
	h := newTestHandler(store, nil, &fakeSender{}, cfg)

	rec := postLead(t, h.SubmitLead, `{"name":" Jane ","email":" Jane@Example.COM "}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Redirect  string `json:"redirect"`
		LeadSaved bool   `json:"lead_saved"`
		Warning   string `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.LeadSaved {
		t.Error("lead_saved = false")
	}
	if resp.Redirect != "/thank-you.html" {
		t.Errorf("redirect = %q", resp.Redirect)
	}
	if len(store.inserted) != 1 || store.inserted[0].Email != "jane@example.com" {
		t.Errorf("inserted = %+v, want one normalized lead", store.inserted)
	}
}

func TestSubmitLeadInvalidEmail(t *testing.T) {
	h := newTestHandler(&fakeStore{}, nil, &fakeSender{}, testHandlerConfig(t))

	rec := postLead(t, h.SubmitLead, `{"email":"   "}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "validation_error") {
		t.Errorf("body = %s, want validation_error", rec.Body.String())
	}
}

func TestSubmitLeadBadJSON(t *testing.T) {
	h := newTestHandler(&fakeStore{}, nil, &fakeSender{}, testHandlerConfig(t))

	rec := postLead(t, h.SubmitLead, `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitLeadFailureStillRedirects(t *testing.T) {
	store := &fakeStore{insertErr: &supabase.InsertError{Status: 500, Body: "internal"}}
	h := newTestHandler(store, nil, &fakeSender{}, testHandlerConfig(t))

	rec := postLead(t, h.SubmitLead, `{"email":"a@b.com"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Redirect  string `json:"redirect"`
		LeadSaved bool   `json:"lead_saved"`
		Warning   string `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.LeadSaved {
		t.Error("lead_saved = true after failed insert")
	}
	if resp.Redirect == "" {
		t.Error("redirect lost on failure")
	}
	if resp.Warning == "" {
		t.Error("warning missing on failure")
	}
}

func TestSubmitLeadOTPWarningNonBlocking(t *testing.T) {
	store := &fakeStore{otpErr: &supabase.OTPError{Cause: &supabase.InsertError{Status: 422, Body: "Signups not allowed for otp"}}}
	h := newTestHandler(store, nil, &fakeSender{}, testHandlerConfig(t))

	rec := postLead(t, h.SubmitLead, `{"email":"a@b.com","request_otp":true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		LeadSaved bool   `json:"lead_saved"`
		OTPSent   bool   `json:"otp_sent"`
		Warning   string `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.LeadSaved || resp.OTPSent || resp.Warning == "" {
		t.Errorf("response = %+v, want saved lead with OTP warning", resp)
	}
}

func TestSiteConfig(t *testing.T) {
	h := newTestHandler(&fakeStore{}, nil, &fakeSender{}, testHandlerConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/config", nil)
	rec := httptest.NewRecorder()
	h.SiteConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CheckoutURL != "https://buy.stripe.com/test_123" {
		t.Errorf("checkout_url = %q", resp.CheckoutURL)
	}
}

func TestSiteConfigEmptyWhenUnresolved(t *testing.T) {
	cfg := testHandlerConfig(t)
	cfg.Checkout.URL = ""
	h := newTestHandler(&fakeStore{}, nil, &fakeSender{}, cfg)

	rec := httptest.NewRecorder()
	h.SiteConfig(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got, ok := resp["checkout_url"]; !ok || got != "" {
		t.Errorf("checkout_url = %q, want present and empty", got)
	}
}
