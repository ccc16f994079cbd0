package handler

import (
	"errors"
	"net/http"

	"github.com/JacqueDave/WebsiteJacques/internal/service"
)

// SubmitLeadRequest is the lead form submission payload
type SubmitLeadRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RequestOTP bool   `json:"request_otp"`
	Redirect   string `json:"redirect"`
}

// SubmitLeadResponse mirrors what the form script needs: where to send the
// visitor, whether the lead landed, and any message worth surfacing.
type SubmitLeadResponse struct {
	Redirect  string `json:"redirect"`
	LeadSaved bool   `json:"lead_saved"`
	OTPSent   bool   `json:"otp_sent,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// SubmitLead handles POST /api/v1/leads
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeadRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.leadSvc.Submit(r.Context(), service.SubmitRequest{
		Name:       req.Name,
		Email:      req.Email,
		RequestOTP: req.RequestOTP,
		Redirect:   req.Redirect,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, "validation_error", service.UserMessage(err))
			return
		}
		h.log.Error().Err(err).Str("client_ip", getClientIP(r)).Msg("lead submission failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, SubmitLeadResponse{
		Redirect:  result.Redirect,
		LeadSaved: result.LeadSaved,
		OTPSent:   result.OTPSent,
		Warning:   result.Warning,
	})
}

// SiteConfigResponse is the runtime configuration the page script consumes
type SiteConfigResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// SiteConfig handles GET /api/v1/config. The checkout URL is empty when
// unresolved; the page script ARIA-disables the purchase links in that case.
func (h *Handler) SiteConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SiteConfigResponse{
		CheckoutURL: h.cfg.Checkout.URL,
	})
}
