package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JacqueDave/WebsiteJacques/internal/service"
)

const sessionCookieName = "lead_session"

// Static serves the public site. Page requests carrying lead form data in
// the query string are intercepted and rescued: some browsers submit the
// native form before the script can prevent it, landing back on the page as
// GET /?email=...&name=... with nothing saved.
func (h *Handler) Static() http.Handler {
	fileServer := http.FileServer(http.Dir(h.cfg.Site.PublicDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && isPage(r.URL.Path) && r.URL.Query().Has("email") {
			h.rescueLead(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// rescueLead replays the dropped submission and redirects to a clean URL so
// a reload or back-navigation can't submit it again.
func (h *Handler) rescueLead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session := h.sessionID(w, r)

	result, err := h.leadSvc.Rescue(r.Context(), service.RescueRequest{
		Session:    session,
		Path:       r.URL.Path,
		Name:       q.Get("name"),
		Email:      q.Get("email"),
		RequestOTP: flagSet(q.Get("request_otp")),
	})

	if err != nil {
		// This path has no form UI to show state, so the page surfaces the
		// classification from the query string.
		notice := url.Values{"lead_notice": {service.UserMessage(err)}}
		http.Redirect(w, r, r.URL.Path+"?"+notice.Encode(), http.StatusSeeOther)
		return
	}

	target := r.URL.Path
	if isLandingPage(r.URL.Path) {
		target = h.cfg.Site.ThankYouPath
	}
	if result.Warning != "" {
		notice := url.Values{"lead_notice": {result.Warning}}
		target += "?" + notice.Encode()
	}
	if result.Inserted {
		h.log.Info().Str("path", r.URL.Path).Msg("lead rescued from query string")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// sessionID returns the browser's rescue-session ID, issuing the cookie on
// first sight.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	session := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int(h.cfg.Lead.RescueTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}

// flagSet interprets a checkbox-ish query value; native form posts serialize
// a checked box as "on" and hidden inputs commonly as "1" or "true".
func flagSet(v string) bool {
	switch strings.ToLower(v) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// isPage reports whether the path serves an HTML page rather than an asset.
func isPage(path string) bool {
	return path == "/" || strings.HasSuffix(path, ".html") || !strings.Contains(path[1:], ".")
}

// isLandingPage reports whether the path is the landing page, whose rescue
// success target is the thank-you page.
func isLandingPage(path string) bool {
	return path == "/" || path == "/index.html"
}
