package router

import (
	"net/http"
	"time"

	"github.com/JacqueDave/WebsiteJacques/internal/handler"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
	"github.com/JacqueDave/WebsiteJacques/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	// Runtime configuration for the page script
	mux.HandleFunc("GET /api/v1/config", h.SiteConfig)

	// Lead capture (rate limited per IP)
	leadRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  10,
		Window: 1 * time.Minute,
		KeyFn:  middleware.IPKey,
	})
	mux.Handle("POST /api/v1/leads", leadRateLimit(http.HandlerFunc(h.SubmitLead)))
	mux.HandleFunc("/api/v1/leads", methodNotAllowed)

	// Payment provider webhook
	mux.HandleFunc("POST /api/v1/webhooks/stripe", h.StripeWebhook)
	mux.HandleFunc("/api/v1/webhooks/stripe", methodNotAllowed)

	// Static site with query-string lead rescue (catch-all)
	mux.Handle("/", h.Static())

	// Apply middleware stack
	var handlerChain http.Handler = mux

	// CORS (the API is same-origin in production; these cover local dev servers)
	handlerChain = mw.CORS([]string{"http://localhost:3000", "http://localhost:5173"})(handlerChain)

	// Security headers
	handlerChain = mw.SecurityHeaders(handlerChain)

	// Request logging
	handlerChain = mw.Logger(handlerChain)

	// Timing
	handlerChain = mw.Timing(handlerChain)

	// Request ID
	handlerChain = mw.RequestID(handlerChain)

	// Panic recovery (outermost)
	handlerChain = mw.Recover(handlerChain)

	return handlerChain
}

// methodNotAllowed backstops the method-specific API patterns so non-matching
// verbs get a 405 instead of falling through to the static catch-all.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}
