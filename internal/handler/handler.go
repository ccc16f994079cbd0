package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JacqueDave/WebsiteJacques/internal/config"
	"github.com/JacqueDave/WebsiteJacques/internal/database"
	"github.com/JacqueDave/WebsiteJacques/internal/logger"
	"github.com/JacqueDave/WebsiteJacques/internal/service"
)

// Handler holds all HTTP handlers
type Handler struct {
	db          *database.Postgres
	rdb         *database.Redis
	log         *logger.Logger
	cfg         *config.Config
	leadSvc     *service.LeadService
	purchaseSvc *service.PurchaseService
}

// New creates a new Handler instance. db is nil when the local archive is
// disabled; rdb is nil when Redis is unavailable.
func New(db *database.Postgres, rdb *database.Redis, log *logger.Logger, cfg *config.Config, leadSvc *service.LeadService, purchaseSvc *service.PurchaseService) *Handler {
	return &Handler{
		db:          db,
		rdb:         rdb,
		log:         log,
		cfg:         cfg,
		leadSvc:     leadSvc,
		purchaseSvc: purchaseSvc,
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
