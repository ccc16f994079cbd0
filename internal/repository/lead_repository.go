package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/JacqueDave/WebsiteJacques/internal/database"
	"github.com/JacqueDave/WebsiteJacques/internal/model"
)

// LeadRepository handles the local lead archive. The hosted database remains
// the system of record; this table is a same-process mirror for reporting.
type LeadRepository struct {
	db *database.Postgres
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *database.Postgres) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead into the archive
func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}
