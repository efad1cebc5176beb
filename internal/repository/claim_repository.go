package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/lostfound-api/internal/models"
)

const claimColumns = `c.id, c.item_id, c.claimant_id, c.claim_type, c.description, c.contact_method, c.additional_proof, c.status, c.reviewed_by, c.admin_notes, c.created_at, c.updated_at, c.reviewed_at`

// ClaimRepository provides database access for the claim workflow.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository creates a new instance of ClaimRepository.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create inserts a submitted claim.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	const query = `INSERT INTO claims (id, item_id, claimant_id, claim_type, description, contact_method, additional_proof, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		claim.ID, claim.ItemID, claim.ClaimantID, claim.ClaimType, claim.Description,
		claim.ContactMethod, claim.AdditionalProof, claim.Status, claim.CreatedAt, claim.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// FindByID returns a claim by identifier.
func (r *ClaimRepository) FindByID(ctx context.Context, id string) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims c WHERE c.id = $1 LIMIT 1`
	var claim models.Claim
	if err := r.db.GetContext(ctx, &claim, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find claim by id: %w", err)
	}
	return &claim, nil
}

// List returns claims matching the filter, newest first, with a total count.
// Item and claimant names are joined in for listing surfaces.
func (r *ClaimRepository) List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, int, error) {
	baseQuery := `FROM claims c
		JOIN items i ON i.id = c.item_id
		JOIN users u ON u.id = c.claimant_id
		WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.ClaimantID != "" {
		conditions = append(conditions, fmt.Sprintf("c.claimant_id = $%d", len(args)+1))
		args = append(args, filter.ClaimantID)
	}
	if filter.ItemID != "" {
		conditions = append(conditions, fmt.Sprintf("c.item_id = $%d", len(args)+1))
		args = append(args, filter.ItemID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT %s, i.name AS item_name, u.username AS claimant_name %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d`,
		claimColumns, baseQuery, pageSize, offset)

	var claims []models.Claim
	if err := r.db.SelectContext(ctx, &claims, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}

	return claims, total, nil
}

// HasOpenClaim reports whether the claimant already has a pending claim on the item.
func (r *ClaimRepository) HasOpenClaim(ctx context.Context, claimantID, itemID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM claims WHERE claimant_id = $1 AND item_id = $2 AND status = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, claimantID, itemID, models.ClaimPending); err != nil {
		return false, fmt.Errorf("check open claim: %w", err)
	}
	return count > 0, nil
}

// Review applies a status transition in a single transaction. The UPDATE is
// guarded on the expected current status so a racing reviewer loses cleanly
// (applied == false) instead of overwriting a decided claim. Approving a
// claim marks the item claimed; a transition to completed marks the item
// returned and rejects every other still-pending claim on it.
func (r *ClaimRepository) Review(ctx context.Context, claimID string, from, to models.ClaimStatus, reviewerID string, adminNotes *string, at time.Time) (applied bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE claims
		SET status = $2, reviewed_by = $3, admin_notes = $4, reviewed_at = $5, updated_at = $5
		WHERE id = $1 AND status = $6`
	res, err := tx.ExecContext(ctx, update, claimID, to, reviewerID, adminNotes, at, from)
	if err != nil {
		return false, fmt.Errorf("update claim status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review rows affected: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	if to == models.ClaimApproved {
		const markClaimed = `UPDATE items
			SET status = $2, updated_at = $3
			WHERE id = (SELECT item_id FROM claims WHERE id = $1)`
		if _, err = tx.ExecContext(ctx, markClaimed, claimID, models.ItemClaimed, at); err != nil {
			return false, fmt.Errorf("mark item claimed: %w", err)
		}
	}

	if to == models.ClaimCompleted {
		const markReturned = `UPDATE items
			SET status = $2, updated_at = $3
			WHERE id = (SELECT item_id FROM claims WHERE id = $1)`
		if _, err = tx.ExecContext(ctx, markReturned, claimID, models.ItemReturned, at); err != nil {
			return false, fmt.Errorf("mark item returned: %w", err)
		}

		const rejectOthers = `UPDATE claims
			SET status = $2, updated_at = $3
			WHERE item_id = (SELECT item_id FROM claims WHERE id = $1)
			  AND id <> $1 AND status = $4`
		if _, err = tx.ExecContext(ctx, rejectOthers, claimID, models.ClaimRejected, at, models.ClaimPending); err != nil {
			return false, fmt.Errorf("reject sibling claims: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit review tx: %w", err)
	}
	return true, nil
}
