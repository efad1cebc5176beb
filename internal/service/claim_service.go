package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-ops/lostfound-api/internal/models"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
	"github.com/campus-ops/lostfound-api/pkg/export"
)

type claimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, id string) (*models.Claim, error)
	List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, int, error)
	HasOpenClaim(ctx context.Context, claimantID, itemID string) (bool, error)
	Review(ctx context.Context, claimID string, from, to models.ClaimStatus, reviewerID string, adminNotes *string, at time.Time) (bool, error)
}

type claimItemResolver interface {
	FindByID(ctx context.Context, id string) (*models.Item, error)
}

type listingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// SubmitClaimRequest is the payload for submitting a claim against an item.
type SubmitClaimRequest struct {
	ClaimType       string `json:"claim_type"`
	Description     string `json:"description" validate:"required"`
	ContactMethod   string `json:"contact_method" validate:"required"`
	AdditionalProof string `json:"additional_proof"`
}

// ReviewClaimRequest is the staff payload for deciding a claim.
type ReviewClaimRequest struct {
	Status     string `json:"status" validate:"required"`
	AdminNotes string `json:"admin_notes"`
}

// ClaimService handles the claim workflow: submission, listings, and the
// staff review state machine.
type ClaimService struct {
	repo      claimRepository
	items     claimItemResolver
	listings  listingInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClaimService creates an instance of ClaimService.
func NewClaimService(repo claimRepository, items claimItemResolver, listings listingInvalidator, validate *validator.Validate, logger *zap.Logger) *ClaimService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClaimService{repo: repo, items: items, listings: listings, validator: validate, logger: logger}
}

// Submit records a new claim by the authenticated claimant. The claim type
// defaults to "claim" when omitted.
func (s *ClaimService) Submit(ctx context.Context, itemID string, req SubmitClaimRequest, actor *models.JWTClaims) (*models.Claim, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	// Trim before validating so whitespace-only fields fail "required".
	req.Description = strings.TrimSpace(req.Description)
	req.ContactMethod = strings.TrimSpace(req.ContactMethod)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid claim payload")
	}

	claimType := models.ClaimType(strings.ToLower(strings.TrimSpace(req.ClaimType)))
	if claimType == "" {
		claimType = models.ClaimTypeClaim
	}
	if claimType != models.ClaimTypeClaim && claimType != models.ClaimTypeInquiry {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown claim type %q", req.ClaimType))
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}
	if item.SubmittedBy == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "you cannot claim an item you reported")
	}

	if open, err := s.repo.HasOpenClaim(ctx, actor.UserID, itemID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing claims")
	} else if open {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you already have a pending claim on this item")
	}

	now := time.Now().UTC()
	claim := &models.Claim{
		ID:            uuid.NewString(),
		ItemID:        itemID,
		ClaimantID:    actor.UserID,
		ClaimType:     claimType,
		Description:   req.Description,
		ContactMethod: req.ContactMethod,
		Status:        models.ClaimPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if proof := strings.TrimSpace(req.AdditionalProof); proof != "" {
		claim.AdditionalProof = &proof
	}

	if err := s.repo.Create(ctx, claim); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create claim")
	}

	s.logger.Info("claim submitted",
		zap.String("claim_id", claim.ID),
		zap.String("item_id", itemID),
		zap.String("claimant_id", actor.UserID),
		zap.String("claim_type", string(claimType)),
	)
	return claim, nil
}

// ListMine returns the caller's claims, newest first.
func (s *ClaimService) ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.Claim, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	claims, total, err := s.repo.List(ctx, models.ClaimFilter{
		ClaimantID: actor.UserID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list claims")
	}
	return claims, paginationFor(page, pageSize, total), nil
}

// ListForReview returns the review queue for staff, filtered by status
// (defaulting to pending), newest first.
func (s *ClaimService) ListForReview(ctx context.Context, actor *models.JWTClaims, status *models.ClaimStatus, page, pageSize int) ([]models.Claim, *models.Pagination, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can review claims")
	}
	if status == nil {
		pending := models.ClaimPending
		status = &pending
	} else if !models.ValidClaimStatus(*status) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown claim status %q", *status))
	}

	claims, total, err := s.repo.List(ctx, models.ClaimFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list claims for review")
	}
	return claims, paginationFor(page, pageSize, total), nil
}

// Review applies a status transition to a claim. The transition is validated
// against the state machine, then applied with a guarded update so that a
// concurrent decision on the same claim cannot be silently overwritten.
// Approval marks the item claimed; completion marks it returned.
func (s *ClaimService) Review(ctx context.Context, claimID string, req ReviewClaimRequest, actor *models.JWTClaims) (*models.Claim, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can review claims")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	newStatus := models.ClaimStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !models.ValidClaimStatus(newStatus) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown claim status %q", req.Status))
	}

	claim, err := s.repo.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "claim not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim")
	}

	if !models.CanTransition(claim.Status, newStatus) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move claim from %s to %s", claim.Status, newStatus))
	}

	var notes *string
	if trimmed := strings.TrimSpace(req.AdminNotes); trimmed != "" {
		notes = &trimmed
	}

	applied, err := s.repo.Review(ctx, claimID, claim.Status, newStatus, actor.UserID, notes, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply review")
	}
	if !applied {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "claim was decided by another reviewer")
	}

	// Approval and completion both change the item's status, so the cached
	// available listing is stale either way.
	if (newStatus == models.ClaimApproved || newStatus == models.ClaimCompleted) && s.listings != nil {
		s.listings.InvalidateListings(ctx)
	}

	reviewed, err := s.repo.FindByID(ctx, claimID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload claim")
	}

	s.logger.Info("claim reviewed",
		zap.String("claim_id", claimID),
		zap.String("status", string(newStatus)),
		zap.String("reviewed_by", actor.UserID),
	)
	return reviewed, nil
}

// ExportForReview renders the review queue as a CSV or PDF document.
func (s *ClaimService) ExportForReview(ctx context.Context, actor *models.JWTClaims, status *models.ClaimStatus, format string) ([]byte, string, error) {
	claims, _, err := s.ListForReview(ctx, actor, status, 1, 100)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Claim ID", "Item", "Claimant", "Type", "Status", "Submitted", "Reviewed By"},
	}
	for _, c := range claims {
		reviewer := ""
		if c.ReviewedBy != nil {
			reviewer = *c.ReviewedBy
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Claim ID":    c.ID,
			"Item":        c.ItemName,
			"Claimant":    c.ClaimantName,
			"Type":        string(c.ClaimType),
			"Status":      string(c.Status),
			"Submitted":   c.CreatedAt.Format(time.RFC3339),
			"Reviewed By": reviewer,
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := export.NewPDFExporter().Render(dataset, "Claim Review Queue")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
