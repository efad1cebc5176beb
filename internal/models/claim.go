package models

import "time"

// ClaimType distinguishes ownership claims from information requests.
type ClaimType string

const (
	ClaimTypeClaim   ClaimType = "claim"
	ClaimTypeInquiry ClaimType = "inquiry"
)

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimApproved  ClaimStatus = "approved"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimCompleted ClaimStatus = "completed"
)

// claimTransitions describes the reachable review states.
// pending -> approved | rejected; approved -> completed.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimPending:  {ClaimApproved, ClaimRejected},
	ClaimApproved: {ClaimCompleted},
}

// CanTransition reports whether a review may move a claim from one status to another.
func CanTransition(from, to ClaimStatus) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidClaimStatus reports whether the value is a known review state.
func ValidClaimStatus(s ClaimStatus) bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimRejected, ClaimCompleted:
		return true
	}
	return false
}

// Claim links a claimant to an item with a review status mutated by staff.
type Claim struct {
	ID              string      `db:"id" json:"id"`
	ItemID          string      `db:"item_id" json:"item_id"`
	ClaimantID      string      `db:"claimant_id" json:"claimant_id"`
	ClaimType       ClaimType   `db:"claim_type" json:"claim_type"`
	Description     string      `db:"description" json:"description"`
	ContactMethod   string      `db:"contact_method" json:"contact_method"`
	AdditionalProof *string     `db:"additional_proof" json:"additional_proof,omitempty"`
	Status          ClaimStatus `db:"status" json:"status"`
	ReviewedBy      *string     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	AdminNotes      *string     `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
	ReviewedAt      *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`

	// Joined item context for listings.
	ItemName     string `db:"item_name" json:"item_name,omitempty"`
	ClaimantName string `db:"claimant_name" json:"claimant_name,omitempty"`
}

// ClaimFilter captures filtering criteria for the review queue.
type ClaimFilter struct {
	Status     *ClaimStatus
	ClaimantID string
	ItemID     string
	Page       int
	PageSize   int
}
