package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/lostfound-api/internal/models"
	"github.com/campus-ops/lostfound-api/internal/service"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
	"github.com/campus-ops/lostfound-api/pkg/response"
)

type claimService interface {
	Submit(ctx context.Context, itemID string, req service.SubmitClaimRequest, actor *models.JWTClaims) (*models.Claim, error)
	ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.Claim, *models.Pagination, error)
	ListForReview(ctx context.Context, actor *models.JWTClaims, status *models.ClaimStatus, page, pageSize int) ([]models.Claim, *models.Pagination, error)
	Review(ctx context.Context, claimID string, req service.ReviewClaimRequest, actor *models.JWTClaims) (*models.Claim, error)
	ExportForReview(ctx context.Context, actor *models.JWTClaims, status *models.ClaimStatus, format string) ([]byte, string, error)
}

// ClaimHandler handles the claim workflow endpoints.
type ClaimHandler struct {
	service claimService
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(svc claimService) *ClaimHandler {
	return &ClaimHandler{service: svc}
}

// Submit godoc
// @Summary Submit a claim against an item
// @Tags Claims
// @Accept json
// @Produce json
// @Param item_id path string true "Item ID"
// @Param payload body service.SubmitClaimRequest true "Claim payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /claims/items/{item_id} [post]
func (h *ClaimHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claim, err := h.service.Submit(c.Request.Context(), c.Param("item_id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, claim)
}

// ListMine godoc
// @Summary List the caller's claims
// @Tags Claims
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /claims/my-claims [get]
func (h *ClaimHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := pageParams(c)
	result, pagination, err := h.service.ListMine(c.Request.Context(), claims, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, pagination)
}

// ListForReview godoc
// @Summary List claims for staff review
// @Tags Claims
// @Produce json
// @Param status query string false "Status filter (defaults to pending)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /claims/review [get]
func (h *ClaimHandler) ListForReview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := pageParams(c)
	status := statusFilter(c)

	result, pagination, err := h.service.ListForReview(c.Request.Context(), claims, status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, pagination)
}

// Review godoc
// @Summary Decide a claim
// @Description Applies a status transition and records the reviewer
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body service.ReviewClaimRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /claims/{id}/review [post]
func (h *ClaimHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReviewClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claim, err := h.service.Review(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, claim, nil)
}

// Export godoc
// @Summary Export the review queue
// @Tags Claims
// @Produce text/csv
// @Param status query string false "Status filter (defaults to pending)"
// @Param format query string false "csv or pdf (defaults to csv)"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Router /claims/review/export [get]
func (h *ClaimHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.ExportForReview(c.Request.Context(), claims, statusFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "claims-review." + strings.ToLower(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

func statusFilter(c *gin.Context) *models.ClaimStatus {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil
	}
	status := models.ClaimStatus(strings.ToLower(raw))
	return &status
}
