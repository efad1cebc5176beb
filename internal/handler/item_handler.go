package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/lostfound-api/internal/models"
	"github.com/campus-ops/lostfound-api/internal/service"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
	"github.com/campus-ops/lostfound-api/pkg/response"
)

type itemService interface {
	Report(ctx context.Context, req service.ReportItemRequest, photo *service.PhotoUpload, actor *models.JWTClaims) (*models.Item, error)
	ListAvailable(ctx context.Context, page, pageSize int, category *models.ItemCategory) ([]models.Item, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.Item, *models.Pagination, error)
	Photo(ctx context.Context, itemID, token string) (*service.PhotoDownload, error)
}

// ItemHandler handles the item registry endpoints.
type ItemHandler struct {
	service itemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(svc itemService) *ItemHandler {
	return &ItemHandler{service: svc}
}

// Report godoc
// @Summary Report a found item
// @Tags Items
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Item name"
// @Param category formData string true "Category"
// @Param description formData string false "Description"
// @Param location_found formData string true "Where the item was found"
// @Param date_found formData string true "When the item was found (YYYY-MM-DD)"
// @Param photo formData file false "Photo"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /items [post]
func (h *ItemHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReportItemRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid item payload"))
		return
	}

	var photo *service.PhotoUpload
	if fileHeader, err := c.FormFile("photo"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open photo"))
			return
		}
		defer src.Close()

		reader, ok := src.(io.ReadSeeker)
		if !ok {
			buf, readErr := io.ReadAll(src)
			if readErr != nil {
				response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer photo"))
				return
			}
			reader = bytes.NewReader(buf)
		}

		photo = &service.PhotoUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Content:  reader,
		}
	}

	item, err := h.service.Report(c.Request.Context(), req, photo, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// List godoc
// @Summary List available items
// @Tags Items
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /items [get]
func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	var category *models.ItemCategory
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		cat := models.ItemCategory(strings.ToLower(raw))
		category = &cat
	}

	items, pagination, err := h.service.ListAvailable(c.Request.Context(), page, pageSize, category)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get item detail
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// ListMine godoc
// @Summary List the caller's reported items
// @Tags Items
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /items/my-items [get]
func (h *ItemHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, pageSize := pageParams(c)
	items, pagination, err := h.service.ListMine(c.Request.Context(), claims, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Photo godoc
// @Summary Download an item photo
// @Description Streams the stored photo after validating the signed token
// @Tags Items
// @Produce octet-stream
// @Param id path string true "Item ID"
// @Param token query string true "Signed photo token"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /items/{id}/photo [get]
func (h *ItemHandler) Photo(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	download, err := h.service.Photo(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Disposition", `inline; filename="`+download.Name+`"`)
	c.Header("Content-Type", download.MimeType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, download.File)
}
