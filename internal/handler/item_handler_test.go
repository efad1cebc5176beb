package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/lostfound-api/internal/middleware"
	"github.com/campus-ops/lostfound-api/internal/models"
	"github.com/campus-ops/lostfound-api/internal/service"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
)

type itemServiceMock struct {
	reportResp   *models.Item
	reportErr    error
	listResp     []models.Item
	listErr      error
	getResp      *models.Item
	getErr       error
	photoResp    *service.PhotoDownload
	photoErr     error
	lastCategory *models.ItemCategory
	lastPage     int
	lastPageSize int
}

func (m *itemServiceMock) Report(ctx context.Context, req service.ReportItemRequest, photo *service.PhotoUpload, actor *models.JWTClaims) (*models.Item, error) {
	return m.reportResp, m.reportErr
}

func (m *itemServiceMock) ListAvailable(ctx context.Context, page, pageSize int, category *models.ItemCategory) ([]models.Item, *models.Pagination, error) {
	m.lastPage = page
	m.lastPageSize = pageSize
	m.lastCategory = category
	return m.listResp, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(m.listResp)}, m.listErr
}

func (m *itemServiceMock) Get(ctx context.Context, id string) (*models.Item, error) {
	return m.getResp, m.getErr
}

func (m *itemServiceMock) ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.Item, *models.Pagination, error) {
	return m.listResp, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(m.listResp)}, m.listErr
}

func (m *itemServiceMock) Photo(ctx context.Context, itemID, token string) (*service.PhotoDownload, error) {
	return m.photoResp, m.photoErr
}

func TestItemHandlerListPassesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &itemServiceMock{
		listResp: []models.Item{{ID: "i1", Name: "Backpack", Status: models.ItemAvailable}},
	}
	handler := NewItemHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/items?page=2&page_size=5&category=Electronics", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockSvc.lastPage)
	assert.Equal(t, 5, mockSvc.lastPageSize)
	require.NotNil(t, mockSvc.lastCategory)
	assert.Equal(t, models.CategoryElectronics, *mockSvc.lastCategory)
}

func TestItemHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &itemServiceMock{getErr: appErrors.ErrNotFound}
	handler := NewItemHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/items/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemHandlerReportUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewItemHandler(&itemServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/items", nil)
	c.Request = req

	handler.Report(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestItemHandlerListMine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &itemServiceMock{
		listResp: []models.Item{{ID: "i1", SubmittedBy: "student-1"}},
	}
	handler := NewItemHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/items/my-items", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.ListMine(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "i1")
}

func TestItemHandlerPhotoRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewItemHandler(&itemServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/items/i1/photo", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "i1"}}

	handler.Photo(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestItemHandlerPhotoForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &itemServiceMock{photoErr: appErrors.ErrForbidden}
	handler := NewItemHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/items/i1/photo?token=bad", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "i1"}}

	handler.Photo(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
