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

type userServiceMock struct {
	listResp    []models.User
	listErr     error
	approveResp *models.User
	approveErr  error
	rejectResp  *models.User
	rejectErr   error
	detailResp  *service.AccountDetail
	detailErr   error
	decidedID   string
}

func (m *userServiceMock) ListPending(ctx context.Context, actor *models.JWTClaims) ([]models.User, error) {
	return m.listResp, m.listErr
}

func (m *userServiceMock) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	m.decidedID = id
	return m.approveResp, m.approveErr
}

func (m *userServiceMock) Reject(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	m.decidedID = id
	return m.rejectResp, m.rejectErr
}

func (m *userServiceMock) Detail(ctx context.Context, id string) (*service.AccountDetail, error) {
	return m.detailResp, m.detailErr
}

func adminTestContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	return c, w
}

func TestUserHandlerListPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &userServiceMock{
		listResp: []models.User{{ID: "u1", Username: "alice", ApprovalStatus: models.ApprovalPending}},
	}
	handler := NewUserHandler(mockSvc)

	c, w := adminTestContext(t, http.MethodGet, "/users/pending")
	handler.ListPending(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestUserHandlerListPendingNoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(&userServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/users/pending", nil)
	c.Request = req

	handler.ListPending(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandlerApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &userServiceMock{
		approveResp: &models.User{ID: "u1", ApprovalStatus: models.ApprovalApproved},
	}
	handler := NewUserHandler(mockSvc)

	c, w := adminTestContext(t, http.MethodPost, "/users/u1/approve")
	c.Params = gin.Params{{Key: "id", Value: "u1"}}
	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mockSvc.decidedID)
}

func TestUserHandlerRejectConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &userServiceMock{rejectErr: appErrors.ErrConflict}
	handler := NewUserHandler(mockSvc)

	c, w := adminTestContext(t, http.MethodPost, "/users/u1/reject")
	c.Params = gin.Params{{Key: "id", Value: "u1"}}
	handler.Reject(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandlerDetailNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &userServiceMock{detailErr: appErrors.ErrNotFound}
	handler := NewUserHandler(mockSvc)

	c, w := adminTestContext(t, http.MethodGet, "/users/missing")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Detail(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
