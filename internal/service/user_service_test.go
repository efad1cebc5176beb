package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/lostfound-api/internal/models"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
)

type mockUserDirectoryRepo struct {
	users            map[string]*models.User
	studentProfiles  map[string]*models.StudentProfile
	teacherProfiles  map[string]*models.TeacherProfile
	approvalApplied  bool
	tokensRevokedFor []string
}

func newMockUserDirectoryRepo() *mockUserDirectoryRepo {
	return &mockUserDirectoryRepo{
		users:           make(map[string]*models.User),
		studentProfiles: make(map[string]*models.StudentProfile),
		teacherProfiles: make(map[string]*models.TeacherProfile),
		approvalApplied: true,
	}
}

func (m *mockUserDirectoryRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserDirectoryRepo) ListPending(ctx context.Context) ([]models.User, error) {
	var pending []models.User
	for _, user := range m.users {
		if user.ApprovalStatus == models.ApprovalPending {
			pending = append(pending, *user)
		}
	}
	return pending, nil
}

func (m *mockUserDirectoryRepo) SetApproval(ctx context.Context, id string, status models.ApprovalStatus, approvedBy string, at time.Time) (bool, error) {
	user, ok := m.users[id]
	if !ok || user.ApprovalStatus != models.ApprovalPending || !m.approvalApplied {
		return false, nil
	}
	user.ApprovalStatus = status
	user.ApprovedBy = &approvedBy
	user.ApprovalDate = &at
	return true, nil
}

func (m *mockUserDirectoryRepo) FindStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if profile, ok := m.studentProfiles[userID]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserDirectoryRepo) FindTeacherProfile(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	if profile, ok := m.teacherProfiles[userID]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserDirectoryRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.tokensRevokedFor = append(m.tokensRevokedFor, userID)
	return nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Username: "admin", Role: models.RoleAdmin}
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "student-1", Username: "alice", Role: models.RoleStudent}
}

func TestListPendingAdminOnly(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", Username: "alice", ApprovalStatus: models.ApprovalPending}
	repo.users["u2"] = &models.User{ID: "u2", Username: "bob", ApprovalStatus: models.ApprovalApproved}
	svc := NewUserService(repo, zap.NewNop())

	pending, err := svc.ListPending(context.Background(), adminClaims())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].Username)

	_, err = svc.ListPending(context.Background(), studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestApprovePendingAccount(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", Username: "alice", ApprovalStatus: models.ApprovalPending}
	svc := NewUserService(repo, zap.NewNop())

	user, err := svc.Approve(context.Background(), "u1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, user.ApprovalStatus)
	require.NotNil(t, user.ApprovedBy)
	assert.Equal(t, "admin-1", *user.ApprovedBy)
	assert.NotNil(t, user.ApprovalDate)
}

func TestRejectPendingAccount(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", Username: "alice", ApprovalStatus: models.ApprovalPending}
	svc := NewUserService(repo, zap.NewNop())

	user, err := svc.Reject(context.Background(), "u1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, user.ApprovalStatus)
	assert.Equal(t, []string{"u1"}, repo.tokensRevokedFor)
}

func TestDecideRequiresAdmin(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", ApprovalStatus: models.ApprovalPending}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.Approve(context.Background(), "u1", studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.ApprovalPending, repo.users["u1"].ApprovalStatus)
}

func TestDecideAlreadyDecidedConflict(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", ApprovalStatus: models.ApprovalApproved}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.Approve(context.Background(), "u1", adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDecideUnknownAccount(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.Approve(context.Background(), "missing", adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDetailAttachesStudentProfile(t *testing.T) {
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", Username: "alice", Role: models.RoleStudent}
	repo.studentProfiles["u1"] = &models.StudentProfile{ID: "p1", UserID: "u1", StudentID: "S-1001", Grade: 10}
	svc := NewUserService(repo, zap.NewNop())

	detail, err := svc.Detail(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, detail.StudentProfile)
	assert.Equal(t, "S-1001", detail.StudentProfile.StudentID)
	assert.Nil(t, detail.TeacherProfile)
}

func TestDetailAttachesTeacherProfile(t *testing.T) {
	dept := "Science"
	repo := newMockUserDirectoryRepo()
	repo.users["u1"] = &models.User{ID: "u1", Username: "jones", Role: models.RoleTeacher}
	repo.teacherProfiles["u1"] = &models.TeacherProfile{ID: "p1", UserID: "u1", Department: &dept}
	svc := NewUserService(repo, zap.NewNop())

	detail, err := svc.Detail(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, detail.TeacherProfile)
	assert.Nil(t, detail.StudentProfile)
}
