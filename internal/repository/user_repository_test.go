package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/lostfound-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "approval_status", "approved_by", "approval_date", "last_login", "created_at", "updated_at"}).
		AddRow("u1", "alice", "alice@example.com", "hash", string(models.RoleStudent), string(models.ApprovalPending), nil, nil, nil, now, now)
}

func TestFindByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role, approval_status, approved_by, approval_date, last_login, created_at, updated_at FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(userRows(time.Now()))

	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.ApprovalPending, user.ApprovalStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithStudentProfileCommitsBoth(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_profiles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	err := repo.CreateWithStudentProfile(context.Background(),
		&models.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: models.RoleStudent, ApprovalStatus: models.ApprovalPending, CreatedAt: now, UpdatedAt: now},
		&models.StudentProfile{ID: "p1", UserID: "u1", StudentID: "S-1001", Grade: 10, CreatedAt: now},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithStudentProfileRollsBackOnProfileError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_profiles").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	now := time.Now()
	err := repo.CreateWithStudentProfile(context.Background(),
		&models.User{ID: "u1", CreatedAt: now, UpdatedAt: now},
		&models.StudentProfile{ID: "p1", UserID: "u1", StudentID: "S-1001", Grade: 10, CreatedAt: now},
	)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingOrdersOldestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE approval_status = $1 ORDER BY created_at ASC")).
		WithArgs(models.ApprovalPending).
		WillReturnRows(userRows(time.Now()))

	users, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetApprovalGuardedUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND approval_status = $5")).
		WithArgs("u1", models.ApprovalApproved, "admin-1", at, models.ApprovalPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.SetApproval(context.Background(), "u1", models.ApprovalApproved, "admin-1", at)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetApprovalAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND approval_status = $5")).
		WithArgs("u1", models.ApprovalRejected, "admin-1", at, models.ApprovalPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.SetApproval(context.Background(), "u1", models.ApprovalRejected, "admin-1", at)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAndFindRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{ID: "rt1", UserID: "u1", Token: "tok", ExpiresAt: time.Now(), CreatedAt: time.Now()})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "revoked", "revoked_at", "created_at"}).
		AddRow("rt1", "u1", "tok", now, false, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token = $1 LIMIT 1")).
		WithArgs("tok").
		WillReturnRows(rows)

	rt, err := repo.FindRefreshToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", rt.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeUserRefreshTokens(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE user_id = $1 AND revoked = FALSE")).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.RevokeUserRefreshTokens(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
