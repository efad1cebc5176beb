package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/lostfound-api/internal/models"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
)

type userDirectoryRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListPending(ctx context.Context) ([]models.User, error)
	SetApproval(ctx context.Context, id string, status models.ApprovalStatus, approvedBy string, at time.Time) (bool, error)
	FindStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
	FindTeacherProfile(ctx context.Context, userID string) (*models.TeacherProfile, error)
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// AccountDetail bundles a user with their role sub-profile.
type AccountDetail struct {
	User           models.User            `json:"user"`
	StudentProfile *models.StudentProfile `json:"student_profile,omitempty"`
	TeacherProfile *models.TeacherProfile `json:"teacher_profile,omitempty"`
}

// UserService handles the admin side of the user directory: the approval gate.
type UserService struct {
	repo   userDirectoryRepository
	logger *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userDirectoryRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// ListPending returns accounts awaiting approval. Admin only.
func (s *UserService) ListPending(ctx context.Context, actor *models.JWTClaims) ([]models.User, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can list pending accounts")
	}
	users, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending accounts")
	}
	return users, nil
}

// Approve marks a pending account as approved.
func (s *UserService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	return s.decide(ctx, id, actor, models.ApprovalApproved)
}

// Reject marks a pending account as rejected.
func (s *UserService) Reject(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	return s.decide(ctx, id, actor, models.ApprovalRejected)
}

func (s *UserService) decide(ctx context.Context, id string, actor *models.JWTClaims, status models.ApprovalStatus) (*models.User, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can decide account approvals")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	applied, err := s.repo.SetApproval(ctx, id, status, actor.UserID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide account")
	}
	if !applied {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account has already been decided")
	}

	if status == models.ApprovalRejected {
		if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
			s.logger.Warn("failed to revoke refresh tokens for rejected account", zap.String("user_id", id), zap.Error(err))
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload account")
	}

	s.logger.Info("account decided",
		zap.String("user_id", id),
		zap.String("status", string(status)),
		zap.String("decided_by", actor.UserID),
	)
	return user, nil
}

// Detail returns an account with its role sub-profile attached.
func (s *UserService) Detail(ctx context.Context, id string) (*AccountDetail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	detail := &AccountDetail{User: *user}
	switch user.Role {
	case models.RoleStudent:
		profile, err := s.repo.FindStudentProfile(ctx, id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		detail.StudentProfile = profile
	case models.RoleTeacher:
		profile, err := s.repo.FindTeacherProfile(ctx, id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
		}
		detail.TeacherProfile = profile
	}
	return detail, nil
}
