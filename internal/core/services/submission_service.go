package services

import (
	"context"
	"errors"
	"fmt"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/businessday"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// varianceTolerance is the largest absolute variance a submission can carry
// and still auto-approve.
var varianceTolerance = decimal.NewFromFloat(0.01)

// SubmissionService handles end-of-day cash reconciliation
type SubmissionService struct {
	submissionRepo   repositories.SubmissionRepository
	contributionRepo repositories.ContributionRepository
	userRepo         repositories.UserRepository
	notifier         *NotificationService
	clock            businessday.Clock
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	submissionRepo repositories.SubmissionRepository,
	contributionRepo repositories.ContributionRepository,
	userRepo repositories.UserRepository,
	notifier *NotificationService,
	clock businessday.Clock,
) *SubmissionService {
	if clock == nil {
		clock = businessday.SystemClock{}
	}
	return &SubmissionService{
		submissionRepo:   submissionRepo,
		contributionRepo: contributionRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		clock:            clock,
	}
}

// CreateSubmissionInput for an officer's end-of-day cash declaration
type CreateSubmissionInput struct {
	SubmittedTotal decimal.Decimal `json:"submitted_total" validate:"required"`
	Notes          string          `json:"notes"`
}

// Create books the officer's declared cash total against the current business
// day. The system's expected figure is frozen into CalculatedTotal at this
// moment and never recomputed, even if contributions are edited later. An
// exact match auto-approves; any variance flags the submission for admin
// review. One submission per officer per business day.
func (s *SubmissionService) Create(ctx context.Context, actor domain.Actor, input CreateSubmissionInput) (*models.DailySubmission, error) {
	if actor.OfficerID == 0 {
		return nil, domain.ErrOfficerNotFound
	}
	if input.SubmittedTotal.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	day := businessday.For(s.clock.Now())

	exists, err := s.submissionRepo.ExistsForBusinessDay(ctx, actor.OfficerID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateSubmission
	}

	calculated, err := s.contributionRepo.SumForOfficerOnBusinessDay(ctx, actor.OfficerID, day)
	if err != nil {
		return nil, err
	}

	submission := &models.DailySubmission{
		OfficerID:       actor.OfficerID,
		BusinessDay:     day,
		SubmittedTotal:  input.SubmittedTotal,
		CalculatedTotal: calculated,
		Status:          models.SubmissionStatusPending,
		Notes:           input.Notes,
	}

	variance := submission.Variance()
	if variance.Abs().LessThan(varianceTolerance) {
		now := s.clock.Now()
		submission.Status = models.SubmissionStatusApproved
		submission.ReviewedBy = models.SystemReviewer
		submission.ReviewedAt = &now
	} else {
		submission.Status = models.SubmissionStatusFlagged
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateSubmission
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"officer_id":    actor.OfficerID,
		"business_day":  day.Format("2006-01-02"),
		"variance":      variance.String(),
		"status":        submission.Status,
	}).Info("daily submission created")

	if submission.Status == models.SubmissionStatusFlagged {
		s.notifier.NotifyAdmins(ctx, models.NotifyTypeSubmission,
			"Daily submission flagged",
			fmt.Sprintf("Submission for %s has a variance of %s", day.Format("2006-01-02"), variance.StringFixed(2)),
			&submission.ID)
	}

	return submission, nil
}

// Approve resolves a flagged (or still pending) submission. Admin only; an
// already reviewed submission cannot be re-reviewed.
func (s *SubmissionService) Approve(ctx context.Context, actor domain.Actor, id uint, notes string) (*models.DailySubmission, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, err
	}

	if submission.Status == models.SubmissionStatusApproved {
		return nil, domain.ErrInvalidInput
	}

	now := s.clock.Now()
	submission.Status = models.SubmissionStatusApproved
	submission.ReviewedBy = s.reviewerName(ctx, actor.UserID)
	submission.ReviewedAt = &now
	if notes != "" {
		submission.Notes = notes
	}

	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"reviewed_by":   submission.ReviewedBy,
	}).Info("daily submission approved")

	if submission.Officer != nil {
		s.notifier.NotifyUser(ctx, submission.Officer.UserID, models.NotifyTypeSubmission,
			"Daily submission approved",
			fmt.Sprintf("Your submission for %s was approved", submission.BusinessDay.Format("2006-01-02")),
			&submission.ID)
	}

	return submission, nil
}

// GetByID returns one submission, scoped to its officer unless the actor is
// an admin.
func (s *SubmissionService) GetByID(ctx context.Context, actor domain.Actor, id uint) (*models.DailySubmission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && submission.OfficerID != actor.OfficerID {
		return nil, domain.ErrSubmissionNotFound
	}
	return submission, nil
}

// ListMine lists the calling officer's submission history
func (s *SubmissionService) ListMine(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.DailySubmission, int64, error) {
	if actor.OfficerID == 0 {
		return nil, 0, domain.ErrOfficerNotFound
	}
	return s.submissionRepo.ListByOfficer(ctx, actor.OfficerID, offset, limit)
}

// ListByStatus lists submissions for the admin review queue
func (s *SubmissionService) ListByStatus(ctx context.Context, actor domain.Actor, status string, offset, limit int) ([]*models.DailySubmission, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.submissionRepo.ListByStatus(ctx, status, offset, limit)
}

// reviewerName resolves the admin's username for the audit column
func (s *SubmissionService) reviewerName(ctx context.Context, userID uint) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Sprintf("user:%d", userID)
	}
	return user.Username
}
