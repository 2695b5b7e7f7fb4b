package repositories

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// submissionRepository implements SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new daily submission repository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create creates a new daily submission. The (officer_id, business_day)
// unique index rejects a duplicate with gorm.ErrDuplicatedKey.
func (r *submissionRepository) Create(ctx context.Context, submission *models.DailySubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetByID gets a submission by ID with officer
func (r *submissionRepository) GetByID(ctx context.Context, id uint) (*models.DailySubmission, error) {
	var submission models.DailySubmission
	err := r.db.WithContext(ctx).
		Preload("Officer").
		Preload("Officer.User").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ExistsForBusinessDay checks for an existing submission for the key
func (r *submissionRepository) ExistsForBusinessDay(ctx context.Context, officerID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DailySubmission{}).
		Where("officer_id = ? AND business_day = ?", officerID, day).
		Count(&count).Error
	return count > 0, err
}

// Update updates a submission (approval action only)
func (r *submissionRepository) Update(ctx context.Context, submission *models.DailySubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// ListByOfficer lists an officer's submissions, newest first
func (r *submissionRepository) ListByOfficer(ctx context.Context, officerID uint, offset, limit int) ([]*models.DailySubmission, int64, error) {
	var submissions []*models.DailySubmission
	var total int64

	r.db.WithContext(ctx).Model(&models.DailySubmission{}).Where("officer_id = ?", officerID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("officer_id = ?", officerID).
		Order("business_day DESC, submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error

	return submissions, total, err
}

// ListByStatus lists submissions in a given state (admin review queue)
func (r *submissionRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.DailySubmission, int64, error) {
	var submissions []*models.DailySubmission
	var total int64

	r.db.WithContext(ctx).Model(&models.DailySubmission{}).Where("status = ?", status).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Officer").
		Preload("Officer.User").
		Where("status = ?", status).
		Order("business_day DESC, submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error

	return submissions, total, err
}

// Count counts all submissions
func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DailySubmission{}).Count(&count).Error
	return count, err
}
