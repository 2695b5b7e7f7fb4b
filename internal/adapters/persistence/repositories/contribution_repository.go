package repositories

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// contributionRepository implements ContributionRepository interface
type contributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

// Record inserts the contribution and refreshes the customer row in one
// transaction. The (customer_id, business_day) unique index rejects a second
// insert for the same window with gorm.ErrDuplicatedKey.
func (r *contributionRepository) Record(ctx context.Context, contribution *models.Contribution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contribution).Error; err != nil {
			return err
		}

		// Only advance last_contribution_date; a backdated entry must not
		// rewind it.
		return tx.Model(&models.Customer{}).
			Where("id = ?", contribution.CustomerID).
			Where("last_contribution_date IS NULL OR last_contribution_date <= ?", contribution.BusinessDay).
			Updates(map[string]interface{}{
				"last_contribution_date": contribution.BusinessDay,
				"missed_days":            0,
			}).Error
	})
}

// ExistsForBusinessDay checks for an existing contribution in the window
func (r *contributionRepository) ExistsForBusinessDay(ctx context.Context, customerID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("customer_id = ? AND business_day = ?", customerID, day).
		Count(&count).Error
	return count > 0, err
}

// SumForOfficerOnBusinessDay totals contributions across all the officer's
// customers for one business day: the reconciler's expected figure.
func (r *contributionRepository) SumForOfficerOnBusinessDay(ctx context.Context, officerID uint, day time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("contributions").
		Select("COALESCE(SUM(contributions.amount), 0)").
		Joins("JOIN customers ON customers.id = contributions.customer_id").
		Where("customers.officer_id = ? AND contributions.business_day = ?", officerID, day).
		Row().Scan(&total)
	return total, err
}

// SumApprovedForCustomer totals the customer's contributions covered by
// approved submissions of the owning officer.
func (r *contributionRepository) SumApprovedForCustomer(ctx context.Context, customerID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("contributions").
		Select("COALESCE(SUM(contributions.amount), 0)").
		Joins("JOIN customers ON customers.id = contributions.customer_id").
		Joins("JOIN daily_submissions ON daily_submissions.officer_id = customers.officer_id"+
			" AND daily_submissions.business_day = contributions.business_day"+
			" AND daily_submissions.status = ?", models.SubmissionStatusApproved).
		Where("contributions.customer_id = ?", customerID).
		Row().Scan(&total)
	return total, err
}

// CountApprovedDaysForCustomer counts distinct approved contribution-days,
// the figure loan eligibility checks against.
func (r *contributionRepository) CountApprovedDaysForCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("contributions").
		Joins("JOIN customers ON customers.id = contributions.customer_id").
		Joins("JOIN daily_submissions ON daily_submissions.officer_id = customers.officer_id"+
			" AND daily_submissions.business_day = contributions.business_day"+
			" AND daily_submissions.status = ?", models.SubmissionStatusApproved).
		Where("contributions.customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// ListForCustomer lists a customer's contributions, newest first
func (r *contributionRepository) ListForCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.Contribution, int64, error) {
	var contributions []*models.Contribution
	var total int64

	r.db.WithContext(ctx).Model(&models.Contribution{}).Where("customer_id = ?", customerID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("RecordedBy").
		Where("customer_id = ?", customerID).
		Order("business_day DESC, recorded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contributions).Error

	return contributions, total, err
}
