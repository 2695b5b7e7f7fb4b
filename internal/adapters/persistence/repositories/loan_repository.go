package repositories

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID with customer and approver
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Customer.Officer").
		Preload("Customer.Officer.User").
		Preload("Approver").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// CountOpenForCustomer counts loans in pending/approved/disbursed state
func (r *loanRepository) CountOpenForCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("customer_id = ? AND status IN ?", customerID, models.OpenLoanStatuses).
		Count(&count).Error
	return count, err
}

// CountByStatus counts loans in a given state
func (r *loanRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// ListByCustomer lists a customer's loans, newest first
func (r *loanRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListByStatus lists loans in a given state with pagination
func (r *loanRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	r.db.WithContext(ctx).Model(&models.Loan{}).Where("status = ?", status).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Customer.Officer").
		Preload("Customer.Officer.User").
		Where("status = ?", status).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ApplyRepayment inserts the repayment and recomputes the parent loan inside
// one transaction, so two concurrent repayments cannot lose an update. The
// loan flips to repaid when the recomputed sum reaches totalRepayment.
func (r *loanRepository) ApplyRepayment(ctx context.Context, repayment *models.LoanRepayment, totalRepayment decimal.Decimal) (*models.Loan, error) {
	var updated models.Loan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(repayment).Error; err != nil {
			return err
		}

		var sum decimal.Decimal
		if err := tx.Model(&models.LoanRepayment{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("loan_id = ?", repayment.LoanID).
			Row().Scan(&sum); err != nil {
			return err
		}

		updates := map[string]interface{}{"amount_repaid": sum}
		if sum.GreaterThanOrEqual(totalRepayment) {
			now := time.Now()
			updates["status"] = models.LoanStatusRepaid
			updates["repaid_at"] = &now
		}

		if err := tx.Model(&models.Loan{}).
			Where("id = ?", repayment.LoanID).
			Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(&updated, repayment.LoanID).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
