package repositories

import (
	"context"

	"susu-collect/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ledgerTransactionRepository implements LedgerTransactionRepository interface
type ledgerTransactionRepository struct {
	db *gorm.DB
}

// NewLedgerTransactionRepository creates a new ledger transaction repository
func NewLedgerTransactionRepository(db *gorm.DB) LedgerTransactionRepository {
	return &ledgerTransactionRepository{db: db}
}

// Create creates a new ledger transaction
func (r *ledgerTransactionRepository) Create(ctx context.Context, tx *models.LedgerTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListByCustomer lists a customer's ledger transactions, newest first
func (r *ledgerTransactionRepository) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.LedgerTransaction, int64, error) {
	var transactions []*models.LedgerTransaction
	var total int64

	r.db.WithContext(ctx).Model(&models.LedgerTransaction{}).Where("customer_id = ?", customerID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error

	return transactions, total, err
}

// ListByLoan lists a loan's ledger transactions, newest first
func (r *ledgerTransactionRepository) ListByLoan(ctx context.Context, loanID uint) ([]*models.LedgerTransaction, error) {
	var transactions []*models.LedgerTransaction
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("loan_id = ?", loanID).
		Order("created_at DESC").
		Find(&transactions).Error
	return transactions, err
}
