package repositories

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// OfficerRepository defines collection officer repository interface
type OfficerRepository interface {
	Create(ctx context.Context, officer *models.CollectionOfficer) error
	GetByID(ctx context.Context, id uint) (*models.CollectionOfficer, error)
	GetByUserID(ctx context.Context, userID uint) (*models.CollectionOfficer, error)
	Update(ctx context.Context, officer *models.CollectionOfficer) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.CollectionOfficer, int64, error)
	Count(ctx context.Context) (int64, error)
}

// CommunityRepository defines community repository interface
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]*models.Community, error)
}

// CustomerQuery carries list filters for customer queries.
type CustomerQuery struct {
	Search string // matches name, customer code, phone, address
	Status string // active / inactive / empty for all
	Offset int
	Limit  int
}

// CustomerRepository defines customer repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByIDForOfficer(ctx context.Context, id, officerID uint) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	UpdateStatus(ctx context.Context, id uint, status string, missedDays int) error
	Delete(ctx context.Context, id uint) error
	ListByOfficer(ctx context.Context, officerID uint, q CustomerQuery) ([]*models.Customer, int64, error)
	ListAll(ctx context.Context, q CustomerQuery) ([]*models.Customer, int64, error)
	ListActive(ctx context.Context) ([]*models.Customer, error)
	Count(ctx context.Context) (int64, error)
	CountByOfficerAndPrefix(ctx context.Context, officerID uint, prefix string) (int64, error)
}

// ContributionRepository defines contribution repository interface
type ContributionRepository interface {
	// Record inserts the contribution and refreshes the owning customer's
	// last_contribution_date / missed_days in one transaction. A unique index
	// on (customer_id, business_day) makes the insert the atomic duplicate
	// guard under concurrent requests.
	Record(ctx context.Context, contribution *models.Contribution) error
	ExistsForBusinessDay(ctx context.Context, customerID uint, day time.Time) (bool, error)
	SumForOfficerOnBusinessDay(ctx context.Context, officerID uint, day time.Time) (decimal.Decimal, error)
	// SumApprovedForCustomer totals contributions whose business day is
	// covered by an approved submission of the owning officer. Pending and
	// flagged submissions never count toward reported savings.
	SumApprovedForCustomer(ctx context.Context, customerID uint) (decimal.Decimal, error)
	CountApprovedDaysForCustomer(ctx context.Context, customerID uint) (int64, error)
	ListForCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.Contribution, int64, error)
}

// SubmissionRepository defines daily submission repository interface
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.DailySubmission) error
	GetByID(ctx context.Context, id uint) (*models.DailySubmission, error)
	ExistsForBusinessDay(ctx context.Context, officerID uint, day time.Time) (bool, error)
	Update(ctx context.Context, submission *models.DailySubmission) error
	ListByOfficer(ctx context.Context, officerID uint, offset, limit int) ([]*models.DailySubmission, int64, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.DailySubmission, int64, error)
	Count(ctx context.Context) (int64, error)
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	CountOpenForCustomer(ctx context.Context, customerID uint) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]*models.Loan, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error)
	// ApplyRepayment inserts the repayment, recomputes the loan's
	// amount_repaid as the sum of all its repayments, and flips the status to
	// repaid when the sum reaches totalRepayment, all in one transaction so
	// concurrent repayments cannot lose updates.
	ApplyRepayment(ctx context.Context, repayment *models.LoanRepayment, totalRepayment decimal.Decimal) (*models.Loan, error)
}

// LedgerTransactionRepository defines ledger transaction repository interface
type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx *models.LedgerTransaction) error
	ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.LedgerTransaction, int64, error)
	ListByLoan(ctx context.Context, loanID uint) ([]*models.LedgerTransaction, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) error
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}

// SettingRepository defines system setting repository interface
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, updatedBy uint) error
}
