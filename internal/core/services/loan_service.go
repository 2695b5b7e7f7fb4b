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

// MinContributionDays is how many approved contribution days a customer needs
// before a loan application is accepted.
const MinContributionDays = 30

// LoanService handles the loan lifecycle from application to final repayment
type LoanService struct {
	loanRepo         repositories.LoanRepository
	customerRepo     repositories.CustomerRepository
	contributionRepo repositories.ContributionRepository
	ledgerRepo       repositories.LedgerTransactionRepository
	settingRepo      repositories.SettingRepository
	notifier         *NotificationService
	clock            businessday.Clock
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	customerRepo repositories.CustomerRepository,
	contributionRepo repositories.ContributionRepository,
	ledgerRepo repositories.LedgerTransactionRepository,
	settingRepo repositories.SettingRepository,
	notifier *NotificationService,
	clock businessday.Clock,
) *LoanService {
	if clock == nil {
		clock = businessday.SystemClock{}
	}
	return &LoanService{
		loanRepo:         loanRepo,
		customerRepo:     customerRepo,
		contributionRepo: contributionRepo,
		ledgerRepo:       ledgerRepo,
		settingRepo:      settingRepo,
		notifier:         notifier,
		clock:            clock,
	}
}

// ApplyLoanInput for a loan application
type ApplyLoanInput struct {
	CustomerID uint             `json:"customer_id" validate:"required"`
	Principal  decimal.Decimal  `json:"principal" validate:"required"`
	Purpose    string           `json:"purpose"`
	TermMonths int              `json:"term_months" validate:"required,min=1"`
	AnnualRate *decimal.Decimal `json:"annual_rate"` // admins may override; default from settings
}

// LoanDetail is a loan with its derived repayment figures
type LoanDetail struct {
	*models.Loan
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	ProgressPercent  decimal.Decimal `json:"progress_percent"`
	IsOverdue        bool            `json:"is_overdue"`
}

// CheckEligibility runs the loan gate checks in order and returns the first
// failure: the customer must be active, must have at least MinContributionDays
// approved contribution days, and must not already hold an open loan.
func (s *LoanService) CheckEligibility(ctx context.Context, customer *models.Customer) error {
	status, _ := DeriveStatus(customer, businessday.For(s.clock.Now()))
	if status != models.CustomerStatusActive {
		return domain.NewEligibilityError("customer is inactive")
	}

	days, err := s.contributionRepo.CountApprovedDaysForCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	if days < MinContributionDays {
		return domain.NewEligibilityError("customer has %d approved contribution days, needs %d", days, MinContributionDays)
	}

	open, err := s.loanRepo.CountOpenForCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.NewEligibilityError("customer already has an open loan")
	}

	return nil
}

// Apply files a loan application for an eligible customer
func (s *LoanService) Apply(ctx context.Context, actor domain.Actor, input ApplyLoanInput) (*models.Loan, error) {
	if !input.Principal.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if input.TermMonths < 1 {
		return nil, domain.ErrInvalidInput
	}

	customer, err := s.resolveCustomer(ctx, actor, input.CustomerID)
	if err != nil {
		return nil, err
	}

	if err := s.CheckEligibility(ctx, customer); err != nil {
		return nil, err
	}

	rate := s.defaultAnnualRate(ctx)
	if input.AnnualRate != nil && actor.IsAdmin() {
		if input.AnnualRate.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		rate = *input.AnnualRate
	}

	loan := &models.Loan{
		CustomerID:  customer.ID,
		RequestedBy: actor.UserID,
		Principal:   input.Principal,
		Purpose:     input.Purpose,
		TermMonths:  input.TermMonths,
		AnnualRate:  rate,
		Status:      models.LoanStatusPending,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"loan_id":     loan.ID,
		"customer_id": customer.ID,
		"principal":   loan.Principal.String(),
		"term_months": loan.TermMonths,
	}).Info("loan application filed")

	s.notifier.NotifyAdmins(ctx, models.NotifyTypeLoanApplication,
		"New loan application",
		fmt.Sprintf("%s applied for %s over %d months", customer.FullName(), loan.Principal.StringFixed(2), loan.TermMonths),
		&loan.ID)

	return loan, nil
}

// Approve moves a pending loan to approved and computes the repayment
// schedule. The schedule is computed exactly once; re-approving is rejected
// before this point so the figures can never silently change.
func (s *LoanService) Approve(ctx context.Context, actor domain.Actor, id uint, notes string) (*models.Loan, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, domain.ErrInvalidLoanStatus
	}

	if loan.MonthlyPayment == nil {
		monthly, total := Amortize(loan.Principal, loan.AnnualRate, loan.TermMonths)
		loan.MonthlyPayment = &monthly
		loan.TotalRepayment = &total
	}

	now := s.clock.Now()
	loan.Status = models.LoanStatusApproved
	loan.ApprovedBy = &actor.UserID
	loan.DecisionAt = &now
	loan.DecisionNotes = notes

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"loan_id":         loan.ID,
		"monthly_payment": loan.MonthlyPayment.String(),
		"total_repayment": loan.TotalRepayment.String(),
	}).Info("loan approved")

	s.notifyOfficer(ctx, loan, models.NotifyTypeLoanDecision,
		"Loan approved",
		fmt.Sprintf("Loan #%d approved: %s monthly over %d months", loan.ID, loan.MonthlyPayment.StringFixed(2), loan.TermMonths))

	return loan, nil
}

// Reject moves a pending loan to rejected
func (s *LoanService) Reject(ctx context.Context, actor domain.Actor, id uint, notes string) (*models.Loan, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, domain.ErrInvalidLoanStatus
	}

	now := s.clock.Now()
	loan.Status = models.LoanStatusRejected
	loan.ApprovedBy = &actor.UserID
	loan.DecisionAt = &now
	loan.DecisionNotes = notes

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	logrus.WithField("loan_id", loan.ID).Info("loan rejected")

	s.notifyOfficer(ctx, loan, models.NotifyTypeLoanDecision,
		"Loan rejected",
		fmt.Sprintf("Loan #%d was rejected", loan.ID))

	return loan, nil
}

// Disburse pays out an approved loan and writes the ledger entry
func (s *LoanService) Disburse(ctx context.Context, actor domain.Actor, id uint) (*models.Loan, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusApproved {
		return nil, domain.ErrInvalidLoanStatus
	}

	now := s.clock.Now()
	loan.Status = models.LoanStatusDisbursed
	loan.DisbursedAt = &now

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	entry := &models.LedgerTransaction{
		CustomerID:      loan.CustomerID,
		LoanID:          &loan.ID,
		TransactionType: models.TxTypeLoanDisbursement,
		Amount:          loan.Principal,
		Description:     fmt.Sprintf("Disbursement of loan #%d", loan.ID),
		PerformedBy:     actor.UserID,
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("loan_id", loan.ID).Error("failed to write disbursement ledger entry")
	}

	logrus.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"principal": loan.Principal.String(),
	}).Info("loan disbursed")

	s.notifyOfficer(ctx, loan, models.NotifyTypeLoanDisbursed,
		"Loan disbursed",
		fmt.Sprintf("Loan #%d disbursed: %s", loan.ID, loan.Principal.StringFixed(2)))

	return loan, nil
}

// RecordRepayment books a repayment against a disbursed loan. The repository
// recomputes the running total and flips the loan to repaid in the same
// transaction when the balance reaches zero.
func (s *LoanService) RecordRepayment(ctx context.Context, actor domain.Actor, loanID uint, amount decimal.Decimal) (*models.Loan, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	loan, err := s.getLoanScoped(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusDisbursed {
		return nil, domain.ErrInvalidLoanStatus
	}
	if amount.GreaterThan(loan.RemainingBalance()) {
		return nil, domain.ErrOverpayment
	}

	repayment := &models.LoanRepayment{
		LoanID:       loan.ID,
		Amount:       amount,
		RecordedAt:   s.clock.Now(),
		RecordedByID: actor.UserID,
	}

	updated, err := s.loanRepo.ApplyRepayment(ctx, repayment, *loan.TotalRepayment)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerTransaction{
		CustomerID:      loan.CustomerID,
		LoanID:          &loan.ID,
		TransactionType: models.TxTypeLoanRepayment,
		Amount:          amount,
		Description:     fmt.Sprintf("Repayment on loan #%d", loan.ID),
		PerformedBy:     actor.UserID,
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("loan_id", loan.ID).Error("failed to write repayment ledger entry")
	}

	logrus.WithFields(logrus.Fields{
		"loan_id":       loan.ID,
		"amount":        amount.String(),
		"amount_repaid": updated.AmountRepaid.String(),
		"status":        updated.Status,
	}).Info("loan repayment recorded")

	if updated.Status == models.LoanStatusRepaid {
		s.notifyOfficer(ctx, loan, models.NotifyTypeLoanDecision,
			"Loan fully repaid",
			fmt.Sprintf("Loan #%d is fully repaid", loan.ID))
	}

	return updated, nil
}

// GetDetail returns one loan with derived balance, progress and overdue flag
func (s *LoanService) GetDetail(ctx context.Context, actor domain.Actor, id uint) (*LoanDetail, error) {
	loan, err := s.getLoanScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &LoanDetail{
		Loan:             loan,
		RemainingBalance: loan.RemainingBalance(),
		ProgressPercent:  ProgressPercent(loan),
		IsOverdue:        s.isOverdue(loan),
	}
	return detail, nil
}

// ListByCustomer lists a customer's loans, scoped to the owning officer
func (s *LoanService) ListByCustomer(ctx context.Context, actor domain.Actor, customerID uint) ([]*models.Loan, error) {
	customer, err := s.resolveCustomer(ctx, actor, customerID)
	if err != nil {
		return nil, err
	}
	return s.loanRepo.ListByCustomer(ctx, customer.ID)
}

// ListByStatus lists loans in a given state for the admin queue
func (s *LoanService) ListByStatus(ctx context.Context, actor domain.Actor, status string, offset, limit int) ([]*models.Loan, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.loanRepo.ListByStatus(ctx, status, offset, limit)
}

// Amortize computes the fixed monthly payment and total repayment for a
// principal at an annual percentage rate over a term in months, using the
// standard annuity formula. A zero rate degrades to straight division.
func Amortize(principal, annualRatePercent decimal.Decimal, termMonths int) (monthly, total decimal.Decimal) {
	n := decimal.NewFromInt(int64(termMonths))

	if annualRatePercent.IsZero() {
		monthly = principal.Div(n).Round(2)
		total = monthly.Mul(n).Round(2)
		return monthly, total
	}

	// r is the monthly rate: annual percent / 100 / 12
	r := annualRatePercent.Div(decimal.NewFromInt(1200))
	factor := decimal.NewFromInt(1).Add(r).Pow(n)

	monthly = principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))).Round(2)
	total = monthly.Mul(n).Round(2)
	return monthly, total
}

// ProgressPercent returns how much of the total repayment has been paid, as a
// percentage rounded to two places. Zero before the schedule exists.
func ProgressPercent(loan *models.Loan) decimal.Decimal {
	if loan.TotalRepayment == nil || loan.TotalRepayment.IsZero() {
		return decimal.Zero
	}
	return loan.AmountRepaid.Div(*loan.TotalRepayment).Mul(decimal.NewFromInt(100)).Round(2)
}

// isOverdue reports whether a disbursed loan has outlived its term unpaid
func (s *LoanService) isOverdue(loan *models.Loan) bool {
	if loan.Status != models.LoanStatusDisbursed || loan.DisbursedAt == nil {
		return false
	}
	due := loan.DisbursedAt.AddDate(0, loan.TermMonths, 0)
	return s.clock.Now().After(due)
}

// notifyOfficer notifies the user account behind the loan's owning officer
func (s *LoanService) notifyOfficer(ctx context.Context, loan *models.Loan, notifyType, title, message string) {
	if loan.Customer == nil || loan.Customer.Officer == nil {
		return
	}
	s.notifier.NotifyUser(ctx, loan.Customer.Officer.UserID, notifyType, title, message, &loan.ID)
}

// defaultAnnualRate reads the admin-tunable rate, falling back to the default
func (s *LoanService) defaultAnnualRate(ctx context.Context) decimal.Decimal {
	fallback := decimal.NewFromInt(models.DefaultAnnualRatePercent)
	if s.settingRepo == nil {
		return fallback
	}
	raw, err := s.settingRepo.Get(ctx, models.SettingDefaultLoanRate)
	if err != nil {
		return fallback
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return fallback
	}
	return rate
}

// getLoan fetches a loan without scoping (admin paths)
func (s *LoanService) getLoan(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// getLoanScoped fetches a loan and hides it from officers who do not own the
// customer.
func (s *LoanService) getLoanScoped(ctx context.Context, actor domain.Actor, id uint) (*models.Loan, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if loan.Customer == nil || loan.Customer.OfficerID != actor.OfficerID {
			return nil, domain.ErrLoanNotFound
		}
	}
	return loan, nil
}

// resolveCustomer fetches the customer with officer scoping applied
func (s *LoanService) resolveCustomer(ctx context.Context, actor domain.Actor, customerID uint) (*models.Customer, error) {
	var (
		customer *models.Customer
		err      error
	)
	if actor.IsAdmin() {
		customer, err = s.customerRepo.GetByID(ctx, customerID)
	} else {
		customer, err = s.customerRepo.GetByIDForOfficer(ctx, customerID, actor.OfficerID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}
