package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/businessday"

	"github.com/shopspring/decimal"
)

type loanFixture struct {
	svc           *LoanService
	loans         *mockLoanRepo
	customers     *mockCustomerRepo
	contributions *mockContributionRepo
	ledger        *mockLedgerRepo
	settings      *mockSettingRepo
	now           time.Time
}

func newLoanFixture() *loanFixture {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	customers := newMockCustomerRepo()
	contributions := newMockContributionRepo(customers)
	loans := newMockLoanRepo()
	ledger := &mockLedgerRepo{}
	settings := &mockSettingRepo{}
	notifier, _, _ := newTestNotifier()

	svc := NewLoanService(loans, customers, contributions, ledger, settings, notifier, businessday.FixedClock{T: now})
	return &loanFixture{
		svc:           svc,
		loans:         loans,
		customers:     customers,
		contributions: contributions,
		ledger:        ledger,
		settings:      settings,
		now:           now,
	}
}

// eligibleCustomer seeds a customer who passes every loan gate.
func (f *loanFixture) eligibleCustomer(officerID uint) *models.Customer {
	yesterday := f.now.AddDate(0, 0, -1)
	f.contributions.approvedDays = MinContributionDays
	return f.customers.add(&models.Customer{
		OfficerID:            officerID,
		FirstName:            "Kofi",
		LastName:             "Boateng",
		Status:               models.CustomerStatusActive,
		MaxMissedDays:        7,
		LastContributionDate: &yesterday,
	})
}

func TestAmortize(t *testing.T) {
	tests := []struct {
		name        string
		principal   string
		rate        string
		termMonths  int
		wantMonthly string
		wantTotal   string
	}{
		{"twelve percent over a year", "1200", "12", 12, "106.62", "1279.44"},
		{"single month", "1200", "12", 1, "1212", "1212"},
		{"zero rate divides evenly", "1200", "0", 12, "100", "1200"},
		{"zero rate with remainder", "1000", "0", 3, "333.33", "999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monthly, total := Amortize(
				decimal.RequireFromString(tt.principal),
				decimal.RequireFromString(tt.rate),
				tt.termMonths,
			)
			if !monthly.Equal(decimal.RequireFromString(tt.wantMonthly)) {
				t.Errorf("monthly = %s, want %s", monthly, tt.wantMonthly)
			}
			if !total.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", total, tt.wantTotal)
			}
		})
	}
}

func TestCheckEligibilityOrder(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(f *loanFixture) *models.Customer
		wantReason   string
		wantEligible bool
	}{
		{
			name: "inactive customer reported first",
			setup: func(f *loanFixture) *models.Customer {
				lapsed := f.now.AddDate(0, 0, -20)
				f.contributions.approvedDays = 0
				return f.customers.add(&models.Customer{
					Status:               models.CustomerStatusActive,
					MaxMissedDays:        7,
					LastContributionDate: &lapsed,
				})
			},
			wantReason: "inactive",
		},
		{
			name: "one day short of the history requirement",
			setup: func(f *loanFixture) *models.Customer {
				c := f.eligibleCustomer(7)
				f.contributions.approvedDays = MinContributionDays - 1
				return c
			},
			wantReason: "29 approved contribution days",
		},
		{
			name: "open loan blocks a second application",
			setup: func(f *loanFixture) *models.Customer {
				c := f.eligibleCustomer(7)
				f.loans.Create(context.Background(), &models.Loan{
					CustomerID: c.ID,
					Status:     models.LoanStatusDisbursed,
				})
				return c
			},
			wantReason: "open loan",
		},
		{
			name:         "all gates pass",
			setup:        func(f *loanFixture) *models.Customer { return f.eligibleCustomer(7) },
			wantEligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture()
			customer := tt.setup(f)

			err := f.svc.CheckEligibility(context.Background(), customer)
			if tt.wantEligible {
				if err != nil {
					t.Fatalf("CheckEligibility() = %v, want nil", err)
				}
				return
			}
			if !domain.IsEligibilityError(err) {
				t.Fatalf("CheckEligibility() = %v, want EligibilityError", err)
			}
			var elig *domain.EligibilityError
			errors.As(err, &elig)
			if !strings.Contains(elig.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to mention %q", elig.Reason, tt.wantReason)
			}
		})
	}
}

func TestApplyLoan(t *testing.T) {
	f := newLoanFixture()
	customer := f.eligibleCustomer(7)

	loan, err := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(1200),
		TermMonths: 12,
		Purpose:    "stock for market stall",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if loan.Status != models.LoanStatusPending {
		t.Errorf("Status = %s, want pending", loan.Status)
	}
	if !loan.AnnualRate.Equal(decimal.NewFromInt(models.DefaultAnnualRatePercent)) {
		t.Errorf("AnnualRate = %s, want default %d", loan.AnnualRate, models.DefaultAnnualRatePercent)
	}
	if loan.MonthlyPayment != nil {
		t.Error("MonthlyPayment computed before approval")
	}
}

func TestApplyLoanUsesConfiguredRate(t *testing.T) {
	f := newLoanFixture()
	f.settings.Set(context.Background(), models.SettingDefaultLoanRate, "15.5", 1)
	customer := f.eligibleCustomer(7)

	loan, err := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(500),
		TermMonths: 6,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !loan.AnnualRate.Equal(decimal.RequireFromString("15.5")) {
		t.Errorf("AnnualRate = %s, want 15.5", loan.AnnualRate)
	}
}

func TestApproveLoanComputesScheduleOnce(t *testing.T) {
	f := newLoanFixture()
	customer := f.eligibleCustomer(7)

	loan, err := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(1200),
		TermMonths: 12,
		AnnualRate: nil,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	// Pin the rate so the expected figures are stable.
	loan.AnnualRate = decimal.NewFromInt(12)
	f.loans.Update(context.Background(), loan)

	// Officers cannot decide.
	if _, err := f.svc.Approve(context.Background(), officerActor(7), loan.ID, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("officer Approve() error = %v, want ErrForbidden", err)
	}

	approved, err := f.svc.Approve(context.Background(), adminActor(), loan.ID, "good history")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if approved.Status != models.LoanStatusApproved {
		t.Errorf("Status = %s, want approved", approved.Status)
	}
	if approved.MonthlyPayment == nil || !approved.MonthlyPayment.Equal(decimal.RequireFromString("106.62")) {
		t.Errorf("MonthlyPayment = %v, want 106.62", approved.MonthlyPayment)
	}
	if approved.TotalRepayment == nil || !approved.TotalRepayment.Equal(decimal.RequireFromString("1279.44")) {
		t.Errorf("TotalRepayment = %v, want 1279.44", approved.TotalRepayment)
	}

	// Approving twice is an invalid transition; the schedule cannot change.
	if _, err := f.svc.Approve(context.Background(), adminActor(), loan.ID, ""); !errors.Is(err, domain.ErrInvalidLoanStatus) {
		t.Fatalf("re-Approve() error = %v, want ErrInvalidLoanStatus", err)
	}
}

func TestRejectLoan(t *testing.T) {
	f := newLoanFixture()
	customer := f.eligibleCustomer(7)

	loan, err := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(300),
		TermMonths: 3,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	rejected, err := f.svc.Reject(context.Background(), adminActor(), loan.ID, "insufficient history")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != models.LoanStatusRejected {
		t.Errorf("Status = %s, want rejected", rejected.Status)
	}
	if rejected.MonthlyPayment != nil {
		t.Error("rejected loan has a repayment schedule")
	}

	// A rejected loan cannot be approved afterwards.
	if _, err := f.svc.Approve(context.Background(), adminActor(), loan.ID, ""); !errors.Is(err, domain.ErrInvalidLoanStatus) {
		t.Fatalf("Approve() after reject error = %v, want ErrInvalidLoanStatus", err)
	}
}

func TestDisburseLoan(t *testing.T) {
	f := newLoanFixture()
	customer := f.eligibleCustomer(7)

	loan, _ := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(1200),
		TermMonths: 12,
	})

	// Disbursing a pending loan is an invalid transition.
	if _, err := f.svc.Disburse(context.Background(), adminActor(), loan.ID); !errors.Is(err, domain.ErrInvalidLoanStatus) {
		t.Fatalf("Disburse() pending error = %v, want ErrInvalidLoanStatus", err)
	}

	if _, err := f.svc.Approve(context.Background(), adminActor(), loan.ID, ""); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	disbursed, err := f.svc.Disburse(context.Background(), adminActor(), loan.ID)
	if err != nil {
		t.Fatalf("Disburse() error = %v", err)
	}
	if disbursed.Status != models.LoanStatusDisbursed {
		t.Errorf("Status = %s, want disbursed", disbursed.Status)
	}
	if disbursed.DisbursedAt == nil {
		t.Error("DisbursedAt not set")
	}

	if len(f.ledger.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(f.ledger.entries))
	}
	entry := f.ledger.entries[0]
	if entry.TransactionType != models.TxTypeLoanDisbursement || !entry.Amount.Equal(loan.Principal) {
		t.Errorf("ledger entry = %s %s, want %s %s", entry.TransactionType, entry.Amount, models.TxTypeLoanDisbursement, loan.Principal)
	}
}

func TestRecordRepaymentLifecycle(t *testing.T) {
	f := newLoanFixture()
	customer := f.eligibleCustomer(7)

	loan, _ := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(1200),
		TermMonths: 12,
	})
	loan.AnnualRate = decimal.NewFromInt(12)
	f.loans.Update(context.Background(), loan)

	// Repaying before disbursement is an invalid transition.
	if _, err := f.svc.RecordRepayment(context.Background(), adminActor(), loan.ID, decimal.NewFromInt(100)); !errors.Is(err, domain.ErrInvalidLoanStatus) {
		t.Fatalf("RecordRepayment() pending error = %v, want ErrInvalidLoanStatus", err)
	}

	if _, err := f.svc.Approve(context.Background(), adminActor(), loan.ID, ""); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := f.svc.Disburse(context.Background(), adminActor(), loan.ID); err != nil {
		t.Fatalf("Disburse() error = %v", err)
	}

	// Total repayment is 1279.44. Overpaying in one go is rejected.
	if _, err := f.svc.RecordRepayment(context.Background(), adminActor(), loan.ID, decimal.RequireFromString("1279.45")); !errors.Is(err, domain.ErrOverpayment) {
		t.Fatalf("overpayment error = %v, want ErrOverpayment", err)
	}

	partial, err := f.svc.RecordRepayment(context.Background(), adminActor(), loan.ID, decimal.RequireFromString("1000"))
	if err != nil {
		t.Fatalf("partial RecordRepayment() error = %v", err)
	}
	if partial.Status != models.LoanStatusDisbursed {
		t.Errorf("Status after partial = %s, want disbursed", partial.Status)
	}
	if !partial.AmountRepaid.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("AmountRepaid = %s, want 1000", partial.AmountRepaid)
	}
	if !partial.RemainingBalance().Equal(decimal.RequireFromString("279.44")) {
		t.Errorf("RemainingBalance = %s, want 279.44", partial.RemainingBalance())
	}

	// Exceeding the remaining balance is rejected.
	if _, err := f.svc.RecordRepayment(context.Background(), adminActor(), loan.ID, decimal.RequireFromString("279.45")); !errors.Is(err, domain.ErrOverpayment) {
		t.Fatalf("second overpayment error = %v, want ErrOverpayment", err)
	}

	final, err := f.svc.RecordRepayment(context.Background(), adminActor(), loan.ID, decimal.RequireFromString("279.44"))
	if err != nil {
		t.Fatalf("final RecordRepayment() error = %v", err)
	}
	if final.Status != models.LoanStatusRepaid {
		t.Errorf("Status after full repayment = %s, want repaid", final.Status)
	}
	if final.RepaidAt == nil {
		t.Error("RepaidAt not set")
	}
	if !final.RemainingBalance().IsZero() {
		t.Errorf("RemainingBalance = %s, want 0", final.RemainingBalance())
	}

	// A repaid loan takes no further repayments.
	if _, err := f.svc.RecordRepayment(context.Background(), adminActor(), loan.ID, decimal.NewFromInt(1)); !errors.Is(err, domain.ErrInvalidLoanStatus) {
		t.Fatalf("repayment on repaid loan error = %v, want ErrInvalidLoanStatus", err)
	}

	// Disbursement plus two repayments in the ledger.
	if len(f.ledger.entries) != 3 {
		t.Errorf("ledger entries = %d, want 3", len(f.ledger.entries))
	}
}

func TestProgressPercent(t *testing.T) {
	total := decimal.RequireFromString("1279.44")
	loan := &models.Loan{TotalRepayment: &total, AmountRepaid: decimal.RequireFromString("319.86")}

	if got := ProgressPercent(loan); !got.Equal(decimal.RequireFromString("25")) {
		t.Errorf("ProgressPercent = %s, want 25", got)
	}
	if got := ProgressPercent(&models.Loan{}); !got.IsZero() {
		t.Errorf("ProgressPercent without schedule = %s, want 0", got)
	}
}

func TestLoanOfficerScope(t *testing.T) {
	f := newLoanFixture()
	customer := f.eligibleCustomer(7)

	loan, _ := f.svc.Apply(context.Background(), officerActor(7), ApplyLoanInput{
		CustomerID: customer.ID,
		Principal:  decimal.NewFromInt(600),
		TermMonths: 6,
	})
	loan.Customer = customer
	f.loans.Update(context.Background(), loan)

	if _, err := f.svc.GetDetail(context.Background(), officerActor(7), loan.ID); err != nil {
		t.Errorf("owner GetDetail() error = %v", err)
	}
	if _, err := f.svc.GetDetail(context.Background(), officerActor(99), loan.ID); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Errorf("foreign officer GetDetail() error = %v, want ErrLoanNotFound", err)
	}
}
