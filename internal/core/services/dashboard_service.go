package services

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/businessday"

	"github.com/shopspring/decimal"
)

// DashboardService aggregates the figures behind the admin and officer
// landing screens.
type DashboardService struct {
	customerRepo     repositories.CustomerRepository
	officerRepo      repositories.OfficerRepository
	contributionRepo repositories.ContributionRepository
	submissionRepo   repositories.SubmissionRepository
	loanRepo         repositories.LoanRepository
	clock            businessday.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	customerRepo repositories.CustomerRepository,
	officerRepo repositories.OfficerRepository,
	contributionRepo repositories.ContributionRepository,
	submissionRepo repositories.SubmissionRepository,
	loanRepo repositories.LoanRepository,
	clock businessday.Clock,
) *DashboardService {
	if clock == nil {
		clock = businessday.SystemClock{}
	}
	return &DashboardService{
		customerRepo:     customerRepo,
		officerRepo:      officerRepo,
		contributionRepo: contributionRepo,
		submissionRepo:   submissionRepo,
		loanRepo:         loanRepo,
		clock:            clock,
	}
}

// AdminDashboard summarises the whole operation
type AdminDashboard struct {
	TotalCustomers     int64 `json:"total_customers"`
	TotalOfficers      int64 `json:"total_officers"`
	TotalSubmissions   int64 `json:"total_submissions"`
	FlaggedSubmissions int64 `json:"flagged_submissions"`
	PendingLoans       int64 `json:"pending_loans"`
	DisbursedLoans     int64 `json:"disbursed_loans"`
}

// OfficerDashboard summarises one officer's current business day
type OfficerDashboard struct {
	BusinessDay    time.Time       `json:"business_day"`
	CustomerCount  int64           `json:"customer_count"`
	CollectedToday decimal.Decimal `json:"collected_today"`
	SubmittedToday bool            `json:"submitted_today"`
}

// ForAdmin builds the admin overview. Admin only.
func (s *DashboardService) ForAdmin(ctx context.Context, actor domain.Actor) (*AdminDashboard, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	dashboard := &AdminDashboard{}

	var err error
	if dashboard.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.TotalOfficers, err = s.officerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.TotalSubmissions, err = s.submissionRepo.Count(ctx); err != nil {
		return nil, err
	}
	if _, dashboard.FlaggedSubmissions, err = s.submissionRepo.ListByStatus(ctx, models.SubmissionStatusFlagged, 0, 1); err != nil {
		return nil, err
	}
	if dashboard.PendingLoans, err = s.loanRepo.CountByStatus(ctx, models.LoanStatusPending); err != nil {
		return nil, err
	}
	if dashboard.DisbursedLoans, err = s.loanRepo.CountByStatus(ctx, models.LoanStatusDisbursed); err != nil {
		return nil, err
	}

	return dashboard, nil
}

// ForOfficer builds the calling officer's current-day view
func (s *DashboardService) ForOfficer(ctx context.Context, actor domain.Actor) (*OfficerDashboard, error) {
	if actor.OfficerID == 0 {
		return nil, domain.ErrOfficerNotFound
	}

	day := businessday.For(s.clock.Now())
	dashboard := &OfficerDashboard{BusinessDay: day}

	var err error
	if _, dashboard.CustomerCount, err = s.customerRepo.ListByOfficer(ctx, actor.OfficerID, repositories.CustomerQuery{Limit: 1}); err != nil {
		return nil, err
	}
	if dashboard.CollectedToday, err = s.contributionRepo.SumForOfficerOnBusinessDay(ctx, actor.OfficerID, day); err != nil {
		return nil, err
	}
	if dashboard.SubmittedToday, err = s.submissionRepo.ExistsForBusinessDay(ctx, actor.OfficerID, day); err != nil {
		return nil, err
	}

	return dashboard, nil
}
