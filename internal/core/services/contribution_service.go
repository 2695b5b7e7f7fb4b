package services

import (
	"context"
	"errors"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/businessday"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultContributionCeiling caps a single contribution when no system
// setting overrides it.
var DefaultContributionCeiling = decimal.NewFromInt(10000)

// ContributionService handles daily contribution collection
type ContributionService struct {
	contributionRepo repositories.ContributionRepository
	customerRepo     repositories.CustomerRepository
	settingRepo      repositories.SettingRepository
	clock            businessday.Clock
}

// NewContributionService creates a new contribution service
func NewContributionService(
	contributionRepo repositories.ContributionRepository,
	customerRepo repositories.CustomerRepository,
	settingRepo repositories.SettingRepository,
	clock businessday.Clock,
) *ContributionService {
	if clock == nil {
		clock = businessday.SystemClock{}
	}
	return &ContributionService{
		contributionRepo: contributionRepo,
		customerRepo:     customerRepo,
		settingRepo:      settingRepo,
		clock:            clock,
	}
}

// RecordContributionInput for recording a collection visit
type RecordContributionInput struct {
	CustomerID uint            `json:"customer_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Notes      string          `json:"notes"`
}

// Record books one contribution against the current business day. The window
// runs 6 AM to 6 AM: a collection at 5:59 AM still belongs to yesterday's
// cash cycle. One contribution per customer per window; the composite unique
// index backs this up under concurrent requests.
func (s *ContributionService) Record(ctx context.Context, actor domain.Actor, input RecordContributionInput) (*models.Contribution, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Amount.GreaterThan(s.contributionCeiling(ctx)) {
		return nil, domain.ErrAmountTooLarge
	}

	customer, err := s.resolveCustomer(ctx, actor, input.CustomerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	day := businessday.For(now)

	exists, err := s.contributionRepo.ExistsForBusinessDay(ctx, customer.ID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateContribution
	}

	contribution := &models.Contribution{
		CustomerID:   customer.ID,
		BusinessDay:  day,
		Amount:       input.Amount,
		RecordedAt:   now,
		RecordedByID: actor.UserID,
		Notes:        input.Notes,
	}

	if err := s.contributionRepo.Record(ctx, contribution); err != nil {
		// A concurrent insert for the same window loses the race here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateContribution
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"customer_id":  customer.ID,
		"business_day": day.Format("2006-01-02"),
		"amount":       input.Amount.String(),
		"recorded_by":  actor.UserID,
	}).Info("contribution recorded")

	return contribution, nil
}

// ListForCustomer returns a customer's contribution history, scoped to the
// requesting officer.
func (s *ContributionService) ListForCustomer(ctx context.Context, actor domain.Actor, customerID uint, offset, limit int) ([]*models.Contribution, int64, error) {
	customer, err := s.resolveCustomer(ctx, actor, customerID)
	if err != nil {
		return nil, 0, err
	}
	return s.contributionRepo.ListForCustomer(ctx, customer.ID, offset, limit)
}

// ExpectedTotalToday returns the sum an officer's submission should match for
// the current business day.
func (s *ContributionService) ExpectedTotalToday(ctx context.Context, officerID uint) (decimal.Decimal, error) {
	day := businessday.For(s.clock.Now())
	return s.contributionRepo.SumForOfficerOnBusinessDay(ctx, officerID, day)
}

// resolveCustomer fetches the customer, restricted to the officer's own book
// unless the actor is an admin.
func (s *ContributionService) resolveCustomer(ctx context.Context, actor domain.Actor, customerID uint) (*models.Customer, error) {
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

// contributionCeiling reads the admin-tunable ceiling, falling back to the
// default on any miss.
func (s *ContributionService) contributionCeiling(ctx context.Context) decimal.Decimal {
	if s.settingRepo == nil {
		return DefaultContributionCeiling
	}
	raw, err := s.settingRepo.Get(ctx, models.SettingContributionCeiling)
	if err != nil {
		return DefaultContributionCeiling
	}
	ceiling, err := decimal.NewFromString(raw)
	if err != nil || !ceiling.IsPositive() {
		return DefaultContributionCeiling
	}
	return ceiling
}
