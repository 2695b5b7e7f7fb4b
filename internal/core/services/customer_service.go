package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/businessday"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// customerCodeRetries bounds the retry loop when two officers race for the
// same code prefix.
const customerCodeRetries = 3

// CustomerService handles customer management
type CustomerService struct {
	customerRepo     repositories.CustomerRepository
	contributionRepo repositories.ContributionRepository
	clock            businessday.Clock
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repositories.CustomerRepository,
	contributionRepo repositories.ContributionRepository,
	clock businessday.Clock,
) *CustomerService {
	if clock == nil {
		clock = businessday.SystemClock{}
	}
	return &CustomerService{
		customerRepo:     customerRepo,
		contributionRepo: contributionRepo,
		clock:            clock,
	}
}

// CreateCustomerInput for enrolling a customer
type CreateCustomerInput struct {
	OfficerID               uint            `json:"officer_id"` // admins only; officers enrol into their own book
	FirstName               string          `json:"first_name" validate:"required"`
	LastName                string          `json:"last_name" validate:"required"`
	PhoneNumber             string          `json:"phone_number"`
	Address                 string          `json:"address"`
	Town                    string          `json:"town"`
	DailyContributionAmount decimal.Decimal `json:"daily_contribution_amount" validate:"required"`
	MaxMissedDays           int             `json:"max_missed_days"`
}

// UpdateCustomerInput for editing a customer. The customer code is immutable
// and deliberately absent here.
type UpdateCustomerInput struct {
	FirstName               *string          `json:"first_name"`
	LastName                *string          `json:"last_name"`
	PhoneNumber             *string          `json:"phone_number"`
	Address                 *string          `json:"address"`
	Town                    *string          `json:"town"`
	DailyContributionAmount *decimal.Decimal `json:"daily_contribution_amount"`
	MaxMissedDays           *int             `json:"max_missed_days"`
}

// Create enrols a new customer and assigns the generated customer code
func (s *CustomerService) Create(ctx context.Context, actor domain.Actor, input CreateCustomerInput) (*models.Customer, error) {
	if !input.DailyContributionAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	officerID := actor.OfficerID
	if actor.IsAdmin() {
		officerID = input.OfficerID
	}
	if officerID == 0 {
		return nil, domain.ErrOfficerNotFound
	}

	maxMissed := input.MaxMissedDays
	if maxMissed <= 0 {
		maxMissed = models.DefaultMaxMissedDays
	}

	customer := &models.Customer{
		OfficerID:               officerID,
		FirstName:               strings.TrimSpace(input.FirstName),
		LastName:                strings.TrimSpace(input.LastName),
		PhoneNumber:             input.PhoneNumber,
		Address:                 input.Address,
		Town:                    input.Town,
		DailyContributionAmount: input.DailyContributionAmount,
		Status:                  models.CustomerStatusActive,
		MaxMissedDays:           maxMissed,
	}

	prefix := codePrefix(input.Town, input.Address)

	// The code carries a per-officer sequence; retry on the unique index when
	// two enrolments race for the same number.
	var err error
	for attempt := 0; attempt < customerCodeRetries; attempt++ {
		var seq int64
		seq, err = s.customerRepo.CountByOfficerAndPrefix(ctx, officerID, prefix)
		if err != nil {
			return nil, err
		}

		customer.CustomerCode = fmt.Sprintf("%s%03d", prefix, seq+1+int64(attempt))
		err = s.customerRepo.Create(ctx, customer)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	if err != nil {
		return nil, domain.ErrDuplicateEntry
	}

	logrus.WithFields(logrus.Fields{
		"customer_id":   customer.ID,
		"customer_code": customer.CustomerCode,
		"officer_id":    officerID,
	}).Info("customer enrolled")

	return customer, nil
}

// GetDetail returns a customer with derived status and approved savings total
func (s *CustomerService) GetDetail(ctx context.Context, actor domain.Actor, id uint) (*models.CustomerResponse, error) {
	customer, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	savings, err := s.contributionRepo.SumApprovedForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	status, missed := DeriveStatus(customer, businessday.For(s.clock.Now()))
	customer.Status = status
	customer.MissedDays = missed

	resp := customer.ToResponse()
	resp.TotalSavings = savings
	return resp, nil
}

// Update edits a customer's mutable fields
func (s *CustomerService) Update(ctx context.Context, actor domain.Actor, id uint, input UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		customer.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		customer.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		customer.PhoneNumber = *input.PhoneNumber
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Town != nil {
		customer.Town = *input.Town
	}
	if input.DailyContributionAmount != nil {
		if !input.DailyContributionAmount.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		customer.DailyContributionAmount = *input.DailyContributionAmount
	}
	if input.MaxMissedDays != nil && *input.MaxMissedDays > 0 {
		customer.MaxMissedDays = *input.MaxMissedDays
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete soft-deletes a customer. Admin only.
func (s *CustomerService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if _, err := s.customerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCustomerNotFound
		}
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// List returns customers visible to the actor, with derived statuses
func (s *CustomerService) List(ctx context.Context, actor domain.Actor, q repositories.CustomerQuery) ([]*models.Customer, int64, error) {
	var (
		customers []*models.Customer
		total     int64
		err       error
	)
	if actor.IsAdmin() {
		customers, total, err = s.customerRepo.ListAll(ctx, q)
	} else {
		customers, total, err = s.customerRepo.ListByOfficer(ctx, actor.OfficerID, q)
	}
	if err != nil {
		return nil, 0, err
	}

	today := businessday.For(s.clock.Now())
	for _, c := range customers {
		c.Status, c.MissedDays = DeriveStatus(c, today)
	}
	return customers, total, nil
}

// Sweep persists derived inactivity for every active customer. Run daily just
// after the business-day cutoff.
func (s *CustomerService) Sweep(ctx context.Context) error {
	customers, err := s.customerRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	today := businessday.For(s.clock.Now())
	flipped := 0
	for _, c := range customers {
		status, missed := DeriveStatus(c, today)
		if status == c.Status && missed == c.MissedDays {
			continue
		}
		if err := s.customerRepo.UpdateStatus(ctx, c.ID, status, missed); err != nil {
			logrus.WithError(err).WithField("customer_id", c.ID).Warn("status sweep update failed")
			continue
		}
		if status == models.CustomerStatusInactive {
			flipped++
		}
	}

	logrus.WithFields(logrus.Fields{
		"checked":         len(customers),
		"marked_inactive": flipped,
	}).Info("customer status sweep finished")
	return nil
}

// DeriveStatus computes a customer's missed-day count and status from the
// last contribution date, without touching storage. The count is the days
// elapsed since the last contribution's business day; a customer is inactive
// once that exceeds the per-customer threshold, and active customers always
// report zero.
func DeriveStatus(c *models.Customer, today time.Time) (string, int) {
	ref := businessday.For(c.CreatedAt)
	if c.LastContributionDate != nil {
		ref = *c.LastContributionDate
	}

	elapsed := int(today.Sub(ref).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}

	if elapsed > c.InactivityThreshold() {
		return models.CustomerStatusInactive, elapsed
	}
	return models.CustomerStatusActive, 0
}

// get fetches a customer with officer scoping applied
func (s *CustomerService) get(ctx context.Context, actor domain.Actor, id uint) (*models.Customer, error) {
	var (
		customer *models.Customer
		err      error
	)
	if actor.IsAdmin() {
		customer, err = s.customerRepo.GetByID(ctx, id)
	} else {
		customer, err = s.customerRepo.GetByIDForOfficer(ctx, id, actor.OfficerID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// codePrefix derives the two-letter customer code prefix from the town,
// falling back to the address, then to "CU".
func codePrefix(town, address string) string {
	for _, source := range []string{town, address} {
		var letters []rune
		for _, r := range source {
			if unicode.IsLetter(r) {
				letters = append(letters, unicode.ToUpper(r))
				if len(letters) == 2 {
					return string(letters)
				}
			}
		}
	}
	return "CU"
}
