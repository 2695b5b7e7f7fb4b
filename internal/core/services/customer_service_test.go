package services

import (
	"context"
	"testing"
	"time"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/pkg/businessday"

	"github.com/shopspring/decimal"
)

func newCustomerFixture(now time.Time) (*CustomerService, *mockCustomerRepo) {
	customers := newMockCustomerRepo()
	contributions := newMockContributionRepo(customers)
	svc := NewCustomerService(customers, contributions, businessday.FixedClock{T: now})
	return svc, customers
}

func TestCustomerCodeGeneration(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		town     string
		address  string
		wantCode string
	}{
		{"from town", "Accra", "12 High St", "AC001"},
		{"town lowercased", "tema", "", "TE001"},
		{"falls back to address", "", "Kumasi Rd", "KU001"},
		{"skips digits in address", "", "12 Osu Lane", "OS001"},
		{"no usable letters", "", "", "CU001"},
		{"single letter town falls through", "A", "Bortianor", "BO001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newCustomerFixture(now)
			customer, err := svc.Create(context.Background(), officerActor(7), CreateCustomerInput{
				FirstName:               "Ama",
				LastName:                "Mensah",
				Town:                    tt.town,
				Address:                 tt.address,
				DailyContributionAmount: decimal.NewFromInt(10),
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if customer.CustomerCode != tt.wantCode {
				t.Errorf("CustomerCode = %s, want %s", customer.CustomerCode, tt.wantCode)
			}
		})
	}
}

func TestCustomerCodeSequencePerOfficer(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	svc, _ := newCustomerFixture(now)

	input := CreateCustomerInput{
		FirstName:               "Ama",
		LastName:                "Mensah",
		Town:                    "Accra",
		DailyContributionAmount: decimal.NewFromInt(10),
	}

	first, err := svc.Create(context.Background(), officerActor(7), input)
	if err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	second, err := svc.Create(context.Background(), officerActor(7), input)
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	if first.CustomerCode != "AC001" || second.CustomerCode != "AC002" {
		t.Errorf("codes = %s, %s; want AC001, AC002", first.CustomerCode, second.CustomerCode)
	}
}

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	day := func(s string) *time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad date %s: %v", s, err)
		}
		return &d
	}

	tests := []struct {
		name       string
		last       *time.Time
		maxMissed  int
		wantStatus string
		wantMissed int
	}{
		{"paid today", day("2026-08-25"), 7, models.CustomerStatusActive, 0},
		{"paid yesterday", day("2026-08-24"), 7, models.CustomerStatusActive, 0},
		{"missed three days", day("2026-08-21"), 7, models.CustomerStatusActive, 0},
		{"at threshold", day("2026-08-18"), 7, models.CustomerStatusActive, 0},
		{"one past threshold", day("2026-08-17"), 7, models.CustomerStatusInactive, 8},
		{"well past threshold", day("2026-08-01"), 7, models.CustomerStatusInactive, 24},
		{"tight custom threshold", day("2026-08-22"), 2, models.CustomerStatusInactive, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer := &models.Customer{
				LastContributionDate: tt.last,
				MaxMissedDays:        tt.maxMissed,
				CreatedAt:            time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
			}
			status, missed := DeriveStatus(customer, today)
			if status != tt.wantStatus || missed != tt.wantMissed {
				t.Errorf("DeriveStatus() = (%s, %d), want (%s, %d)", status, missed, tt.wantStatus, tt.wantMissed)
			}
		})
	}
}

func TestDeriveStatusNeverContributed(t *testing.T) {
	today := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	// Enrolled this morning: nothing missed yet.
	fresh := &models.Customer{
		MaxMissedDays: 7,
		CreatedAt:     time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
	}
	if status, missed := DeriveStatus(fresh, today); status != models.CustomerStatusActive || missed != 0 {
		t.Errorf("fresh customer = (%s, %d), want (active, 0)", status, missed)
	}

	// Enrolled ten days ago and never paid: counted from enrolment.
	stale := &models.Customer{
		MaxMissedDays: 7,
		CreatedAt:     time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
	}
	if status, missed := DeriveStatus(stale, today); status != models.CustomerStatusInactive || missed != 10 {
		t.Errorf("stale customer = (%s, %d), want (inactive, 10)", status, missed)
	}
}

func TestCustomerSweepMarksInactive(t *testing.T) {
	now := time.Date(2026, 8, 25, 6, 5, 0, 0, time.UTC)
	svc, customers := newCustomerFixture(now)

	lapsed := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	inactive := customers.add(&models.Customer{Status: models.CustomerStatusActive, MaxMissedDays: 7, LastContributionDate: &lapsed})
	active := customers.add(&models.Customer{Status: models.CustomerStatusActive, MaxMissedDays: 7, LastContributionDate: &recent})

	if err := svc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if inactive.Status != models.CustomerStatusInactive {
		t.Errorf("lapsed customer status = %s, want inactive", inactive.Status)
	}
	if active.Status != models.CustomerStatusActive {
		t.Errorf("recent customer status = %s, want active", active.Status)
	}
}
