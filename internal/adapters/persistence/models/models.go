package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents the users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FullName  string         `gorm:"size:100" json:"full_name"`
	Role      string         `gorm:"size:20;default:'OFFICER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Collection Tables
// ============================================================

// Community groups collection officers by area
type Community struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Community) TableName() string {
	return "communities"
}

// CollectionOfficer represents the collection_officers table.
// One-to-one with a user account; owns zero or more customers.
type CollectionOfficer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	CommunityID *uint          `gorm:"index" json:"community_id"`
	PhoneNumber string         `gorm:"size:15" json:"phone_number"`
	Address     string         `gorm:"type:text" json:"address"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Community *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Customers []Customer `gorm:"foreignKey:OfficerID" json:"customers,omitempty"`
}

func (CollectionOfficer) TableName() string {
	return "collection_officers"
}

// Customer statuses
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// DefaultMaxMissedDays is the inactivity threshold applied when a customer
// has no per-customer override.
const DefaultMaxMissedDays = 7

// Customer represents the customers table. CustomerCode is generated once at
// creation from the town/address initials plus a per-officer sequence and is
// immutable afterwards.
type Customer struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CustomerCode string `gorm:"column:customer_id;size:10;uniqueIndex;not null" json:"customer_id"`
	OfficerID    uint   `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"officer_id"`

	FirstName   string `gorm:"size:50;not null" json:"first_name"`
	LastName    string `gorm:"size:50;not null" json:"last_name"`
	PhoneNumber string `gorm:"size:15" json:"phone_number"`
	Address     string `gorm:"type:text" json:"address"`
	Town        string `gorm:"size:50" json:"town"`

	DailyContributionAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"daily_contribution_amount"`
	Status                  string          `gorm:"size:10;default:'active'" json:"status"`
	LastContributionDate    *time.Time      `gorm:"type:date" json:"last_contribution_date"`
	MissedDays              int             `gorm:"default:0" json:"missed_days"`
	MaxMissedDays           int             `gorm:"default:7" json:"max_missed_days"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Officer       *CollectionOfficer `gorm:"foreignKey:OfficerID" json:"officer,omitempty"`
	Contributions []Contribution     `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"contributions,omitempty"`
	Loans         []Loan             `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"loans,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// InactivityThreshold returns the per-customer missed-day limit, falling back
// to the system default when unset.
func (c *Customer) InactivityThreshold() int {
	if c.MaxMissedDays > 0 {
		return c.MaxMissedDays
	}
	return DefaultMaxMissedDays
}

// CustomerResponse DTO
type CustomerResponse struct {
	ID                      uint            `json:"id"`
	CustomerCode            string          `json:"customer_id"`
	OfficerID               uint            `json:"officer_id"`
	OfficerName             string          `json:"officer_name,omitempty"`
	FirstName               string          `json:"first_name"`
	LastName                string          `json:"last_name"`
	PhoneNumber             string          `json:"phone_number"`
	Address                 string          `json:"address"`
	Town                    string          `json:"town"`
	DailyContributionAmount decimal.Decimal `json:"daily_contribution_amount"`
	Status                  string          `json:"status"`
	LastContributionDate    *time.Time      `json:"last_contribution_date"`
	MissedDays              int             `json:"missed_days"`
	MaxMissedDays           int             `json:"max_missed_days"`
	TotalSavings            decimal.Decimal `json:"total_savings"`
	CreatedAt               time.Time       `json:"created_at"`
}

func (c *Customer) ToResponse() *CustomerResponse {
	resp := &CustomerResponse{
		ID:                      c.ID,
		CustomerCode:            c.CustomerCode,
		OfficerID:               c.OfficerID,
		FirstName:               c.FirstName,
		LastName:                c.LastName,
		PhoneNumber:             c.PhoneNumber,
		Address:                 c.Address,
		Town:                    c.Town,
		DailyContributionAmount: c.DailyContributionAmount,
		Status:                  c.Status,
		LastContributionDate:    c.LastContributionDate,
		MissedDays:              c.MissedDays,
		MaxMissedDays:           c.MaxMissedDays,
		TotalSavings:            decimal.Zero,
		CreatedAt:               c.CreatedAt,
	}

	if c.Officer != nil && c.Officer.User != nil {
		resp.OfficerName = c.Officer.User.FullName
	}

	return resp
}

// Contribution represents the contributions table. BusinessDay is stamped at
// insert from the 6 AM cutoff rule; the composite unique index is the atomic
// guard against double collection within one cash cycle.
type Contribution struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CustomerID   uint            `gorm:"not null;uniqueIndex:uniq_customer_business_day;constraint:OnDelete:CASCADE" json:"customer_id"`
	BusinessDay  time.Time       `gorm:"type:date;not null;uniqueIndex:uniq_customer_business_day;index" json:"business_day"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	RecordedAt   time.Time       `gorm:"not null" json:"recorded_at"`
	RecordedByID uint            `gorm:"not null" json:"recorded_by_id"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RecordedBy *User     `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// Submission statuses
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusFlagged  = "flagged"
)

// SystemReviewer marks submissions approved automatically on an exact match.
const SystemReviewer = "system"

// DailySubmission represents the daily_submissions table. CalculatedTotal is
// frozen at creation time and never recomputed.
type DailySubmission struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OfficerID       uint            `gorm:"not null;uniqueIndex:uniq_officer_business_day;constraint:OnDelete:CASCADE" json:"officer_id"`
	BusinessDay     time.Time       `gorm:"type:date;not null;uniqueIndex:uniq_officer_business_day;index" json:"business_day"`
	SubmittedTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"submitted_total"`
	CalculatedTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"calculated_total"`
	Status          string          `gorm:"size:10;default:'pending'" json:"status"`
	Notes           string          `gorm:"type:text" json:"notes"`
	ReviewedBy      string          `gorm:"size:50" json:"reviewed_by"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	SubmittedAt     time.Time       `gorm:"autoCreateTime" json:"submitted_at"`

	// Relations
	Officer *CollectionOfficer `gorm:"foreignKey:OfficerID" json:"officer,omitempty"`
}

func (DailySubmission) TableName() string {
	return "daily_submissions"
}

// Variance returns submitted minus calculated total.
func (s *DailySubmission) Variance() decimal.Decimal {
	return s.SubmittedTotal.Sub(s.CalculatedTotal)
}

// ============================================================
// Loan Tables
// ============================================================

// Loan statuses
const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusRejected  = "rejected"
	LoanStatusDisbursed = "disbursed"
	LoanStatusRepaid    = "repaid"
)

// DefaultAnnualRatePercent is the annual interest rate applied when a loan
// carries no explicit rate.
const DefaultAnnualRatePercent = 10

// Loan represents the loans table. MonthlyPayment and TotalRepayment are
// computed exactly once at approval.
type Loan struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CustomerID  uint            `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"customer_id"`
	RequestedBy uint            `gorm:"not null" json:"requested_by"`
	Principal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"principal"`
	Purpose     string          `gorm:"type:text" json:"purpose"`
	TermMonths  int             `gorm:"not null" json:"term_months"`
	AnnualRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"annual_rate"`
	Status      string          `gorm:"size:10;default:'pending';index" json:"status"`

	MonthlyPayment *decimal.Decimal `gorm:"type:decimal(12,2)" json:"monthly_payment"`
	TotalRepayment *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_repayment"`
	AmountRepaid   decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"amount_repaid"`

	ApprovedBy    *uint      `json:"approved_by"`
	DecisionAt    *time.Time `json:"decision_at"`
	DecisionNotes string     `gorm:"type:text" json:"decision_notes"`
	DisbursedAt   *time.Time `json:"disbursed_at"`
	RepaidAt      *time.Time `json:"repaid_at"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Approver   *User           `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	Repayments []LoanRepayment `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"repayments,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// RemainingBalance returns what is still owed, never negative. Zero until the
// repayment schedule has been computed.
func (l *Loan) RemainingBalance() decimal.Decimal {
	if l.TotalRepayment == nil {
		return decimal.Zero
	}
	balance := l.TotalRepayment.Sub(l.AmountRepaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// OpenLoanStatuses are loan states that block a new application for the same
// customer.
var OpenLoanStatuses = []string{LoanStatusPending, LoanStatusApproved, LoanStatusDisbursed}

// LoanRepayment represents the loan_repayments table. Each insert recomputes
// the parent loan's amount_repaid in the same transaction.
type LoanRepayment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	LoanID       uint            `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"loan_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	RecordedAt   time.Time       `gorm:"not null" json:"recorded_at"`
	RecordedByID uint            `gorm:"not null" json:"recorded_by_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Loan       *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	RecordedBy *User `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}

func (LoanRepayment) TableName() string {
	return "loan_repayments"
}

// ============================================================
// Ledger & Support Tables
// ============================================================

// Ledger transaction types
const (
	TxTypeLoanDisbursement = "loan_disbursement"
	TxTypeLoanRepayment    = "loan_repayment"
)

// LedgerTransaction represents the ledger_transactions table: the financial
// audit trail written alongside disbursements and repayments.
type LedgerTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	LoanID          *uint           `gorm:"index" json:"loan_id"`
	TransactionType string          `gorm:"size:30;not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description     string          `gorm:"type:text" json:"description"`
	PerformedBy     uint            `gorm:"not null" json:"performed_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Customer  *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Loan      *Loan     `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	Performer *User     `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}

// Notification types
const (
	NotifyTypeLoanApplication = "loan_application"
	NotifyTypeLoanDecision    = "loan_decision"
	NotifyTypeLoanDisbursed   = "loan_disbursed"
	NotifyTypeSubmission      = "submission_review"
)

// Notification represents the notifications table. Rows are written
// best-effort; a failed insert never fails the originating mutation.
type Notification struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RecipientID     uint      `gorm:"not null;index" json:"recipient_id"`
	NotifyType      string    `gorm:"size:30;not null" json:"notify_type"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Message         string    `gorm:"type:text" json:"message"`
	RelatedObjectID *uint     `json:"related_object_id"`
	IsRead          bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Recipient *User `gorm:"foreignKey:RecipientID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

// SystemSetting represents the system_settings table for admin-tunable values.
type SystemSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"size:50;uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UpdatedBy   *uint     `json:"updated_by"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

// Setting keys
const (
	SettingDefaultLoanRate     = "default_loan_rate_percent"
	SettingContributionCeiling = "contribution_ceiling"
)

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Collection
		&Community{},
		&CollectionOfficer{},
		&Customer{},
		&Contribution{},
		&DailySubmission{},
		// Loans
		&Loan{},
		&LoanRepayment{},
		// Support
		&LedgerTransaction{},
		&Notification{},
		&SystemSetting{},
	)
}
