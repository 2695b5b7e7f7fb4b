package services

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// Customer repository mock

type mockCustomerRepo struct {
	customers map[uint]*models.Customer
	nextID    uint
	statusLog []string
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[uint]*models.Customer), nextID: 1}
}

func (m *mockCustomerRepo) add(c *models.Customer) *models.Customer {
	if c.ID == 0 {
		c.ID = m.nextID
		m.nextID++
	}
	m.customers[c.ID] = c
	return c
}

func (m *mockCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	for _, existing := range m.customers {
		if existing.CustomerCode == c.CustomerCode {
			return gorm.ErrDuplicatedKey
		}
	}
	m.add(c)
	return nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) GetByIDForOfficer(_ context.Context, id, officerID uint) (*models.Customer, error) {
	c, ok := m.customers[id]
	if !ok || c.OfficerID != officerID {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) Update(_ context.Context, c *models.Customer) error {
	m.customers[c.ID] = c
	return nil
}

func (m *mockCustomerRepo) UpdateStatus(_ context.Context, id uint, status string, missedDays int) error {
	c, ok := m.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = status
	c.MissedDays = missedDays
	m.statusLog = append(m.statusLog, status)
	return nil
}

func (m *mockCustomerRepo) Delete(_ context.Context, id uint) error {
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepo) ListByOfficer(_ context.Context, officerID uint, _ repositories.CustomerQuery) ([]*models.Customer, int64, error) {
	var out []*models.Customer
	for _, c := range m.customers {
		if c.OfficerID == officerID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockCustomerRepo) ListAll(_ context.Context, _ repositories.CustomerQuery) ([]*models.Customer, int64, error) {
	var out []*models.Customer
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCustomerRepo) ListActive(_ context.Context) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range m.customers {
		if c.Status == models.CustomerStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCustomerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.customers)), nil
}

func (m *mockCustomerRepo) CountByOfficerAndPrefix(_ context.Context, officerID uint, prefix string) (int64, error) {
	var count int64
	for _, c := range m.customers {
		if c.OfficerID == officerID && len(c.CustomerCode) >= len(prefix) && c.CustomerCode[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Contribution repository mock

type mockContributionRepo struct {
	contributions []*models.Contribution
	customers     *mockCustomerRepo
	sumForOfficer decimal.Decimal
	sumApproved   decimal.Decimal
	approvedDays  int64
}

func newMockContributionRepo(customers *mockCustomerRepo) *mockContributionRepo {
	return &mockContributionRepo{customers: customers}
}

func (m *mockContributionRepo) Record(_ context.Context, c *models.Contribution) error {
	for _, existing := range m.contributions {
		if existing.CustomerID == c.CustomerID && existing.BusinessDay.Equal(c.BusinessDay) {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uint(len(m.contributions) + 1)
	m.contributions = append(m.contributions, c)

	if m.customers != nil {
		if cust, ok := m.customers.customers[c.CustomerID]; ok {
			if cust.LastContributionDate == nil || !cust.LastContributionDate.After(c.BusinessDay) {
				day := c.BusinessDay
				cust.LastContributionDate = &day
				cust.MissedDays = 0
			}
		}
	}
	return nil
}

func (m *mockContributionRepo) ExistsForBusinessDay(_ context.Context, customerID uint, day time.Time) (bool, error) {
	for _, c := range m.contributions {
		if c.CustomerID == customerID && c.BusinessDay.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockContributionRepo) SumForOfficerOnBusinessDay(_ context.Context, _ uint, _ time.Time) (decimal.Decimal, error) {
	return m.sumForOfficer, nil
}

func (m *mockContributionRepo) SumApprovedForCustomer(_ context.Context, _ uint) (decimal.Decimal, error) {
	return m.sumApproved, nil
}

func (m *mockContributionRepo) CountApprovedDaysForCustomer(_ context.Context, _ uint) (int64, error) {
	return m.approvedDays, nil
}

func (m *mockContributionRepo) ListForCustomer(_ context.Context, customerID uint, _, _ int) ([]*models.Contribution, int64, error) {
	var out []*models.Contribution
	for _, c := range m.contributions {
		if c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

// ---------------------------------------------------------------------------
// Submission repository mock

type mockSubmissionRepo struct {
	submissions []*models.DailySubmission
}

func (m *mockSubmissionRepo) Create(_ context.Context, s *models.DailySubmission) error {
	for _, existing := range m.submissions {
		if existing.OfficerID == s.OfficerID && existing.BusinessDay.Equal(s.BusinessDay) {
			return gorm.ErrDuplicatedKey
		}
	}
	s.ID = uint(len(m.submissions) + 1)
	m.submissions = append(m.submissions, s)
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id uint) (*models.DailySubmission, error) {
	for _, s := range m.submissions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ExistsForBusinessDay(_ context.Context, officerID uint, day time.Time) (bool, error) {
	for _, s := range m.submissions {
		if s.OfficerID == officerID && s.BusinessDay.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *models.DailySubmission) error {
	for i, s := range m.submissions {
		if s.ID == sub.ID {
			m.submissions[i] = sub
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListByOfficer(_ context.Context, officerID uint, _, _ int) ([]*models.DailySubmission, int64, error) {
	var out []*models.DailySubmission
	for _, s := range m.submissions {
		if s.OfficerID == officerID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockSubmissionRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*models.DailySubmission, int64, error) {
	var out []*models.DailySubmission
	for _, s := range m.submissions {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockSubmissionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.submissions)), nil
}

// ---------------------------------------------------------------------------
// Loan repository mock

type mockLoanRepo struct {
	loans      map[uint]*models.Loan
	repayments []*models.LoanRepayment
	nextID     uint
}

func newMockLoanRepo() *mockLoanRepo {
	return &mockLoanRepo{loans: make(map[uint]*models.Loan), nextID: 1}
}

func (m *mockLoanRepo) Create(_ context.Context, loan *models.Loan) error {
	loan.ID = m.nextID
	m.nextID++
	m.loans[loan.ID] = loan
	return nil
}

func (m *mockLoanRepo) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	loan, ok := m.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return loan, nil
}

func (m *mockLoanRepo) Update(_ context.Context, loan *models.Loan) error {
	m.loans[loan.ID] = loan
	return nil
}

func (m *mockLoanRepo) CountOpenForCustomer(_ context.Context, customerID uint) (int64, error) {
	var count int64
	for _, loan := range m.loans {
		if loan.CustomerID != customerID {
			continue
		}
		for _, open := range models.OpenLoanStatuses {
			if loan.Status == open {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *mockLoanRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	for _, loan := range m.loans {
		if loan.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *mockLoanRepo) ListByCustomer(_ context.Context, customerID uint) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range m.loans {
		if loan.CustomerID == customerID {
			out = append(out, loan)
		}
	}
	return out, nil
}

func (m *mockLoanRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*models.Loan, int64, error) {
	var out []*models.Loan
	for _, loan := range m.loans {
		if loan.Status == status {
			out = append(out, loan)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockLoanRepo) ApplyRepayment(_ context.Context, repayment *models.LoanRepayment, totalRepayment decimal.Decimal) (*models.Loan, error) {
	loan, ok := m.loans[repayment.LoanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	repayment.ID = uint(len(m.repayments) + 1)
	m.repayments = append(m.repayments, repayment)

	sum := decimal.Zero
	for _, r := range m.repayments {
		if r.LoanID == repayment.LoanID {
			sum = sum.Add(r.Amount)
		}
	}

	loan.AmountRepaid = sum
	if sum.GreaterThanOrEqual(totalRepayment) {
		now := time.Now()
		loan.Status = models.LoanStatusRepaid
		loan.RepaidAt = &now
	}
	return loan, nil
}

// ---------------------------------------------------------------------------
// User / officer / community mocks

type mockUserRepo struct {
	users map[uint]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*models.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = uint(len(m.users) + 1)
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *models.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(context.Background(), email)
	return err == nil, nil
}

// ---------------------------------------------------------------------------
// Support mocks

type mockSettingRepo struct {
	values map[string]string
}

func (m *mockSettingRepo) Get(_ context.Context, key string) (string, error) {
	if m.values == nil {
		return "", gorm.ErrRecordNotFound
	}
	v, ok := m.values[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

func (m *mockSettingRepo) Set(_ context.Context, key, value string, _ uint) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

type mockNotificationRepo struct {
	notifications []*models.Notification
}

func (m *mockNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.ID = uint(len(m.notifications) + 1)
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) ListByRecipient(_ context.Context, recipientID uint, _, _ int) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, recipientID uint) error {
	for _, n := range m.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, recipientID uint) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type mockLedgerRepo struct {
	entries []*models.LedgerTransaction
}

func (m *mockLedgerRepo) Create(_ context.Context, tx *models.LedgerTransaction) error {
	tx.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, tx)
	return nil
}

func (m *mockLedgerRepo) ListByCustomer(_ context.Context, customerID uint, _, _ int) ([]*models.LedgerTransaction, int64, error) {
	var out []*models.LedgerTransaction
	for _, e := range m.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockLedgerRepo) ListByLoan(_ context.Context, loanID uint) ([]*models.LedgerTransaction, error) {
	var out []*models.LedgerTransaction
	for _, e := range m.entries {
		if e.LoanID != nil && *e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockRefreshTokenRepo struct {
	tokens map[uint]*models.RefreshToken
}

func newMockRefreshTokenRepo() *mockRefreshTokenRepo {
	return &mockRefreshTokenRepo{tokens: make(map[uint]*models.RefreshToken)}
}

func (m *mockRefreshTokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	t.ID = uint(len(m.tokens) + 1)
	m.tokens[t.ID] = t
	return nil
}

func (m *mockRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, t := range m.tokens {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	t, ok := m.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (m *mockRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	t, err := m.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return err
	}
	return m.Revoke(ctx, t.ID)
}

func (m *mockRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	for id, t := range m.tokens {
		if t.IsExpired() {
			delete(m.tokens, id)
		}
	}
	return nil
}

func (m *mockRefreshTokenRepo) activeCount(userID uint) int {
	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type mockOfficerRepo struct {
	officers map[uint]*models.CollectionOfficer
}

func newMockOfficerRepo() *mockOfficerRepo {
	return &mockOfficerRepo{officers: make(map[uint]*models.CollectionOfficer)}
}

func (m *mockOfficerRepo) Create(_ context.Context, o *models.CollectionOfficer) error {
	o.ID = uint(len(m.officers) + 1)
	m.officers[o.ID] = o
	return nil
}

func (m *mockOfficerRepo) GetByID(_ context.Context, id uint) (*models.CollectionOfficer, error) {
	o, ok := m.officers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (m *mockOfficerRepo) GetByUserID(_ context.Context, userID uint) (*models.CollectionOfficer, error) {
	for _, o := range m.officers {
		if o.UserID == userID {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOfficerRepo) Update(_ context.Context, o *models.CollectionOfficer) error {
	m.officers[o.ID] = o
	return nil
}

func (m *mockOfficerRepo) Delete(_ context.Context, id uint) error {
	delete(m.officers, id)
	return nil
}

func (m *mockOfficerRepo) List(_ context.Context, _, _ int) ([]*models.CollectionOfficer, int64, error) {
	var out []*models.CollectionOfficer
	for _, o := range m.officers {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *mockOfficerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.officers)), nil
}

// newTestNotifier wires a notification service over fresh mocks.
func newTestNotifier() (*NotificationService, *mockNotificationRepo, *mockUserRepo) {
	notifRepo := &mockNotificationRepo{}
	userRepo := newMockUserRepo()
	return NewNotificationService(notifRepo, userRepo), notifRepo, userRepo
}
