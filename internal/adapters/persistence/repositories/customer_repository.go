package repositories

import (
	"context"

	"susu-collect/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID gets a customer by ID with officer
func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Officer").
		Preload("Officer.User").
		First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByIDForOfficer gets a customer only when owned by the given officer
func (r *customerRepository) GetByIDForOfficer(ctx context.Context, id, officerID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Officer").
		Preload("Officer.User").
		Where("id = ? AND officer_id = ?", id, officerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update updates a customer
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// UpdateStatus persists a derived activity status without touching other fields
func (r *customerRepository) UpdateStatus(ctx context.Context, id uint, status string, missedDays int) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"missed_days": missedDays,
		}).Error
}

// Delete soft deletes a customer
func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, id).Error
}

// applyQuery adds search and status filters to a customer query
func applyCustomerQuery(db *gorm.DB, q CustomerQuery) *gorm.DB {
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where(
			"first_name LIKE ? OR last_name LIKE ? OR customer_id LIKE ? OR phone_number LIKE ? OR address LIKE ?",
			like, like, like, like, like,
		)
	}
	if q.Status == models.CustomerStatusActive || q.Status == models.CustomerStatusInactive {
		db = db.Where("status = ?", q.Status)
	}
	return db
}

// ListByOfficer lists an officer's customers with filters and pagination
func (r *customerRepository) ListByOfficer(ctx context.Context, officerID uint, q CustomerQuery) ([]*models.Customer, int64, error) {
	base := applyCustomerQuery(
		r.db.WithContext(ctx).Model(&models.Customer{}).Where("officer_id = ?", officerID), q)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*models.Customer
	err := base.
		Order("first_name ASC, last_name ASC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&customers).Error

	return customers, total, err
}

// ListAll lists all customers with filters and pagination (admin scope)
func (r *customerRepository) ListAll(ctx context.Context, q CustomerQuery) ([]*models.Customer, int64, error) {
	base := applyCustomerQuery(r.db.WithContext(ctx).Model(&models.Customer{}), q)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*models.Customer
	err := base.
		Preload("Officer").
		Preload("Officer.User").
		Order("first_name ASC, last_name ASC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&customers).Error

	return customers, total, err
}

// ListActive lists all active customers (activity sweep)
func (r *customerRepository) ListActive(ctx context.Context) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := r.db.WithContext(ctx).
		Where("status = ?", models.CustomerStatusActive).
		Find(&customers).Error
	return customers, err
}

// Count counts all customers
func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

// CountByOfficerAndPrefix counts an officer's customers whose code starts with
// the prefix. Used to pick the next customer code sequence number.
func (r *customerRepository) CountByOfficerAndPrefix(ctx context.Context, officerID uint, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Unscoped().
		Where("officer_id = ? AND customer_id LIKE ?", officerID, prefix+"%").
		Count(&count).Error
	return count, err
}
