package repositories

import (
	"context"

	"susu-collect/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// officerRepository implements OfficerRepository interface
type officerRepository struct {
	db *gorm.DB
}

// NewOfficerRepository creates a new collection officer repository
func NewOfficerRepository(db *gorm.DB) OfficerRepository {
	return &officerRepository{db: db}
}

// Create creates a new collection officer
func (r *officerRepository) Create(ctx context.Context, officer *models.CollectionOfficer) error {
	return r.db.WithContext(ctx).Create(officer).Error
}

// GetByID gets an officer by ID with user and community
func (r *officerRepository) GetByID(ctx context.Context, id uint) (*models.CollectionOfficer, error) {
	var officer models.CollectionOfficer
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Community").
		First(&officer, id).Error
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

// GetByUserID gets an officer by the owning user account
func (r *officerRepository) GetByUserID(ctx context.Context, userID uint) (*models.CollectionOfficer, error) {
	var officer models.CollectionOfficer
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Community").
		Where("user_id = ?", userID).
		First(&officer).Error
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

// Update updates an officer
func (r *officerRepository) Update(ctx context.Context, officer *models.CollectionOfficer) error {
	return r.db.WithContext(ctx).Save(officer).Error
}

// Delete soft deletes an officer
func (r *officerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CollectionOfficer{}, id).Error
}

// List lists officers with pagination
func (r *officerRepository) List(ctx context.Context, offset, limit int) ([]*models.CollectionOfficer, int64, error) {
	var officers []*models.CollectionOfficer
	var total int64

	r.db.WithContext(ctx).Model(&models.CollectionOfficer{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Community").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&officers).Error

	return officers, total, err
}

// Count counts all officers
func (r *officerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CollectionOfficer{}).Count(&count).Error
	return count, err
}

// communityRepository implements CommunityRepository interface
type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// Create creates a new community
func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Create(community).Error
}

// GetByID gets a community by ID
func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	err := r.db.WithContext(ctx).First(&community, id).Error
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// ExistsByName checks if a community name is taken (case-insensitive)
func (r *communityRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	return count > 0, err
}

// List lists all communities
func (r *communityRepository) List(ctx context.Context) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).Order("name ASC").Find(&communities).Error
	return communities, err
}
