package services

import (
	"context"
	"errors"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/password"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OfficerService handles collection officer and community administration.
// Every mutation here is admin only.
type OfficerService struct {
	officerRepo   repositories.OfficerRepository
	communityRepo repositories.CommunityRepository
	userRepo      repositories.UserRepository
}

// NewOfficerService creates a new officer service
func NewOfficerService(
	officerRepo repositories.OfficerRepository,
	communityRepo repositories.CommunityRepository,
	userRepo repositories.UserRepository,
) *OfficerService {
	return &OfficerService{
		officerRepo:   officerRepo,
		communityRepo: communityRepo,
		userRepo:      userRepo,
	}
}

// CreateOfficerInput creates the user account and officer profile together
type CreateOfficerInput struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	CommunityID *uint  `json:"community_id"`
}

// UpdateOfficerInput edits an officer profile
type UpdateOfficerInput struct {
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	CommunityID *uint   `json:"community_id"`
}

// CreateOfficer provisions an officer account with its profile
func (s *OfficerService) CreateOfficer(ctx context.Context, actor domain.Actor, input CreateOfficerInput) (*models.CollectionOfficer, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	if input.CommunityID != nil {
		if _, err := s.communityRepo.GetByID(ctx, *input.CommunityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		FullName: input.FullName,
		Role:     string(domain.RoleOfficer),
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	officer := &models.CollectionOfficer{
		UserID:      user.ID,
		CommunityID: input.CommunityID,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
	}
	if err := s.officerRepo.Create(ctx, officer); err != nil {
		return nil, err
	}
	officer.User = user

	logrus.WithFields(logrus.Fields{
		"officer_id": officer.ID,
		"user_id":    user.ID,
		"username":   user.Username,
	}).Info("collection officer created")

	return officer, nil
}

// GetByID returns one officer with its user account
func (s *OfficerService) GetByID(ctx context.Context, id uint) (*models.CollectionOfficer, error) {
	officer, err := s.officerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfficerNotFound
		}
		return nil, err
	}
	return officer, nil
}

// Update edits an officer profile
func (s *OfficerService) Update(ctx context.Context, actor domain.Actor, id uint, input UpdateOfficerInput) (*models.CollectionOfficer, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	officer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.PhoneNumber != nil {
		officer.PhoneNumber = *input.PhoneNumber
	}
	if input.Address != nil {
		officer.Address = *input.Address
	}
	if input.CommunityID != nil {
		if _, err := s.communityRepo.GetByID(ctx, *input.CommunityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
		officer.CommunityID = input.CommunityID
	}

	if err := s.officerRepo.Update(ctx, officer); err != nil {
		return nil, err
	}
	return officer, nil
}

// Deactivate soft-deletes an officer profile and disables its login
func (s *OfficerService) Deactivate(ctx context.Context, actor domain.Actor, id uint) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	officer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, officer.UserID)
	if err == nil {
		user.IsActive = false
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
	}

	return s.officerRepo.Delete(ctx, officer.ID)
}

// List returns officers with pagination
func (s *OfficerService) List(ctx context.Context, offset, limit int) ([]*models.CollectionOfficer, int64, error) {
	return s.officerRepo.List(ctx, offset, limit)
}

// CreateCommunity adds a community for grouping officers
func (s *OfficerService) CreateCommunity(ctx context.Context, actor domain.Actor, name string) (*models.Community, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.communityRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEntry
	}

	community := &models.Community{Name: name}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

// ListCommunities returns all communities
func (s *OfficerService) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	return s.communityRepo.List(ctx)
}
