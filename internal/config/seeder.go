package config

import (
	"log"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedDefaultCommunity(); err != nil {
		log.Printf("⚠️ Community seeder skipped: %v", err)
	}
	if err := s.seedSettings(); err != nil {
		log.Printf("⚠️ Settings seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@susucollect.com",
		Password: hashedPassword,
		FullName: "System Administrator",
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDefaultCommunity seeds a default community so officers can be
// provisioned before any communities are set up.
func (s *Seeder) seedDefaultCommunity() error {
	var count int64
	s.db.Model(&models.Community{}).Count(&count)
	if count > 0 {
		return nil
	}

	community := &models.Community{Name: "Head Office"}
	if err := s.db.Create(community).Error; err != nil {
		return err
	}

	log.Printf("✅ Default community created: %s", community.Name)
	return nil
}

// seedSettings seeds tunable defaults, never overwriting existing values.
func (s *Seeder) seedSettings() error {
	defaults := []models.SystemSetting{
		{
			Key:         models.SettingDefaultLoanRate,
			Value:       "10",
			Description: "Annual interest rate (percent) applied to loans with no explicit rate",
		},
		{
			Key:         models.SettingContributionCeiling,
			Value:       "10000",
			Description: "Maximum amount accepted for a single daily contribution",
		},
	}

	for _, setting := range defaults {
		var count int64
		s.db.Model(&models.SystemSetting{}).Where("`key` = ?", setting.Key).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
		log.Printf("✅ Setting seeded: %s = %s", setting.Key, setting.Value)
	}

	return nil
}
