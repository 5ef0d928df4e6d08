package repository

import (
	"time"

	"github.com/coparrent/coparrent/app/models"
)

// ProfileRepository defines the interface for profile-related database operations
type ProfileRepository interface {
	Create(profile *models.Profile) error
	GetByID(id uint) (*models.Profile, error)
	GetByEmail(email string) (*models.Profile, error)
	GetByAPIKeyHash(hash string) (*models.Profile, error)
	TouchAPIKeyUsage(id uint, at time.Time) error
	Update(profile *models.Profile) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Profile, error)
	Count() (int64, error)
	Search(query string) ([]models.Profile, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	Profile ProfileRepository
}
