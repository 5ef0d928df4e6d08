package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/coparrent/coparrent/app/models"
)

// profileRepository implements the ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a new profile in the database
func (r *profileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// GetByID retrieves a profile by its ID
func (r *profileRepository) GetByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByEmail retrieves a profile by its email address
func (r *profileRepository) GetByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByAPIKeyHash resolves an API key hash to its profile.
func (r *profileRepository) GetByAPIKeyHash(hash string) (*models.Profile, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var profile models.Profile
	err := r.db.Where("api_key_hash = ? AND api_key_hash <> ''", trimmed).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// TouchAPIKeyUsage records when an API key was last used
func (r *profileRepository) TouchAPIKeyUsage(id uint, at time.Time) error {
	return r.db.Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{"api_key_last_used_at": at}).Error
}

// Update updates an existing profile in the database
func (r *profileRepository) Update(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

// Delete removes a profile by its ID
func (r *profileRepository) Delete(id uint) error {
	return r.db.Delete(&models.Profile{}, id).Error
}

// List retrieves a paginated list of profiles
func (r *profileRepository) List(offset, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&profiles).Error
	return profiles, err
}

// Count returns the total number of profiles
func (r *profileRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Count(&count).Error
	return count, err
}

// Search searches for profiles by name or email
func (r *profileRepository) Search(query string) ([]models.Profile, error) {
	var profiles []models.Profile
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR email LIKE ?", searchPattern, searchPattern).Find(&profiles).Error
	return profiles, err
}
