package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_PARENT    = "parent"
	ROLE_ADMIN     = "admin"
	STATUS_ACTIVE  = "active"
	STATUS_PENDING = "pending"
	STATUS_BLOCKED = "blocked"
)

// Subscription status values derived from provider events. These fields are
// written exclusively by the billing projector; every other code path only
// reads them.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription tiers mapped from provider product IDs.
const (
	TierPremium   = "premium"
	TierMVP       = "mvp"
	TierLawOffice = "law_office"
)

// Profile is a co-parent account. Email is the join key used by the billing
// projector to locate the row for a provider event.
type Profile struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email              string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password           string         `gorm:"type:text" json:"-" validate:"required,min=8"`
	Role               string         `gorm:"type:varchar(50);default:'parent'" json:"role" validate:"oneof=parent admin"`
	Status             string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active pending blocked"`
	SubscriptionStatus string         `gorm:"type:varchar(32);default:'';index" json:"subscription_status"`
	SubscriptionTier   *string        `gorm:"type:varchar(50);default:null" json:"subscription_tier"`
	APIKeyHash         string         `gorm:"type:char(64);default:'';index" json:"-"`
	APIKeyPrefix       string         `gorm:"type:varchar(20);default:''" json:"api_key_prefix"`
	APIKeyCreatedAt    *time.Time     `json:"api_key_created_at,omitempty"`
	APIKeyLastUsedAt   *time.Time     `json:"api_key_last_used_at,omitempty"`
	LastLoginAt        *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Profile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// CreateProfile builds a validated profile with a hashed password.
func CreateProfile(name string, email string, password string) (*Profile, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: pw,
		Role:     ROLE_PARENT,
		Status:   STATUS_ACTIVE,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "cpt_"

// IssueAPIKey generates a new API key, persists metadata on the struct, and
// returns the raw secret. Callers must save the profile afterwards.
func (p *Profile) IssueAPIKey() (string, error) {
	raw := make([]byte, 30)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	secret := apiKeyPrefix + strings.ToLower(apiKeyEncoding.EncodeToString(raw))
	now := time.Now()
	p.APIKeyHash = HashAPIKey(secret)
	p.APIKeyPrefix = secret[:len(apiKeyPrefix)+6]
	p.APIKeyCreatedAt = &now
	p.APIKeyLastUsedAt = nil

	return secret, nil
}

// HashAPIKey returns the hex-encoded SHA-256 hash used for API key lookups.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

// HasActiveAPIKey reports whether the profile has an API key configured.
func (p *Profile) HasActiveAPIKey() bool {
	return p != nil && p.APIKeyHash != ""
}
