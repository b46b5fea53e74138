package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Provider is the identity backend holding user credentials. Profiles live in
// the document store; the provider only knows uid, email and password.
type Provider interface {
	CreateUser(ctx context.Context, uid, email, password string) error
	// VerifyPassword returns the uid owning email when password matches.
	VerifyPassword(ctx context.Context, email, password string) (string, error)
	UpdateEmail(ctx context.Context, uid, email string) error
	DeleteUser(ctx context.Context, uid string) error
}

const minPasswordLength = 6

type credential struct {
	UserID       string `gorm:"primaryKey"`
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (credential) TableName() string { return "credentials" }

// LocalProvider keeps bcrypt hashes in the credentials table.
type LocalProvider struct {
	db   *gorm.DB
	cost int
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db, cost: bcrypt.DefaultCost}
}

// HashPassword hashes password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash compares a bcrypt hash with a plaintext password.
func CheckPasswordHash(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

func (p *LocalProvider) CreateUser(ctx context.Context, uid, email, password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hashed, err := HashPassword(password, p.cost)
	if err != nil {
		return fmt.Errorf("auth: failed to hash password: %w", err)
	}
	cred := credential{UserID: uid, Email: normalizeEmail(email), PasswordHash: hashed}
	if err := p.db.WithContext(ctx).Create(&cred).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("auth: failed to store credential: %w", err)
	}
	return nil
}

func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	var cred credential
	err := p.db.WithContext(ctx).First(&cred, "email = ?", normalizeEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("auth: failed to query credential: %w", err)
	}
	if err := CheckPasswordHash(cred.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return cred.UserID, nil
}

func (p *LocalProvider) UpdateEmail(ctx context.Context, uid, email string) error {
	res := p.db.WithContext(ctx).Model(&credential{}).Where("user_id = ?", uid).Update("email", normalizeEmail(email))
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrEmailExists
		}
		return fmt.Errorf("auth: failed to update email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (p *LocalProvider) DeleteUser(ctx context.Context, uid string) error {
	res := p.db.WithContext(ctx).Delete(&credential{}, "user_id = ?", uid)
	if res.Error != nil {
		return fmt.Errorf("auth: failed to delete credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
