package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_ADMIN = "admin"
	ROLE_SUPER = "super"
)

type Admin struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;type:varchar(100)" json:"username" validate:"required,min=3,max=100"`
	Email         string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password      string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role          string         `gorm:"type:varchar(20);default:'admin'" json:"role" validate:"oneof=admin super"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	DisplayName   string         `gorm:"type:varchar(150)" json:"display_name"`
	Bio           string         `gorm:"type:text" json:"bio" validate:"max=1000"`
	AvatarFrame   string         `gorm:"type:varchar(255);default:''" json:"avatar_frame"`
	ProfileViews  int64          `gorm:"default:0" json:"profile_views"`
	Package       string         `gorm:"type:varchar(50);default:'basic'" json:"package"`
	PackageExpiry *time.Time     `gorm:"type:timestamp;default:null" json:"package_expiry"`
	ActivePackage string         `gorm:"type:varchar(50);default:'basic'" json:"active_package"`
	OwnedPackages []OwnedPackage `gorm:"foreignKey:AdminID" json:"owned_packages,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Admin) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

func CreateAdmin(username string, email string, password string) (*Admin, error) {
	a := &Admin{
		Username:      username,
		Email:         email,
		Password:      password,
		Role:          ROLE_ADMIN,
		DisplayName:   username,
		Package:       PackageBasic,
		ActivePackage: PackageBasic,
		IsActive:      true,
	}

	// Validate the raw password before it is replaced by its hash.
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := a.SetPassword(password); err != nil {
		return nil, err
	}

	return a, nil
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

// CheckPassword verifies if the provided password matches the admin's stored password
func (a *Admin) CheckPassword(password string) bool {
	return CheckPasswordHash(password, a.Password)
}

// SetPassword hashes and sets a new password for the admin
func (a *Admin) SetPassword(password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.Password = hashed
	return nil
}

// IsSuper reports whether the admin holds the super role
func (a *Admin) IsSuper() bool {
	return a.Role == ROLE_SUPER
}
