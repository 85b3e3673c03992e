package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

// UserRole gates what a staff member may do and which live topics
// their connections join.
type UserRole string

const (
	RoleWaitress UserRole = "Waitress"
	RoleKitchen  UserRole = "Kitchen"
	RoleJuiceBar UserRole = "JuiceBar"
	RoleOwner    UserRole = "Owner"
)

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleWaitress, RoleKitchen, RoleJuiceBar, RoleOwner:
		return true
	}
	return false
}

// User is a staff account. Staff log in with a username and a 4-digit
// PIN; the PIN is stored bcrypt-hashed and never serialized.
type User struct {
	ID        string    `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"not null" json:"name"`
	Username  string    `gorm:"unique_index;not null" json:"username"`
	PIN       string    `gorm:"column:pin;not null" json:"-"`
	Role      UserRole  `gorm:"not null" json:"role"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (u *User) BeforeCreate(scope *gorm.Scope) error {
	if u.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}

// SetPIN hashes and stores the given plain-text PIN.
func (u *User) SetPIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), 12)
	if err != nil {
		return err
	}
	u.PIN = string(hash)
	return nil
}

// CheckPIN reports whether the given plain-text PIN matches the stored hash.
func (u *User) CheckPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PIN), []byte(pin)) == nil
}
