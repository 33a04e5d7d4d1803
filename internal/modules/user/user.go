package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles a marketplace account can hold.
const (
	RoleAdmin    = "admin"
	RoleSeller   = "seller"
	RoleCustomer = "customer"
)

// User represents a user in the system.
// @Description User information
// @Description with id, email, role, first_name, last_name, created_at, and updated_at
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	FirstName    string    `json:"first_name,omitempty" db:"first_name"`
	LastName     string    `json:"last_name,omitempty" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail is the stored form of an email address. Lookups by email
// must go through it too.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
