// internal/account/domain.go
package account

import (
	"errors"
	"time"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is the user-identity entity owned by the user subsystem. This
// package only reads identity rows and deletes them on cascade; credentials
// and authentication live elsewhere.
type Account struct {
	ID         int64     `json:"id" db:"id"`
	Login      string    `json:"login" db:"login"`
	Email      string    `json:"email" db:"email"`
	Registered time.Time `json:"registered" db:"registered"`
}
