// internal/affiliate/domain.go
package affiliate

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Statuses an affiliate may hold. Any other value supplied on update is
// discarded in favor of the record's current status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

var (
	ErrMissingArgument         = errors.New("a valid affiliate username or ID is required")
	ErrInvalidUser             = errors.New("invalid user login or ID")
	ErrDuplicateAffiliate      = errors.New("an affiliate already exists for this user")
	ErrAffiliateNotFound       = errors.New("invalid affiliate username or ID")
	ErrCreationFailed          = errors.New("the affiliate could not be created")
	ErrUpdateFailed            = errors.New("the affiliate could not be updated")
	ErrAffiliateDeletionFailed = errors.New("the affiliate could not be deleted")
	ErrAccountDeletionFailed   = errors.New("the user account could not be deleted")
)

// Affiliate represents a referral partner linked one-to-one with a user account.
type Affiliate struct {
	AffiliateID    int64     `json:"affiliate_id" db:"affiliate_id" yaml:"affiliate_id"`
	UserID         int64     `json:"user_id" db:"user_id" yaml:"user_id"`
	Rate           string    `json:"rate" db:"rate" yaml:"rate"`
	RateType       string    `json:"rate_type" db:"rate_type" yaml:"rate_type"`
	PaymentEmail   string    `json:"payment_email" db:"payment_email" yaml:"payment_email"`
	Status         string    `json:"status" db:"status" yaml:"status"`
	Earnings       int64     `json:"earnings" db:"earnings" yaml:"earnings"`
	Referrals      int64     `json:"referrals" db:"referrals" yaml:"referrals"`
	Visits         int64     `json:"visits" db:"visits" yaml:"visits"`
	DateRegistered time.Time `json:"date_registered" db:"date_registered" yaml:"date_registered"`
}

// Record is an affiliate enriched for display with fields that are not stored
// inline on the row: the linked account's login and, when the stored payment
// email is empty, the account email it falls back to.
type Record struct {
	Affiliate
	UserLogin string `json:"user_login" yaml:"user_login"`
}

// ValidStatus reports whether s is one of the recognized affiliate statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// integerFields are the fields SanitizeField coerces to integers. Everything
// else passes through untouched.
var integerFields = map[string]struct{}{
	"affiliate_id": {},
	"user_id":      {},
	"referrals":    {},
	"visits":       {},
}

// SanitizeField normalizes a raw field value before it is trusted downstream.
// Identifier and counter fields are coerced to int64 regardless of how the
// caller represented them; other fields are returned unchanged. The function
// is pure and idempotent.
func SanitizeField(field string, value any) any {
	if _, ok := integerFields[field]; !ok {
		return value
	}
	return toInt64(value)
}

// toInt64 truncates numeric representations to an integer. Values that carry
// no numeric meaning coerce to 0.
func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case uint:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}
