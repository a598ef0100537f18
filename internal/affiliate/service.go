// internal/affiliate/service.go
package affiliate

import (
	"context"
)

// CreateParams carries the operator input for creating an affiliate. Token is
// the account's login or numeric ID; empty optional fields defer to the
// store's defaults.
type CreateParams struct {
	Token        string
	PaymentEmail string `validate:"omitempty,email"`
	Rate         string `validate:"omitempty,numeric"`
	RateType     string
	Status       string
	Earnings     int64
	Referrals    int64
	Visits       int64
}

// UpdateParams carries a partial update. Empty fields mean "no change
// requested" for that field.
type UpdateParams struct {
	Token        string
	AccountEmail string `validate:"omitempty,email"`
	PaymentEmail string `validate:"omitempty,email"`
	Rate         string `validate:"omitempty,numeric"`
	RateType     string
	Status       string
}

// DeleteParams carries the deletion flags. Network is only honored when the
// host is configured multi-tenant.
type DeleteParams struct {
	Token      string
	DeleteData bool
	DeleteUser bool
	Network    bool
}

// DeleteOutcome reports which cascades actually occurred. AccountErr is set
// when the affiliate was deleted but the requested account deletion failed —
// a partial success distinct from both full success and deletion failure.
type DeleteOutcome struct {
	Affiliate      *Affiliate
	DataDeleted    bool
	AccountDeleted bool
	AccountErr     error
}

// ListParams shapes a list or count query.
type ListParams struct {
	ListArgs
}

// Service defines the affiliate command processor: the five operator-facing
// operations plus the shared token resolver they build on.
type Service interface {
	Get(ctx context.Context, token string) (*Record, error)
	Create(ctx context.Context, params CreateParams) (*Record, error)
	Update(ctx context.Context, params UpdateParams) (*Affiliate, error)
	Delete(ctx context.Context, params DeleteParams) (*DeleteOutcome, error)
	List(ctx context.Context, params ListParams) ([]Record, error)
	Count(ctx context.Context, params ListParams) (int64, error)
	Resolve(ctx context.Context, token string) (*Affiliate, error)
}
