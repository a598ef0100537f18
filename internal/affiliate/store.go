// internal/affiliate/store.go
package affiliate

import (
	"context"
)

// ListArgs shapes a filtered affiliate query. Filters map column names to
// exact-match values; unknown columns are rejected by the store.
type ListArgs struct {
	Filters map[string]any
	OrderBy string
	Order   string
	Number  int
	Offset  int
}

// Store is the persistence collaborator for affiliate records. Implementations
// own all durable state, including the one-affiliate-per-account uniqueness
// guarantee under concurrent creation attempts.
type Store interface {
	// Get fetches an affiliate by ID. Returns ErrAffiliateNotFound when no
	// row matches.
	Get(ctx context.Context, id int64) (*Affiliate, error)
	// GetBy fetches the affiliate whose column equals value.
	GetBy(ctx context.Context, field string, value any) (*Affiliate, error)
	// Create inserts a new affiliate. Empty rate, rate type, status and
	// payment email let the store apply its own defaults. Returns the stored
	// row, or ErrDuplicateAffiliate when the account already has one.
	Create(ctx context.Context, a *Affiliate) (*Affiliate, error)
	// Update applies a partial field replacement keyed by affiliate ID. The
	// reserved "account_email" field updates the linked account instead of
	// the affiliate row.
	Update(ctx context.Context, id int64, fields map[string]string) error
	// Delete removes the affiliate, cascading to its referral and visit data
	// when deleteData is set.
	Delete(ctx context.Context, a *Affiliate, deleteData bool) error
	List(ctx context.Context, args ListArgs) ([]Affiliate, error)
	Count(ctx context.Context, args ListArgs) (int64, error)
	// PaymentEmail resolves the affiliate's payout address, falling back to
	// the linked account's email when none is stored.
	PaymentEmail(ctx context.Context, id int64) (string, error)
}
