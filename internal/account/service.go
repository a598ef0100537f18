// internal/account/service.go
package account

import "context"

// Service defines the account collaborator consumed by the affiliate command
// processor.
type Service interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByLogin(ctx context.Context, login string) (*Account, error)
	// Delete removes the account on the current site.
	Delete(ctx context.Context, id int64) error
	// DeleteNetworkWide removes the account and its membership on every site
	// of a multi-tenant host.
	DeleteNetworkWide(ctx context.Context, id int64) error
}
