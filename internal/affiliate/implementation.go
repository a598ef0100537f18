// internal/affiliate/implementation.go
package affiliate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"affinet/internal/account"
)

var validate = validator.New()

// service implements the Service interface.
type service struct {
	store          Store
	accounts       account.Service
	logger         *zap.Logger
	tracer         trace.Tracer
	networkEnabled bool
}

// NewService creates a new affiliate command processor. networkEnabled marks
// the host as multi-tenant, unlocking network-wide account deletion.
func NewService(store Store, accounts account.Service, logger *zap.Logger, networkEnabled bool) Service {
	return &service{
		store:          store,
		accounts:       accounts,
		logger:         logger,
		tracer:         otel.Tracer("affinet/affiliate"),
		networkEnabled: networkEnabled,
	}
}

// Resolve finds the affiliate a token refers to: numeric tokens are direct ID
// lookups, anything else is treated as an account login whose affiliate is
// found through the user_id back-reference.
func (s *service) Resolve(ctx context.Context, token string) (*Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.resolve",
		trace.WithAttributes(attribute.String("affiliate.token", token)),
	)
	defer span.End()

	if token == "" {
		return nil, ErrAffiliateNotFound
	}

	if id, err := strconv.ParseInt(token, 10, 64); err == nil && id >= 0 {
		aff, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return aff, nil
	}

	acct, err := s.accounts.GetByLogin(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrAffiliateNotFound
		}
		return nil, fmt.Errorf("resolve account %q: %w", token, err)
	}

	return s.store.GetBy(ctx, "user_id", acct.ID)
}

// Get fetches a single affiliate by token and enriches it for display.
func (s *service) Get(ctx context.Context, token string) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.get")
	defer span.End()

	aff, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	rec := s.enrich(ctx, *aff)
	return &rec, nil
}

// Create registers a new affiliate for an account, enforcing the
// one-affiliate-per-account invariant before any write.
func (s *service) Create(ctx context.Context, params CreateParams) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.create",
		trace.WithAttributes(attribute.String("affiliate.token", params.Token)),
	)
	defer span.End()

	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	// Step 1: resolve the account the affiliate will be linked to.
	acct, err := s.resolveAccount(ctx, params.Token)
	if err != nil {
		return nil, err
	}

	// Step 2: refuse a second affiliate for the same account. The store's
	// uniqueness constraint backs this check against concurrent creates.
	_, err = s.store.GetBy(ctx, "user_id", acct.ID)
	if err == nil {
		return nil, fmt.Errorf("%w (user ID %d)", ErrDuplicateAffiliate, acct.ID)
	}
	if !errors.Is(err, ErrAffiliateNotFound) {
		return nil, fmt.Errorf("check for existing affiliate: %w", err)
	}

	aff := &Affiliate{
		UserID:       acct.ID,
		Rate:         params.Rate,
		RateType:     params.RateType,
		PaymentEmail: params.PaymentEmail,
		Status:       params.Status,
		Earnings:     params.Earnings,
		Referrals:    params.Referrals,
		Visits:       params.Visits,
	}

	created, err := s.store.Create(ctx, aff)
	if err != nil {
		if errors.Is(err, ErrDuplicateAffiliate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}

	s.logger.Info("affiliate created",
		zap.Int64("affiliate_id", created.AffiliateID),
		zap.String("user_login", acct.Login),
	)

	return &Record{Affiliate: *created, UserLogin: acct.Login}, nil
}

// resolveAccount looks up the account a create token names. Unlike Resolve,
// failure here means the user does not exist at all.
func (s *service) resolveAccount(ctx context.Context, token string) (*account.Account, error) {
	if token == "" {
		return nil, ErrInvalidUser
	}

	var (
		acct *account.Account
		err  error
	)
	if id, perr := strconv.ParseInt(token, 10, 64); perr == nil && id >= 0 {
		acct, err = s.accounts.GetByID(ctx, id)
	} else {
		acct, err = s.accounts.GetByLogin(ctx, token)
	}
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidUser, token)
		}
		return nil, fmt.Errorf("resolve account %q: %w", token, err)
	}
	return acct, nil
}

// Update applies a partial field replacement to an existing affiliate. Fields
// left empty are not changed. A supplied status is validated against the
// recognized set; an invalid or absent status keeps the current one rather
// than failing the update.
func (s *service) Update(ctx context.Context, params UpdateParams) (*Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.update",
		trace.WithAttributes(attribute.String("affiliate.token", params.Token)),
	)
	defer span.End()

	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	aff, err := s.Resolve(ctx, params.Token)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if params.AccountEmail != "" {
		fields["account_email"] = params.AccountEmail
	}
	if params.PaymentEmail != "" {
		fields["payment_email"] = params.PaymentEmail
	}
	if params.Rate != "" {
		fields["rate"] = params.Rate
	}
	if params.RateType != "" {
		fields["rate_type"] = params.RateType
	}
	if ValidStatus(params.Status) {
		fields["status"] = params.Status
	} else {
		fields["status"] = aff.Status
	}

	if err := s.store.Update(ctx, aff.AffiliateID, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	s.logger.Info("affiliate updated", zap.Int64("affiliate_id", aff.AffiliateID))

	return s.store.Get(ctx, aff.AffiliateID)
}

// Delete removes an affiliate and optionally cascades to its data and the
// linked account. Account deletion only runs after the affiliate row is gone,
// and its failure is reported as a partial outcome, never as full success.
func (s *service) Delete(ctx context.Context, params DeleteParams) (*DeleteOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.delete",
		trace.WithAttributes(
			attribute.String("affiliate.token", params.Token),
			attribute.Bool("delete.data", params.DeleteData),
			attribute.Bool("delete.user", params.DeleteUser),
		),
	)
	defer span.End()

	aff, err := s.Resolve(ctx, params.Token)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, aff, params.DeleteData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAffiliateDeletionFailed, err)
	}

	outcome := &DeleteOutcome{Affiliate: aff, DataDeleted: params.DeleteData}

	if params.DeleteUser {
		if params.Network && s.networkEnabled {
			err = s.accounts.DeleteNetworkWide(ctx, aff.UserID)
		} else {
			err = s.accounts.Delete(ctx, aff.UserID)
		}
		if err != nil {
			outcome.AccountErr = fmt.Errorf("%w: %v", ErrAccountDeletionFailed, err)
		} else {
			outcome.AccountDeleted = true
		}
	}

	s.logger.Info("affiliate deleted",
		zap.Int64("affiliate_id", aff.AffiliateID),
		zap.Bool("data_deleted", outcome.DataDeleted),
		zap.Bool("account_deleted", outcome.AccountDeleted),
	)

	return outcome, nil
}

// List runs a filtered query and backfills the two display fields not stored
// inline on each row.
func (s *service) List(ctx context.Context, params ListParams) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.list")
	defer span.End()

	affiliates, err := s.store.List(ctx, params.ListArgs)
	if err != nil {
		return nil, fmt.Errorf("list affiliates: %w", err)
	}

	records := make([]Record, 0, len(affiliates))
	for _, aff := range affiliates {
		records = append(records, s.enrich(ctx, aff))
	}
	return records, nil
}

// Count runs a counting query. No per-record enrichment happens here.
func (s *service) Count(ctx context.Context, params ListParams) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "affiliate.count")
	defer span.End()

	return s.store.Count(ctx, params.ListArgs)
}

// enrich backfills payment_email and user_login on a row. Lookup failures
// leave the field empty rather than failing the whole listing.
func (s *service) enrich(ctx context.Context, aff Affiliate) Record {
	rec := Record{Affiliate: aff}

	if rec.PaymentEmail == "" {
		email, err := s.store.PaymentEmail(ctx, aff.AffiliateID)
		if err != nil {
			s.logger.Warn("payment email lookup failed",
				zap.Int64("affiliate_id", aff.AffiliateID), zap.Error(err))
		} else {
			rec.PaymentEmail = email
		}
	}

	acct, err := s.accounts.GetByID(ctx, aff.UserID)
	if err != nil {
		s.logger.Warn("account lookup failed",
			zap.Int64("user_id", aff.UserID), zap.Error(err))
	} else {
		rec.UserLogin = acct.Login
	}

	return rec
}
