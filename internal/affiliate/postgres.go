// internal/affiliate/postgres.go
package affiliate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	affiliatesTable = "affiliates"
	referralsTable  = "referral_records"
	visitsTable     = "visit_records"
	usersTable      = "users"

	uniqueViolation = "23505"
)

var affiliateStruct = sqlbuilder.NewStruct(new(Affiliate)).For(sqlbuilder.PostgreSQL)

// filterableColumns are the affiliate columns list and get-by queries may
// match against.
var filterableColumns = map[string]struct{}{
	"affiliate_id":  {},
	"user_id":       {},
	"rate":          {},
	"rate_type":     {},
	"payment_email": {},
	"status":        {},
	"earnings":      {},
	"referrals":     {},
	"visits":        {},
}

// orderableColumns are the columns a listing may be sorted by.
var orderableColumns = map[string]struct{}{
	"affiliate_id":    {},
	"user_id":         {},
	"status":          {},
	"earnings":        {},
	"referrals":       {},
	"visits":          {},
	"date_registered": {},
}

// updatableColumns maps partial-update field names to affiliate columns.
// account_email is deliberately absent: it targets the linked user row.
var updatableColumns = map[string]struct{}{
	"rate":          {},
	"rate_type":     {},
	"payment_email": {},
	"status":        {},
}

// PostgresStore implements Store on the platform's Postgres schema. The
// unique index on affiliates.user_id is what makes the duplicate pre-check in
// the processor safe under concurrent creates.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	tracer trace.Tracer
}

func NewPostgresStore(db *sqlx.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("affinet/affiliate/store"),
	}
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "store.get",
		trace.WithAttributes(attribute.Int64("affiliate.id", id)),
	)
	defer span.End()

	sb := affiliateStruct.SelectFrom(affiliatesTable)
	sb.Where(sb.Equal("affiliate_id", id))

	query, args := sb.Build()
	var aff Affiliate
	err := s.db.GetContext(ctx, &aff, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAffiliateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get affiliate %d: %w", id, err)
	}
	return &aff, nil
}

func (s *PostgresStore) GetBy(ctx context.Context, field string, value any) (*Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "store.get_by",
		trace.WithAttributes(attribute.String("affiliate.field", field)),
	)
	defer span.End()

	if _, ok := filterableColumns[field]; !ok {
		return nil, fmt.Errorf("column %q is not queryable", field)
	}

	sb := affiliateStruct.SelectFrom(affiliatesTable)
	sb.Where(sb.Equal(field, SanitizeField(field, value)))

	query, args := sb.Build()
	var aff Affiliate
	err := s.db.GetContext(ctx, &aff, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAffiliateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get affiliate by %s: %w", field, err)
	}
	return &aff, nil
}

func (s *PostgresStore) Create(ctx context.Context, a *Affiliate) (*Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "store.create",
		trace.WithAttributes(attribute.Int64("user.id", a.UserID)),
	)
	defer span.End()

	// Empty optional fields are omitted so the schema defaults apply.
	cols := []string{"user_id", "earnings", "referrals", "visits"}
	vals := []any{a.UserID, a.Earnings, a.Referrals, a.Visits}
	optional := map[string]string{
		"rate":          a.Rate,
		"rate_type":     a.RateType,
		"payment_email": a.PaymentEmail,
		"status":        a.Status,
	}
	for _, col := range []string{"rate", "rate_type", "payment_email", "status"} {
		if optional[col] != "" {
			cols = append(cols, col)
			vals = append(vals, optional[col])
		}
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(affiliatesTable).Cols(cols...).Values(vals...)
	ib.Returning("affiliate_id", "user_id", "rate", "rate_type", "payment_email",
		"status", "earnings", "referrals", "visits", "date_registered")

	query, args := ib.Build()
	var created Affiliate
	err := s.db.QueryRowxContext(ctx, query, args...).StructScan(&created)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateAffiliate
		}
		s.logger.Error("failed to create affiliate",
			zap.Int64("user_id", a.UserID), zap.Error(err))
		return nil, fmt.Errorf("insert affiliate: %w", err)
	}

	return &created, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, fields map[string]string) error {
	ctx, span := s.tracer.Start(ctx, "store.update",
		trace.WithAttributes(attribute.Int64("affiliate.id", id)),
	)
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// account_email belongs to the linked user row, updated in the same
	// transaction as the affiliate.
	if email, ok := fields["account_email"]; ok {
		query := fmt.Sprintf(`
			UPDATE %s SET email = $1
			WHERE id = (SELECT user_id FROM %s WHERE affiliate_id = $2)
		`, usersTable, affiliatesTable)
		if _, err := tx.ExecContext(ctx, query, email, id); err != nil {
			return fmt.Errorf("update account email: %w", err)
		}
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(affiliatesTable)
	assignments := []string{}
	for _, col := range []string{"rate", "rate_type", "payment_email", "status"} {
		if val, ok := fields[col]; ok {
			if _, allowed := updatableColumns[col]; allowed {
				assignments = append(assignments, ub.Assign(col, val))
			}
		}
	}
	if len(assignments) > 0 {
		ub.Set(assignments...)
		ub.Where(ub.Equal("affiliate_id", id))

		query, args := ub.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			s.logger.Error("failed to update affiliate",
				zap.Int64("affiliate_id", id), zap.Error(err))
			return fmt.Errorf("update affiliate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, a *Affiliate, deleteData bool) error {
	ctx, span := s.tracer.Start(ctx, "store.delete",
		trace.WithAttributes(
			attribute.Int64("affiliate.id", a.AffiliateID),
			attribute.Bool("delete.data", deleteData),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if deleteData {
		for _, table := range []string{referralsTable, visitsTable} {
			del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
			del.DeleteFrom(table)
			del.Where(del.Equal("affiliate_id", a.AffiliateID))
			query, args := del.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
	}

	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom(affiliatesTable)
	del.Where(del.Equal("affiliate_id", a.AffiliateID))
	query, args := del.Build()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete affiliate: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAffiliateNotFound
	}

	return tx.Commit()
}

func (s *PostgresStore) List(ctx context.Context, args ListArgs) ([]Affiliate, error) {
	ctx, span := s.tracer.Start(ctx, "store.list")
	defer span.End()

	sb := affiliateStruct.SelectFrom(affiliatesTable)
	if err := applyFilters(sb, args.Filters); err != nil {
		return nil, err
	}

	orderBy := args.OrderBy
	if orderBy == "" {
		orderBy = "affiliate_id"
	}
	if _, ok := orderableColumns[orderBy]; !ok {
		return nil, fmt.Errorf("cannot order by %q", orderBy)
	}
	sb.OrderBy(orderBy)
	if args.Order == "desc" {
		sb.Desc()
	}
	if args.Number > 0 {
		sb.Limit(args.Number)
	}
	if args.Offset > 0 {
		sb.Offset(args.Offset)
	}

	query, qargs := sb.Build()
	var affiliates []Affiliate
	if err := s.db.SelectContext(ctx, &affiliates, query, qargs...); err != nil {
		return nil, fmt.Errorf("list affiliates: %w", err)
	}
	return affiliates, nil
}

func (s *PostgresStore) Count(ctx context.Context, args ListArgs) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "store.count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)").From(affiliatesTable)
	if err := applyFilters(sb, args.Filters); err != nil {
		return 0, err
	}

	query, qargs := sb.Build()
	var count int64
	if err := s.db.GetContext(ctx, &count, query, qargs...); err != nil {
		return 0, fmt.Errorf("count affiliates: %w", err)
	}
	return count, nil
}

// PaymentEmail resolves the payout address for an affiliate, falling back to
// the linked account's email when no payment email is stored.
func (s *PostgresStore) PaymentEmail(ctx context.Context, id int64) (string, error) {
	ctx, span := s.tracer.Start(ctx, "store.payment_email",
		trace.WithAttributes(attribute.Int64("affiliate.id", id)),
	)
	defer span.End()

	query := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(a.payment_email, ''), u.email)
		FROM %s a
		JOIN %s u ON u.id = a.user_id
		WHERE a.affiliate_id = $1
	`, affiliatesTable, usersTable)

	var email string
	err := s.db.GetContext(ctx, &email, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAffiliateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve payment email: %w", err)
	}
	return email, nil
}

// applyFilters adds exact-match conditions for each whitelisted column,
// sanitizing values through the entity's normalization rule first.
func applyFilters(sb *sqlbuilder.SelectBuilder, filters map[string]any) error {
	for field, value := range filters {
		if _, ok := filterableColumns[field]; !ok {
			return fmt.Errorf("column %q is not filterable", field)
		}
		sb.Where(sb.Equal(field, SanitizeField(field, value)))
	}
	return nil
}
