// internal/account/postgres.go
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	usersTable     = "users"
	userSitesTable = "user_sites"
)

var userStruct = sqlbuilder.NewStruct(new(Account)).For(sqlbuilder.PostgreSQL)

// PostgresService implements Service against the platform's users tables.
type PostgresService struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostgresService(db *sqlx.DB, logger *zap.Logger) *PostgresService {
	return &PostgresService{db: db, logger: logger}
}

func (s *PostgresService) GetByID(ctx context.Context, id int64) (*Account, error) {
	sb := userStruct.SelectFrom(usersTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var acct Account
	err := s.db.GetContext(ctx, &acct, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &acct, nil
}

func (s *PostgresService) GetByLogin(ctx context.Context, login string) (*Account, error) {
	sb := userStruct.SelectFrom(usersTable)
	sb.Where(sb.Equal("login", login))

	query, args := sb.Build()
	var acct Account
	err := s.db.GetContext(ctx, &acct, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by login: %w", err)
	}
	return &acct, nil
}

func (s *PostgresService) Delete(ctx context.Context, id int64) error {
	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom(usersTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}

	s.logger.Info("account deleted", zap.Int64("user_id", id))
	return nil
}

func (s *PostgresService) DeleteNetworkWide(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sites := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sites.DeleteFrom(userSitesTable)
	sites.Where(sites.Equal("user_id", id))
	query, args := sites.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete site memberships: %w", err)
	}

	user := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	user.DeleteFrom(usersTable)
	user.Where(user.Equal("id", id))
	query, args = user.Build()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("account deleted network-wide", zap.Int64("user_id", id))
	return nil
}
