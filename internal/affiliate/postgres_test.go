// internal/affiliate/postgres_test.go
package affiliate

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"affinet/internal/database"
)

// setupTestDB connects to a local Postgres and prepares the schema. The test
// is skipped when no database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	host := envOr("PGHOST", "localhost")
	port := envOr("PGPORT", "5432")
	user := envOr("PGUSER", "affinet")
	password := envOr("PGPASSWORD", "affinet")
	dbname := envOr("PGDATABASE", "affinet_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)

	if err := db.Ping(); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}

	require.NoError(t, database.Migrate(db))

	_, err = db.Exec("TRUNCATE TABLE visit_records, referral_records, affiliates, user_sites, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createTestUser(t *testing.T, db *sqlx.DB, login, email string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		"INSERT INTO users (login, email) VALUES ($1, $2) RETURNING id", login, email,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestPostgresStoreCreate(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostgresStore(db, zap.NewNop())
	ctx := context.Background()
	userID := createTestUser(t, db, "alice", "alice@example.com")

	created, err := store.Create(ctx, &Affiliate{UserID: userID, Rate: "15", RateType: "flat"})
	require.NoError(t, err)
	assert.NotZero(t, created.AffiliateID)
	assert.Equal(t, "15", created.Rate)
	assert.Equal(t, "flat", created.RateType)
	assert.False(t, created.DateRegistered.IsZero())

	t.Run("empty fields take schema defaults", func(t *testing.T) {
		bobID := createTestUser(t, db, "bob", "bob@example.com")
		created, err := store.Create(ctx, &Affiliate{UserID: bobID})
		require.NoError(t, err)
		assert.Equal(t, "20", created.Rate)
		assert.Equal(t, "percentage", created.RateType)
		assert.Equal(t, StatusActive, created.Status)
	})

	t.Run("second affiliate for the same user is rejected", func(t *testing.T) {
		_, err := store.Create(ctx, &Affiliate{UserID: userID})
		require.ErrorIs(t, err, ErrDuplicateAffiliate)
	})
}

func TestPostgresStoreGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostgresStore(db, zap.NewNop())
	ctx := context.Background()
	userID := createTestUser(t, db, "alice", "alice@example.com")

	created, err := store.Create(ctx, &Affiliate{UserID: userID})
	require.NoError(t, err)

	got, err := store.Get(ctx, created.AffiliateID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	_, err = store.Get(ctx, 9999)
	require.ErrorIs(t, err, ErrAffiliateNotFound)

	t.Run("by user_id with string input", func(t *testing.T) {
		got, err := store.GetBy(ctx, "user_id", fmt.Sprint(userID))
		require.NoError(t, err)
		assert.Equal(t, created.AffiliateID, got.AffiliateID)
	})

	t.Run("unqueryable column", func(t *testing.T) {
		_, err := store.GetBy(ctx, "login; DROP TABLE users", 1)
		require.Error(t, err)
	})
}

func TestPostgresStoreUpdate(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostgresStore(db, zap.NewNop())
	ctx := context.Background()
	userID := createTestUser(t, db, "alice", "alice@example.com")

	created, err := store.Create(ctx, &Affiliate{UserID: userID})
	require.NoError(t, err)

	err = store.Update(ctx, created.AffiliateID, map[string]string{
		"rate":          "30",
		"status":        StatusInactive,
		"account_email": "new@example.com",
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, created.AffiliateID)
	require.NoError(t, err)
	assert.Equal(t, "30", got.Rate)
	assert.Equal(t, StatusInactive, got.Status)
	// rate_type untouched
	assert.Equal(t, "percentage", got.RateType)

	var email string
	require.NoError(t, db.Get(&email, "SELECT email FROM users WHERE id = $1", userID))
	assert.Equal(t, "new@example.com", email)
}

func TestPostgresStoreDelete(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostgresStore(db, zap.NewNop())
	ctx := context.Background()
	userID := createTestUser(t, db, "alice", "alice@example.com")

	created, err := store.Create(ctx, &Affiliate{UserID: userID})
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO referral_records (affiliate_id, amount) VALUES ($1, 10)", created.AffiliateID)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO visit_records (affiliate_id, url) VALUES ($1, '/ref')", created.AffiliateID)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created, true))

	_, err = store.Get(ctx, created.AffiliateID)
	require.ErrorIs(t, err, ErrAffiliateNotFound)

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM referral_records WHERE affiliate_id = $1", created.AffiliateID))
	assert.Zero(t, n)
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM visit_records WHERE affiliate_id = $1", created.AffiliateID))
	assert.Zero(t, n)
}

func TestPostgresStoreListAndCount(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostgresStore(db, zap.NewNop())
	ctx := context.Background()

	for i, status := range []string{StatusActive, StatusActive, StatusPending} {
		userID := createTestUser(t, db, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i))
		_, err := store.Create(ctx, &Affiliate{UserID: userID, Status: status})
		require.NoError(t, err)
	}

	t.Run("filter by status", func(t *testing.T) {
		got, err := store.List(ctx, ListArgs{Filters: map[string]any{"status": StatusActive}})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("order and limit", func(t *testing.T) {
		got, err := store.List(ctx, ListArgs{OrderBy: "affiliate_id", Order: "desc", Number: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(3), got[0].AffiliateID)
	})

	t.Run("count with filter", func(t *testing.T) {
		n, err := store.Count(ctx, ListArgs{Filters: map[string]any{"status": StatusPending}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("unfilterable column", func(t *testing.T) {
		_, err := store.List(ctx, ListArgs{Filters: map[string]any{"bogus": 1}})
		require.Error(t, err)
	})
}

func TestPostgresStorePaymentEmail(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostgresStore(db, zap.NewNop())
	ctx := context.Background()

	userID := createTestUser(t, db, "alice", "alice@example.com")
	created, err := store.Create(ctx, &Affiliate{UserID: userID})
	require.NoError(t, err)

	// No payment email stored: fall back to the account email.
	email, err := store.PaymentEmail(ctx, created.AffiliateID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	require.NoError(t, store.Update(ctx, created.AffiliateID, map[string]string{"payment_email": "pay@alice.dev"}))
	email, err = store.PaymentEmail(ctx, created.AffiliateID)
	require.NoError(t, err)
	assert.Equal(t, "pay@alice.dev", email)
}
