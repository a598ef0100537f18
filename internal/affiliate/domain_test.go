// internal/affiliate/domain_test.go
package affiliate

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSanitizeFieldCoercesIntegerFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		want  int64
	}{
		{"int passes through", "affiliate_id", 42, 42},
		{"int64 passes through", "user_id", int64(7), 7},
		{"float truncates", "referrals", 12.9, 12},
		{"negative float truncates", "visits", -3.7, -3},
		{"numeric string parses", "affiliate_id", "102", 102},
		{"decimal string truncates", "user_id", "12.9", 12},
		{"padded string parses", "referrals", " 7 ", 7},
		{"non-numeric string coerces to zero", "visits", "abc", 0},
		{"bool true is one", "referrals", true, 1},
		{"nil coerces to zero", "user_id", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeField(tt.field, tt.value)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFieldLeavesOtherFieldsUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		field := rapid.SampledFrom([]string{
			"rate", "rate_type", "payment_email", "status", "earnings", "date_registered",
		}).Draw(t, "field")
		value := rapid.String().Draw(t, "value")

		if got := SanitizeField(field, value); got != value {
			t.Fatalf("SanitizeField(%q, %q) = %v, want identity", field, value, got)
		}
	})
}

func TestSanitizeFieldNumericRepresentations(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		field := rapid.SampledFrom([]string{
			"affiliate_id", "user_id", "referrals", "visits",
		}).Draw(t, "field")
		// Stay inside float64's exact-integer range so every representation
		// carries the same value.
		n := rapid.Int64Range(-1<<31, 1<<31).Draw(t, "n")

		forms := []any{n, int(n), float64(n), strconv.FormatInt(n, 10)}
		for _, form := range forms {
			if got := SanitizeField(field, form); got != n {
				t.Fatalf("SanitizeField(%q, %v (%T)) = %v, want %d", field, form, form, got, n)
			}
		}
	})
}

func TestSanitizeFieldIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		field := rapid.SampledFrom([]string{
			"affiliate_id", "user_id", "referrals", "visits",
			"rate", "status", "payment_email",
		}).Draw(t, "field")
		value := rapid.OneOf(
			rapid.Int64().AsAny(),
			rapid.Float64Range(-1e12, 1e12).AsAny(),
			rapid.String().AsAny(),
			rapid.Bool().AsAny(),
		).Draw(t, "value")

		once := SanitizeField(field, value)
		twice := SanitizeField(field, once)
		if once != twice {
			t.Fatalf("SanitizeField not idempotent for (%q, %v): %v != %v", field, value, once, twice)
		}
	})
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusActive))
	assert.True(t, ValidStatus(StatusInactive))
	assert.True(t, ValidStatus(StatusPending))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("bogus"))
	assert.False(t, ValidStatus("Active"))
}
