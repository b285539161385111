package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	require.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertDecimal compares got with the decimal literal want by value, so
// "320000" equals "320000.00".
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) bool {
	t.Helper()
	w := decimal.RequireFromString(want)
	if got.Equal(w) {
		return true
	}
	return assert.Fail(t, "decimal mismatch: want "+w.String()+", got "+got.String(), msgAndArgs...)
}
