package account

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNormalizeEmail verifies case folding and trimming.
func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "user@innometrics.guru", NormalizeEmail("  User@InnoMetrics.GURU "))
}

// TestRegistrationComplete requires every field.
func TestRegistrationComplete(t *testing.T) {
	t.Parallel()

	full := Registration{Email: "a@b.c", Password: "p", Name: "Ivan", Surname: "Ivanov"}
	require.True(t, full.Complete())

	missing := full
	missing.Surname = ""
	require.False(t, missing.Complete())
}
