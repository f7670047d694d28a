package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// RequireNotZeroUUID checks that id is set and stops the test otherwise.
func RequireNotZeroUUID(t *testing.T, id uuid.UUID, msgAndArgs ...any) {
	t.Helper()

	require.False(t, id.IsZero(), msgAndArgs...)
}

// AssertTimeApproximatelyEqual checks that two times differ by at most delta.
// Stored times lose sub-millisecond precision, so exact comparison rarely works.
func AssertTimeApproximatelyEqual(t *testing.T, expected, actual time.Time, delta time.Duration, msgAndArgs ...any) {
	t.Helper()

	diff := expected.Sub(actual).Abs()
	assert.LessOrEqual(t, diff, delta, append([]any{
		"expected time %v to be within %v of %v, but difference was %v",
		actual, delta, expected, diff,
	}, msgAndArgs...)...)
}
