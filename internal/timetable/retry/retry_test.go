package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/transit-daytable/internal/common/errors"
)

var fast = Policy{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	var notified []int

	err := Do(context.Background(), fast, func() error {
		calls++
		if calls < 3 {
			return perr.New(perr.KindTransient, "test", "503")
		}
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		notified = append(notified, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDoEscalatesAfterAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, func() error {
		calls++
		return perr.New(perr.KindTransient, "test", "503")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, perr.KindTransient, perr.KindOf(err))
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestDoDoesNotRetryFatalKinds(t *testing.T) {
	for _, kind := range []perr.Kind{perr.KindQuotaOrAuth, perr.KindGeocode, perr.KindNoTransitOptions} {
		calls := 0
		err := Do(context.Background(), fast, func() error {
			calls++
			return perr.New(kind, "test", "nope")
		}, nil)

		require.Error(t, err)
		assert.Equal(t, 1, calls, "kind %s", kind)
		assert.Equal(t, kind, perr.KindOf(err))
	}
}

func TestDoCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := Policy{Attempts: 5, Initial: time.Hour, Max: time.Hour}

	err := Do(ctx, slow, func() error {
		return perr.New(perr.KindTransient, "test", "503")
	}, func(int, error, time.Duration) {
		cancel()
	})

	require.Error(t, err)
	assert.Equal(t, perr.KindCanceled, perr.KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}
