package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardStartsOpenWithoutKey(t *testing.T) {
	guard := NewGuard(NewKeyStore(""))

	assert.Equal(t, StateOpen, guard.State())
	assert.True(t, guard.UsingMockData())
	assert.NotEmpty(t, guard.Notice())
}

func TestGuardStartsClosedWithKey(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"))

	assert.Equal(t, StateClosed, guard.State())
	assert.False(t, guard.UsingMockData())
	assert.Empty(t, guard.Notice())
}

func TestDoServesMockWhenOpen(t *testing.T) {
	guard := NewGuard(NewKeyStore(""))

	liveCalls := 0
	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) {
			liveCalls++
			return "live", nil
		},
		func() string { return "mock" })

	require.NoError(t, err)
	assert.True(t, mocked)
	assert.Equal(t, "mock", result)
	assert.Zero(t, liveCalls, "an open guard must never attempt a live call")
}

func TestDoLiveSuccess(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"))

	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) { return "live", nil },
		func() string { return "mock" })

	require.NoError(t, err)
	assert.False(t, mocked)
	assert.Equal(t, "live", result)
	assert.Equal(t, StateClosed, guard.State())
}

func TestDoQuotaTripsWithoutRetry(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"))

	liveCalls := 0
	quotaErr := &APIError{Model: "m", HTTPStatus: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}

	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) {
			liveCalls++
			return "", quotaErr
		},
		func() string { return "mock" })

	require.NoError(t, err)
	assert.True(t, mocked)
	assert.Equal(t, "mock", result)
	assert.Equal(t, 1, liveCalls, "quota exhaustion must trip immediately, no retry")
	assert.Equal(t, StateOpen, guard.State())
	assert.Contains(t, guard.Notice(), "quota")
}

func TestDoRetriesOnceThenTrips(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"))

	liveCalls := 0
	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) {
			liveCalls++
			return "", errors.New("transient")
		},
		func() string { return "mock" })

	require.NoError(t, err)
	assert.True(t, mocked)
	assert.Equal(t, "mock", result)
	assert.Equal(t, 2, liveCalls, "exactly one same-arguments retry")
	assert.Equal(t, StateOpen, guard.State())
}

func TestDoRetrySalvagesTransientFailure(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"))

	liveCalls := 0
	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) {
			liveCalls++
			if liveCalls == 1 {
				return "", errors.New("transient")
			}
			return "live", nil
		},
		func() string { return "mock" })

	require.NoError(t, err)
	assert.False(t, mocked)
	assert.Equal(t, "live", result)
	assert.Equal(t, StateClosed, guard.State())
}

func TestGuardStaysTrippedForSession(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"))

	// Trip it
	_, _, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) { return "", errors.New("down") },
		func() string { return "mock" })
	require.NoError(t, err)
	require.Equal(t, StateOpen, guard.State())

	// With no cool-down every later call serves mock data, no live attempts
	liveCalls := 0
	for i := 0; i < 5; i++ {
		_, mocked, err := Do(context.Background(), guard,
			func(ctx context.Context) (string, error) {
				liveCalls++
				return "live", nil
			},
			func() string { return "mock" })
		require.NoError(t, err)
		assert.True(t, mocked)
	}
	assert.Zero(t, liveCalls)
	assert.Equal(t, StateOpen, guard.State())
}

func TestSetAPIKeyResetsGuard(t *testing.T) {
	keys := NewKeyStore("")
	guard := NewGuard(keys)
	require.Equal(t, StateOpen, guard.State())

	guard.SetAPIKey("fresh-key")

	assert.Equal(t, StateClosed, guard.State())
	assert.Empty(t, guard.Notice())
	assert.Equal(t, "fresh-key", keys.Resolve())

	// Live calls flow again
	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) { return "live", nil },
		func() string { return "mock" })
	require.NoError(t, err)
	assert.False(t, mocked)
	assert.Equal(t, "live", result)
}

func TestGuardHalfOpenAfterCoolDown(t *testing.T) {
	guard := NewGuard(NewKeyStore("key"), WithCoolDown(10*time.Millisecond))

	_, _, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) { return "", errors.New("down") },
		func() string { return "mock" })
	require.NoError(t, err)
	require.Equal(t, StateOpen, guard.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, guard.State())

	// A successful probe closes the circuit
	result, mocked, err := Do(context.Background(), guard,
		func(ctx context.Context) (string, error) { return "live", nil },
		func() string { return "mock" })
	require.NoError(t, err)
	assert.False(t, mocked)
	assert.Equal(t, "live", result)
	assert.Equal(t, StateClosed, guard.State())
}
