package proc

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPacing(t *testing.T) {
	t.Helper()
	oldInterval, oldBackoff := PingInterval, RateLimitBackoff
	PingInterval = time.Millisecond
	RateLimitBackoff = time.Millisecond
	t.Cleanup(func() {
		PingInterval = oldInterval
		RateLimitBackoff = oldBackoff
	})
}

func waitDone(t *testing.T, done chan int) int {
	t.Helper()
	select {
	case sent := <-done:
		return sent
	case <-time.After(5 * time.Second):
		t.Fatal("mass ping did not finish in time")
		return 0
	}
}

func TestStartMassPing_SendsRequestedCount(t *testing.T) {
	fastPacing(t)

	var sends atomic.Int32
	done := make(chan int, 1)
	err := StartMassPing(context.Background(), 1, 2, 5, func(ctx context.Context) error {
		sends.Add(1)
		return nil
	}, func(sent int) { done <- sent })
	require.NoError(t, err)

	assert.Equal(t, 5, waitDone(t, done))
	assert.Equal(t, int32(5), sends.Load())
	assert.False(t, IsPinging(1, 2), "slot is released after the run")
}

func TestStartMassPing_RejectsBadCount(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, StartMassPing(context.Background(), 1, 2, 0, noop, nil))
	assert.Error(t, StartMassPing(context.Background(), 1, 2, 51, noop, nil))
}

func TestStartMassPing_OneFlightPerTarget(t *testing.T) {
	fastPacing(t)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)

	var once atomic.Bool
	err := StartMassPing(context.Background(), 1, 2, 3, func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-release
		return nil
	}, func(sent int) { done <- sent })
	require.NoError(t, err)
	<-started

	// Same target is refused while running, a different target is not.
	err = StartMassPing(context.Background(), 1, 2, 3, func(ctx context.Context) error { return nil }, nil)
	assert.Error(t, err)
	assert.True(t, IsPinging(1, 2))

	active := ActivePings(1)
	require.Contains(t, active, snowflake.ID(2))
	assert.Equal(t, 3, active[2].Total)
	assert.Empty(t, ActivePings(99), "other guilds see no pings")

	otherDone := make(chan int, 1)
	err = StartMassPing(context.Background(), 1, 3, 1, func(ctx context.Context) error { return nil }, func(sent int) { otherDone <- sent })
	require.NoError(t, err)
	waitDone(t, otherDone)

	close(release)
	waitDone(t, done)

	// The slot frees up once the first run completes.
	err = StartMassPing(context.Background(), 1, 2, 1, func(ctx context.Context) error { return nil }, func(sent int) { done <- sent })
	require.NoError(t, err)
	waitDone(t, done)
}

func TestStopMassPing_CancelsRun(t *testing.T) {
	fastPacing(t)

	started := make(chan struct{})
	done := make(chan int, 1)

	var once atomic.Bool
	err := StartMassPing(context.Background(), 1, 2, 1000, func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		return nil
	}, func(sent int) { done <- sent })
	require.NoError(t, err)
	<-started

	assert.True(t, StopMassPing(1, 2))
	sent := waitDone(t, done)
	assert.Less(t, sent, 1000, "stop must interrupt the run")

	assert.False(t, StopMassPing(1, 2), "stopping an inactive target reports false")
}

func TestStopMassPing_StoppedRunCannotReleaseSuccessorClaim(t *testing.T) {
	fastPacing(t)

	started := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan int, 1)

	var once atomic.Bool
	err := StartMassPing(context.Background(), 1, 2, 5, func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-release
		return nil
	}, func(sent int) { firstDone <- sent })
	require.NoError(t, err)
	<-started

	// Stopping does not free the slot while the old run is still inside
	// send, a restart must wait for it to wind down.
	require.True(t, StopMassPing(1, 2))
	err = StartMassPing(context.Background(), 1, 2, 1, func(ctx context.Context) error { return nil }, nil)
	assert.Error(t, err, "slot stays claimed until the stopped run exits")

	close(release)
	waitDone(t, firstDone)

	// Restart, then make sure nothing left over from the old run can
	// clear the new claim out from under it.
	restarted := make(chan struct{})
	release2 := make(chan struct{})
	secondDone := make(chan int, 1)
	var once2 atomic.Bool
	err = StartMassPing(context.Background(), 1, 2, 3, func(ctx context.Context) error {
		if once2.CompareAndSwap(false, true) {
			close(restarted)
		}
		<-release2
		return nil
	}, func(sent int) { secondDone <- sent })
	require.NoError(t, err)
	<-restarted

	assert.True(t, IsPinging(1, 2), "restarted run holds the slot")
	err = StartMassPing(context.Background(), 1, 2, 1, func(ctx context.Context) error { return nil }, nil)
	assert.Error(t, err, "a third run is refused while the restart is in flight")

	close(release2)
	waitDone(t, secondDone)
	assert.False(t, IsPinging(1, 2))
}

func TestStartMassPing_ContextCancelInterrupts(t *testing.T) {
	fastPacing(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)

	err := StartMassPing(ctx, 1, 2, 1000, func(ctx context.Context) error {
		return nil
	}, func(sent int) { done <- sent })
	require.NoError(t, err)

	cancel()
	sent := waitDone(t, done)
	assert.Less(t, sent, 1000)
}

func TestStartMassPing_ContinuesPastSendErrors(t *testing.T) {
	fastPacing(t)

	var calls atomic.Int32
	done := make(chan int, 1)
	err := StartMassPing(context.Background(), 1, 2, 4, func(ctx context.Context) error {
		if calls.Add(1) == 2 {
			return errors.New("send failed")
		}
		return nil
	}, func(sent int) { done <- sent })
	require.NoError(t, err)

	sent := waitDone(t, done)
	assert.Equal(t, 3, sent, "failed sends are not counted")
	assert.Equal(t, int32(4), calls.Load(), "a failed send does not abort the run")
}

func TestStartMassPing_BacksOffOnRateLimit(t *testing.T) {
	fastPacing(t)
	RateLimitBackoff = 50 * time.Millisecond

	rateLimited := &rest.Error{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}

	var calls atomic.Int32
	done := make(chan int, 1)
	start := time.Now()
	err := StartMassPing(context.Background(), 1, 2, 2, func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return rateLimited
		}
		return nil
	}, func(sent int) { done <- sent })
	require.NoError(t, err)

	sent := waitDone(t, done)
	assert.Equal(t, 1, sent)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "rate limited send must back off")
}
