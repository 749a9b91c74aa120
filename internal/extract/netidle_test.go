package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fired(t *idleTracker, within time.Duration) bool {
	select {
	case <-t.done():
		return true
	case <-time.After(within):
		return false
	}
}

func TestIdleTracker_FiresAfterQuietPeriod(t *testing.T) {
	tr := newIdleTracker(2, 20*time.Millisecond)
	defer tr.stop()

	tr.started("a")
	tr.arm()
	assert.True(t, fired(tr, time.Second))
}

func TestIdleTracker_WaitsForArm(t *testing.T) {
	tr := newIdleTracker(0, 10*time.Millisecond)
	defer tr.stop()

	assert.False(t, fired(tr, 60*time.Millisecond))
	tr.arm()
	assert.True(t, fired(tr, time.Second))
}

func TestIdleTracker_BusyNetworkHoldsSignal(t *testing.T) {
	tr := newIdleTracker(2, 10*time.Millisecond)
	defer tr.stop()

	tr.started("a")
	tr.started("b")
	tr.started("c")
	tr.arm()
	assert.False(t, fired(tr, 60*time.Millisecond))

	tr.finished("c")
	assert.True(t, fired(tr, time.Second))
}

func TestIdleTracker_ActivityRestartsQuietPeriod(t *testing.T) {
	tr := newIdleTracker(0, 80*time.Millisecond)
	defer tr.stop()

	tr.arm()
	time.Sleep(40 * time.Millisecond)
	tr.started("late")
	tr.finished("late")
	assert.False(t, fired(tr, 50*time.Millisecond), "quiet period restarts on activity")
	assert.True(t, fired(tr, time.Second))
}

func TestIdleTracker_StopPreventsSignal(t *testing.T) {
	tr := newIdleTracker(2, 10*time.Millisecond)
	tr.arm()
	tr.stop()
	assert.False(t, fired(tr, 60*time.Millisecond))
}
