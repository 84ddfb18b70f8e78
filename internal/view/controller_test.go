package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevedit/internal/timeutil"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestController(total float64) (*Controller, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(epoch)
	return NewController(total, WithClock(clock)), clock
}

// settle runs frames until the animation completes
func settle(t *testing.T, c *Controller, clock *timeutil.MockClock) {
	t.Helper()
	for i := 0; c.Animating(); i++ {
		require.Less(t, i, 100, "animation did not finish")
		c.Frame(c.Generation(), clock.Advance(FrameInterval))
	}
}

func TestZoomInFromFull(t *testing.T) {
	c, clock := newTestController(10000)

	require.True(t, c.ZoomIn())
	settle(t, c, clock)

	d, ok := c.Domain()
	require.True(t, ok)
	assert.InDelta(t, 500, d.Min, 1e-9)
	assert.InDelta(t, 9500, d.Max, 1e-9)
}

func TestZoomFloor(t *testing.T) {
	c, clock := newTestController(10000)

	for i := 0; i < 200; i++ {
		c.ZoomIn()
		settle(t, c, clock)
		assert.GreaterOrEqual(t, c.Visible().Width(), 500.0)
	}
	assert.False(t, c.ZoomIn(), "zoom past the floor must be refused")
	assert.Less(t, c.Visible().Width(), 500/ZoomInFactor)
}

func TestZoomOutSnapsToFull(t *testing.T) {
	c, clock := newTestController(10000)

	assert.False(t, c.ZoomOut(), "already at full view")

	c.SetDomain(Domain{Min: 1000, Max: 5000})
	require.True(t, c.ZoomOut())
	settle(t, c, clock)
	d, ok := c.Domain()
	require.True(t, ok)
	assert.InDelta(t, 4400, d.Width(), 1e-9)
	assert.InDelta(t, 3000, d.Center(), 1e-9)

	c.SetDomain(Domain{Min: 200, Max: 9800})
	require.True(t, c.ZoomOut())
	settle(t, c, clock)
	_, ok = c.Domain()
	assert.False(t, ok, "window covering the track becomes the full view")
}

func TestZoomOutClampsToTrack(t *testing.T) {
	c, clock := newTestController(10000)
	c.SetDomain(Domain{Min: 0, Max: 2000})

	require.True(t, c.ZoomOut())
	settle(t, c, clock)

	d, _ := c.Domain()
	assert.Equal(t, 0.0, d.Min)
	assert.InDelta(t, 2200, d.Max, 1e-9)
}

func TestPan(t *testing.T) {
	tests := []struct {
		name  string
		from  Domain
		right bool
		want  Domain
		moved bool
	}{
		{"right clamps flush to end", Domain{8000, 9500}, true, Domain{8500, 10000}, true},
		{"right mid track", Domain{2000, 4000}, true, Domain{2400, 4400}, true},
		{"left mid track", Domain{2000, 4000}, false, Domain{1600, 3600}, true},
		{"left clamps flush to start", Domain{300, 1800}, false, Domain{0, 1500}, true},
		{"right at end is a no-op", Domain{8500, 10000}, true, Domain{8500, 10000}, false},
		{"left at start is a no-op", Domain{0, 1500}, false, Domain{0, 1500}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestController(10000)
			c.SetDomain(tt.from)

			var moved bool
			if tt.right {
				moved = c.PanRight()
			} else {
				moved = c.PanLeft()
			}
			settle(t, c, clock)

			assert.Equal(t, tt.moved, moved)
			d, ok := c.Domain()
			require.True(t, ok)
			assert.InDelta(t, tt.want.Min, d.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, d.Max, 1e-9)
			assert.InDelta(t, tt.from.Width(), d.Width(), 1e-9, "width must be preserved")
		})
	}
}

func TestPanFullViewIsNoop(t *testing.T) {
	c, _ := newTestController(10000)
	assert.False(t, c.PanLeft())
	assert.False(t, c.PanRight())
	assert.False(t, c.Animating())
	assert.False(t, c.Zoomed())
}

func TestAnimationEasing(t *testing.T) {
	c, clock := newTestController(10000)
	require.True(t, c.ZoomIn())
	gen := c.Generation()

	// halfway in time is 87.5% of the way in space
	require.True(t, c.Frame(gen, clock.Advance(150*time.Millisecond)))
	d := c.Visible()
	assert.InDelta(t, 500*EaseOutCubic(0.5), d.Min, 1e-6)
	assert.InDelta(t, 437.5, d.Min, 1e-6)

	assert.False(t, c.Frame(gen, clock.Advance(150*time.Millisecond)))
	assert.False(t, c.Animating())
	assert.InDelta(t, 500, c.Visible().Min, 1e-9)
}

func TestNewAnimationCancelsPrevious(t *testing.T) {
	c, clock := newTestController(10000)
	require.True(t, c.ZoomIn())
	stale := c.Generation()
	c.Frame(stale, clock.Advance(50*time.Millisecond))

	require.True(t, c.ZoomIn())
	assert.NotEqual(t, stale, c.Generation())
	before := c.Visible()
	assert.False(t, c.Frame(stale, clock.Advance(time.Second)), "stale frame must be ignored")
	assert.Equal(t, before, c.Visible())
	assert.True(t, c.Animating())

	settle(t, c, clock)
	assert.False(t, c.Animating())
}

func TestResetAndSetDomainAreImmediate(t *testing.T) {
	c, clock := newTestController(10000)
	require.True(t, c.ZoomIn())
	gen := c.Generation()

	c.SetDomain(Domain{Min: 1000, Max: 3000})
	assert.False(t, c.Animating())
	assert.Equal(t, Domain{1000, 3000}, c.Visible())
	assert.False(t, c.Frame(gen, clock.Advance(time.Second)))

	c.Reset()
	_, ok := c.Domain()
	assert.False(t, ok)
	assert.Equal(t, Domain{0, 10000}, c.Visible())
}

func TestSetDomainClamps(t *testing.T) {
	c, _ := newTestController(10000)

	c.SetDomain(Domain{Min: 9000, Max: 11000})
	assert.Equal(t, Domain{8000, 10000}, c.Visible())

	c.SetDomain(Domain{Min: -500, Max: 1000})
	assert.Equal(t, Domain{0, 1500}, c.Visible())

	c.SetDomain(Domain{Min: -1, Max: 20000})
	assert.False(t, c.Zoomed())
}

func TestCloseStopsFrames(t *testing.T) {
	c, clock := newTestController(10000)
	require.True(t, c.ZoomIn())
	gen := c.Generation()
	c.Close()

	assert.False(t, c.Frame(gen, clock.Advance(100*time.Millisecond)))
	assert.False(t, c.ZoomIn())
	assert.Equal(t, Domain{0, 10000}, c.Visible())
}

func TestZeroDurationAppliesImmediately(t *testing.T) {
	c := NewController(10000, WithDuration(0))
	assert.False(t, c.ZoomIn(), "no frames needed")
	assert.Equal(t, Domain{500, 9500}, c.Visible())
}

func TestEmptyTrack(t *testing.T) {
	c, _ := newTestController(0)
	assert.False(t, c.ZoomIn())
	assert.False(t, c.ZoomOut())
	c.SetDomain(Domain{0, 10})
	assert.False(t, c.Zoomed())
}
