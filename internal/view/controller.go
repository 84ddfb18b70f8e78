// Package view owns the visible distance window of the elevation chart:
// animated zoom and pan over the track, and the pure geometry that maps
// distances to chart columns.
package view

import (
	"math"
	"time"

	"elevedit/internal/timeutil"
)

// Zoom/pan tuning
const (
	ZoomInFactor     = 0.9  // range multiplier per zoom-in step
	ZoomOutFactor    = 1.1  // range multiplier per zoom-out step
	MinRangeFraction = 0.05 // narrowest window as a fraction of the track
	PanFraction      = 0.2  // shift per pan step as a fraction of the window

	DefaultAnimationDuration = 300 * time.Millisecond
	// FrameInterval is the delay between animation frames (~60 fps)
	FrameInterval = 16 * time.Millisecond
)

// Domain is a visible distance interval in meters
type Domain struct {
	Min float64
	Max float64
}

// Width returns the length of the interval
func (d Domain) Width() float64 {
	return d.Max - d.Min
}

// Center returns the midpoint of the interval
func (d Domain) Center() float64 {
	return (d.Min + d.Max) / 2
}

type animation struct {
	gen    uint64
	from   Domain
	to     Domain
	toFull bool
	start  time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithClock sets the time source used to start animations
func WithClock(c timeutil.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithDuration sets the animation length. Zero applies changes immediately.
func WithDuration(d time.Duration) Option {
	return func(ctl *Controller) { ctl.duration = max(d, 0) }
}

// Controller tracks the zoom window over [0, total]. A nil domain means the
// whole track is visible.
//
// Animated changes are advanced by Frame. Each animation carries a generation;
// starting another animation, Reset, SetDomain or Close bump the generation so
// that frames scheduled for the old animation are ignored.
type Controller struct {
	total    float64
	domain   *Domain
	clock    timeutil.Clock
	duration time.Duration

	anim   *animation
	gen    uint64
	closed bool
}

// NewController creates a controller showing the full track
func NewController(totalDistance float64, opts ...Option) *Controller {
	c := &Controller{
		total:    math.Max(totalDistance, 0),
		clock:    timeutil.RealClock{},
		duration: DefaultAnimationDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TotalDistance returns the length of the full domain
func (c *Controller) TotalDistance() float64 {
	return c.total
}

// Domain returns the explicit window. ok is false in the full view.
func (c *Controller) Domain() (d Domain, ok bool) {
	if c.domain == nil {
		return Domain{}, false
	}
	return *c.domain, true
}

// Visible returns the interval currently on screen
func (c *Controller) Visible() Domain {
	if c.domain == nil {
		return Domain{Min: 0, Max: c.total}
	}
	return *c.domain
}

// Zoomed reports whether an explicit window is shown
func (c *Controller) Zoomed() bool {
	return c.domain != nil
}

// Animating reports whether an animation is in flight
func (c *Controller) Animating() bool {
	return c.anim != nil
}

// Generation identifies the current animation for frame scheduling
func (c *Controller) Generation() uint64 {
	return c.gen
}

// ZoomIn narrows the window to 90% around its centre. It is refused when the
// result would be narrower than 5% of the track. It returns true when an
// animation started.
func (c *Controller) ZoomIn() bool {
	if !c.usable() {
		return false
	}
	cur := c.Visible()
	width := cur.Width() * ZoomInFactor
	if width < c.total*MinRangeFraction {
		return false
	}
	return c.animateTo(c.around(cur.Center(), width), false)
}

// ZoomOut widens the window to 110% around its centre, snapping to the full
// view once it would cover the whole track.
func (c *Controller) ZoomOut() bool {
	if !c.usable() || c.domain == nil {
		return false
	}
	cur := c.Visible()
	width := cur.Width() * ZoomOutFactor
	if width >= c.total {
		return c.animateTo(Domain{Min: 0, Max: c.total}, true)
	}
	return c.animateTo(c.around(cur.Center(), width), false)
}

// PanLeft shifts the window toward the start by 20% of its width
func (c *Controller) PanLeft() bool {
	return c.pan(-1)
}

// PanRight shifts the window toward the end by 20% of its width
func (c *Controller) PanRight() bool {
	return c.pan(1)
}

// pan is a no-op in the full view. The width is preserved; a window that
// would stop short of a boundary by less than one step is moved flush to it.
// The snap is deliberate, not a plain clamp: on a 10000 m track, panning
// [8000,9500] right must give [8500,10000], where a clamped 20% shift would
// stop at [8300,9800] and leave a 200 m sliver needing one more press.
func (c *Controller) pan(dir float64) bool {
	if !c.usable() || c.domain == nil {
		return false
	}
	cur := *c.domain
	width := cur.Width()
	step := width * PanFraction

	next := Domain{Min: cur.Min + dir*step, Max: cur.Max + dir*step}
	switch {
	case next.Max > c.total-step:
		next = Domain{Min: c.total - width, Max: c.total}
	case next.Min < step:
		next = Domain{Min: 0, Max: width}
	}
	if next == cur {
		return false
	}
	return c.animateTo(next, false)
}

// Reset returns to the full view immediately
func (c *Controller) Reset() {
	c.cancel()
	c.domain = nil
}

// SetDomain installs d without animation, clamped into the track. A window
// covering the whole track becomes the full view.
func (c *Controller) SetDomain(d Domain) {
	c.cancel()
	if !c.usable() {
		c.domain = nil
		return
	}
	width := math.Min(math.Max(d.Width(), 0), c.total)
	if width >= c.total || width <= 0 {
		c.domain = nil
		return
	}
	minD := math.Max(0, math.Min(d.Min, c.total-width))
	c.domain = &Domain{Min: minD, Max: minD + width}
}

// Close cancels any animation; later frames and animated calls are ignored
func (c *Controller) Close() {
	c.cancel()
	c.closed = true
}

// Frame advances the animation identified by gen to time now. It returns
// true if another frame should be scheduled.
func (c *Controller) Frame(gen uint64, now time.Time) bool {
	a := c.anim
	if c.closed || a == nil || gen != a.gen {
		return false
	}

	t := 1.0
	if c.duration > 0 {
		t = float64(now.Sub(a.start)) / float64(c.duration)
	}
	if t >= 1 {
		c.finish(a)
		return false
	}

	e := EaseOutCubic(math.Max(t, 0))
	c.domain = &Domain{
		Min: a.from.Min + (a.to.Min-a.from.Min)*e,
		Max: a.from.Max + (a.to.Max-a.from.Max)*e,
	}
	return true
}

// EaseOutCubic maps linear progress t in [0,1] to 1-(1-t)^3
func EaseOutCubic(t float64) float64 {
	inv := 1 - t
	return 1 - inv*inv*inv
}

func (c *Controller) animateTo(target Domain, toFull bool) bool {
	c.cancel()
	a := &animation{
		gen:    c.gen,
		from:   c.Visible(),
		to:     target,
		toFull: toFull,
		start:  c.clock.Now(),
	}
	if c.duration == 0 {
		c.finish(a)
		return false
	}
	c.anim = a
	return true
}

func (c *Controller) finish(a *animation) {
	c.anim = nil
	if a.toFull {
		c.domain = nil
		return
	}
	to := a.to
	c.domain = &to
}

func (c *Controller) cancel() {
	c.gen++
	c.anim = nil
}

func (c *Controller) usable() bool {
	return !c.closed && c.total > 0
}

// around builds a window of width centred on center, shifted to stay in [0, total]
func (c *Controller) around(center, width float64) Domain {
	d := Domain{Min: center - width/2, Max: center + width/2}
	if d.Min < 0 {
		d = Domain{Min: 0, Max: width}
	}
	if d.Max > c.total {
		d = Domain{Min: c.total - width, Max: c.total}
	}
	return d
}
