// Package timeline turns wall-clock time into virtual simulation time.
//
// A Real timeline counts elapsed wall time in units of its tic size, so a tic
// of 0.001 yields milliseconds. A Game timeline wraps another timeline and
// scales it by a rate that may change at runtime; a rate of zero pauses it.
package timeline

// Timeline is a source of virtual time.
type Timeline interface {
	Now() float64
	Paused() bool
}

// Real advances with the wall clock, scaled by the tic size.
type Real struct {
	clock  Clock
	origin int64 // unix nanos at construction
	tic    float64
}

func NewReal(tic float64, clock Clock) *Real {
	if clock == nil {
		clock = SystemClock{}
	}
	if tic <= 0 {
		tic = 1
	}
	return &Real{clock: clock, origin: clock.Now().UnixNano(), tic: tic}
}

func (r *Real) Now() float64 {
	return float64(r.clock.Now().UnixNano()-r.origin) / (r.tic * 1e9)
}

func (r *Real) Paused() bool { return false }

// Tic returns the tic size in seconds.
func (r *Real) Tic() float64 { return r.tic }

// Game scales a base timeline by a changeable rate. Changing the rate never
// makes Now jump: the time accumulated so far is folded into an anchor.
type Game struct {
	base       Timeline
	rate       float64
	resumeRate float64
	anchorBase float64
	anchorNow  float64
}

func NewGame(rate float64, base Timeline) *Game {
	return &Game{
		base:       base,
		rate:       rate,
		resumeRate: rate,
		anchorBase: base.Now(),
	}
}

func (g *Game) Now() float64 {
	return g.anchorNow + (g.base.Now()-g.anchorBase)*g.rate
}

func (g *Game) Paused() bool {
	return g.rate == 0 || g.base.Paused()
}

func (g *Game) Rate() float64 { return g.rate }

// SetRate changes the multiplier from this instant onward.
func (g *Game) SetRate(rate float64) {
	g.reanchor()
	g.rate = rate
	if rate != 0 {
		g.resumeRate = rate
	}
}

// Pause freezes the timeline, remembering the current rate for Resume.
func (g *Game) Pause() {
	if g.rate == 0 {
		return
	}
	g.resumeRate = g.rate
	g.SetRate(0)
}

// Resume restores the rate in effect before Pause.
func (g *Game) Resume() {
	if g.rate != 0 {
		return
	}
	g.SetRate(g.resumeRate)
}

// Restart sets the timeline back to zero without touching the rate.
func (g *Game) Restart() {
	g.anchorBase = g.base.Now()
	g.anchorNow = 0
}

func (g *Game) reanchor() {
	b := g.base.Now()
	g.anchorNow += (b - g.anchorBase) * g.rate
	g.anchorBase = b
}
