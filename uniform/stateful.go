package uniform

import (
	"math/rand/v2"
	"time"
)

// State holds the per-call-site state of the stateful builtins: one random
// draw per frame for each random call site, and the running value of each
// smooth call site.
type State struct {
	rng *rand.Rand
	now func() time.Time

	floats   []float64
	floatSet []bool
	ints     []int32
	intSet   []bool
	smooth   []smoothed

	// sites is the number of call-site indices claimed by compiled programs.
	sites int32
}

type smoothed struct {
	set bool
	at  time.Time
	val float64
}

// StateOption configures a [State].
type StateOption func(*State)

// WithRand sets the random source.
func WithRand(src rand.Source) StateOption {
	return func(s *State) { s.rng = rand.New(src) }
}

// WithClock sets the clock read by smooth.
func WithClock(now func() time.Time) StateOption {
	return func(s *State) { s.now = now }
}

// NewState returns stateful-builtin state with a randomly seeded source and
// the system clock unless configured otherwise.
func NewState(opts ...StateOption) *State {
	s := &State{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// claim reserves call-site indices [0, n) for a compiled program.
func (s *State) claim(n int32) { s.sites = max(s.sites, n) }

// Update starts a new frame: every random call site draws again on its next
// evaluation.
func (s *State) Update() {
	clear(s.floatSet)
	clear(s.intSet)
}

// Reset clears all state, including smoothing history.
func (s *State) Reset() {
	s.Update()
	clear(s.smooth)
}

// Registry returns the stateful builtins bound to s.
func (s *State) Registry() *Table {
	t := NewTable()

	t.Stateful("random", Float, []Type{Int}, func(a []Value) Value {
		return FloatValue(s.random(int(a[0].i), 0, 1))
	})
	t.Stateful("random", Float, []Type{Int, Float, Float}, func(a []Value) Value {
		return FloatValue(s.random(int(a[0].i), a[1].v[0], a[2].v[0]))
	})
	t.Stateful("randomInt", Int, []Type{Int}, func(a []Value) Value {
		return IntValue(s.randomInt(int(a[0].i), func() int32 { return int32(s.rng.Uint32()) }))
	})
	t.Stateful("randomInt", Int, []Type{Int, Int, Int}, func(a []Value) Value {
		lo, hi := a[1].i, a[2].i

		return IntValue(s.randomInt(int(a[0].i), func() int32 {
			if hi <= lo {
				return lo
			}

			return lo + int32(s.rng.Int64N(int64(hi)-int64(lo)))
		}))
	})
	t.Stateful("smooth", Float, []Type{Int, Float, Float, Float}, func(a []Value) Value {
		return FloatValue(s.smoothValue(int(a[0].i), a[1].v[0], a[2].v[0], a[3].v[0]))
	})

	return t
}

func grow[T any](s []T, i int) []T {
	if i < len(s) {
		return s
	}

	return append(s, make([]T, i+1-len(s))...)
}

func (s *State) random(i int, lo, hi float64) float64 {
	s.floats, s.floatSet = grow(s.floats, i), grow(s.floatSet, i)

	if !s.floatSet[i] {
		s.floatSet[i] = true
		s.floats[i] = lo + (hi-lo)*s.rng.Float64()
	}

	return s.floats[i]
}

func (s *State) randomInt(i int, draw func() int32) int32 {
	s.ints, s.intSet = grow(s.ints, i), grow(s.intSet, i)

	if !s.intSet[i] {
		s.intSet[i] = true
		s.ints[i] = draw()
	}

	return s.ints[i]
}

// smoothValue moves the previous value of call site i toward value, taking
// roughly fadeUp seconds to rise and fadeDown seconds to fall.
func (s *State) smoothValue(i int, value, fadeUp, fadeDown float64) float64 {
	s.smooth = grow(s.smooth, i)

	now := s.now()
	st := &s.smooth[i]

	if !st.set {
		*st = smoothed{set: true, at: now, val: value}
	}

	dt := now.Sub(st.at).Seconds()

	fade := fadeDown
	if value >= st.val {
		fade = fadeUp
	}

	st.val = approach(st.val, value, dt, fade)
	st.at = now

	return st.val
}

func approach(prev, value, dt, fade float64) float64 {
	if dt <= 0 {
		return prev
	}

	delta := value - prev
	if fade <= 0 || dt >= fade || delta <= 1e-6 && delta >= -1e-6 {
		return value
	}

	const k1, k2, k3 = 4.61, 0.13, 10.0

	updates := fade / dt
	corr := k1 - 1/(k2+updates/k3)

	return prev + delta*clamp(dt/fade*corr, 0, 1)
}
