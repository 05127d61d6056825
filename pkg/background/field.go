// Package background draws the decorative animated field behind the slides.
//
// A Field is a character grid that advances one step per animation frame.
// It never knows anything about slides or navigation; the shell asks it for
// cells around the slide panel and nothing else.
package background

import (
	"math"
	"math/rand"
	"strings"
)

// Kind selects a background.
type Kind string

const (
	KindStarfield Kind = "starfield"
	KindParticles Kind = "particles"
	KindNone      Kind = "none"
)

// Kinds lists the cycle order used by the background toggle.
var Kinds = []Kind{KindStarfield, KindParticles, KindNone}

// ParseKind maps user input onto a Kind. Unknown input yields KindStarfield.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindParticles, "particle":
		return KindParticles
	case KindNone, "off":
		return KindNone
	default:
		return KindStarfield
	}
}

// Next returns the kind after k in the toggle cycle.
func (k Kind) Next() Kind {
	for i, kk := range Kinds {
		if kk == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return Kinds[0]
}

// Field is an animated character grid.
type Field interface {
	Kind() Kind
	// Step advances the animation by one frame.
	Step()
	// Resize changes the grid size, keeping existing elements that still fit.
	Resize(w, h int)
	// Cell returns the rune at (x, y), or a space outside the grid.
	Cell(x, y int) rune
}

// New builds a field of the given kind. KindNone, unknown kinds and a
// degenerate size all return nil, which callers treat as "no background".
func New(kind Kind, w, h int, seed int64) Field {
	if w <= 0 || h <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	switch kind {
	case KindStarfield:
		return newStarfield(w, h, rng)
	case KindParticles:
		return newParticles(w, h, rng)
	default:
		return nil
	}
}

// grid is the raster shared by the field implementations.
type grid struct {
	w, h  int
	cells []rune
}

func (g *grid) reset(w, h int) {
	g.w, g.h = w, h
	if cap(g.cells) >= w*h {
		g.cells = g.cells[:w*h]
	} else {
		g.cells = make([]rune, w*h)
	}
	g.clear()
}

func (g *grid) clear() {
	for i := range g.cells {
		g.cells[i] = ' '
	}
}

func (g *grid) set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = r
}

func (g *grid) Cell(x, y int) rune {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return ' '
	}
	return g.cells[y*g.w+x]
}

func wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

// Starfield

var twinkle = []rune{'.', '·', '+', '*', '+', '·'}

type star struct {
	x, y  float64
	speed float64 // cells per step, leftward drift
	phase int
}

// Starfield is a sparse field of stars that drift and twinkle.
type Starfield struct {
	grid
	rng   *rand.Rand
	stars []star
}

// one star per this many cells
const starDensity = 40

func newStarfield(w, h int, rng *rand.Rand) *Starfield {
	s := &Starfield{rng: rng}
	s.Resize(w, h)
	return s
}

func (s *Starfield) Kind() Kind { return KindStarfield }

func (s *Starfield) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = 0, 0
	}
	want := w * h / starDensity
	kept := s.stars[:0]
	for _, st := range s.stars {
		if st.x < float64(w) && st.y < float64(h) {
			kept = append(kept, st)
		}
	}
	s.stars = kept
	for len(s.stars) < want {
		s.stars = append(s.stars, star{
			x:     s.rng.Float64() * float64(w),
			y:     float64(s.rng.Intn(h)),
			speed: 0.05 + s.rng.Float64()*0.25,
			phase: s.rng.Intn(len(twinkle)),
		})
	}
	if len(s.stars) > want {
		s.stars = s.stars[:want]
	}
	s.reset(w, h)
	s.draw()
}

func (s *Starfield) Step() {
	for i := range s.stars {
		st := &s.stars[i]
		st.x = wrap(st.x-st.speed, float64(s.w))
		if s.rng.Intn(4) == 0 {
			st.phase = (st.phase + 1) % len(twinkle)
		}
	}
	s.draw()
}

func (s *Starfield) draw() {
	s.clear()
	for _, st := range s.stars {
		s.set(int(st.x), int(st.y), twinkle[st.phase])
	}
}

// Particles

// Tuned after the web particle preset: 100 particles, slow random motion,
// faint links between close neighbours.
const (
	maxParticles    = 100
	particleDensity = 30   // cells per particle
	particleSpeed   = 0.8  // max cells per step
	linkDistance    = 6.0  // cells; terminal cells are ~2:1, y is scaled
	cellAspect      = 2.0
)

type particle struct {
	x, y   float64
	vx, vy float64
	big    bool
}

// Particles is a set of moving points joined by short links when close.
type Particles struct {
	grid
	rng *rand.Rand
	ps  []particle
}

func newParticles(w, h int, rng *rand.Rand) *Particles {
	p := &Particles{rng: rng}
	p.Resize(w, h)
	return p
}

func (p *Particles) Kind() Kind { return KindParticles }

func (p *Particles) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = 0, 0
	}
	want := w * h / particleDensity
	if want > maxParticles {
		want = maxParticles
	}
	kept := p.ps[:0]
	for _, pt := range p.ps {
		if pt.x < float64(w) && pt.y < float64(h) {
			kept = append(kept, pt)
		}
	}
	p.ps = kept
	for len(p.ps) < want {
		angle := p.rng.Float64() * 2 * math.Pi
		speed := p.rng.Float64() * particleSpeed
		p.ps = append(p.ps, particle{
			x:   p.rng.Float64() * float64(w),
			y:   p.rng.Float64() * float64(h),
			vx:  math.Cos(angle) * speed,
			vy:  math.Sin(angle) * speed / cellAspect,
			big: p.rng.Intn(3) == 0,
		})
	}
	if len(p.ps) > want {
		p.ps = p.ps[:want]
	}
	p.reset(w, h)
	p.draw()
}

func (p *Particles) Step() {
	for i := range p.ps {
		pt := &p.ps[i]
		pt.x = wrap(pt.x+pt.vx, float64(p.w))
		pt.y = wrap(pt.y+pt.vy, float64(p.h))
	}
	p.draw()
}

func (p *Particles) draw() {
	p.clear()
	for i := range p.ps {
		for j := i + 1; j < len(p.ps); j++ {
			a, b := p.ps[i], p.ps[j]
			dx, dy := b.x-a.x, (b.y-a.y)*cellAspect
			if math.Hypot(dx, dy) > linkDistance {
				continue
			}
			// midpoint only; full lines turn the screen to noise
			p.set(int((a.x+b.x)/2), int((a.y+b.y)/2), '·')
		}
	}
	for _, pt := range p.ps {
		r := '∙'
		if pt.big {
			r = '•'
		}
		p.set(int(pt.x), int(pt.y), r)
	}
}
