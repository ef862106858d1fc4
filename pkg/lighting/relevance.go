// Package lighting picks the lights and projectors that affect an entity each
// frame. Every entity keeps a small cache of its strongest lights; influence
// fades in and out on a spring instead of popping when visibility changes.
package lighting

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/world"
)

// MaxCached is the number of lights remembered per entity.
const MaxCached = 16

// fadeEpsilon is the intensity below which a fading light is forgotten.
const fadeEpsilon = 1e-3

// Tracer answers line-of-sight queries. world.Level implements it.
type Tracer interface {
	Occluded(a, b math3d.Vec3) bool
}

// Lights resolves light indices. world.Database implements it.
type Lights interface {
	Light(i int) *world.Light
}

// Influence is one light acting on an entity.
type Influence struct {
	Light     int
	Key       float64
	Intensity float64
}

// Config tunes a Relevance.
type Config struct {
	// MaxLights caps the influences returned per entity.
	MaxLights int
	// TraceInterval is the time between occlusion traces of one light.
	TraceInterval float64
	// FadeFrequency is the angular frequency of the fade spring.
	FadeFrequency float64
}

// DefaultConfig returns the renderer defaults.
func DefaultConfig() Config {
	return Config{
		MaxLights:     8,
		TraceInterval: 0.25,
		FadeFrequency: 8,
	}
}

type entry struct {
	light     int
	key       float64
	visible   bool
	traced    bool
	nextTrace float64
	intensity float64
	velocity  float64
}

type cache struct {
	entries [MaxCached]entry
	n       int
	last    float64
	started bool
}

// Relevance holds the per-entity light caches. It is not safe for concurrent
// use.
type Relevance struct {
	cfg    Config
	tracer Tracer
	caches map[int]*cache
}

// New returns a Relevance tracing with tracer, which may be nil to treat every
// light as unobstructed.
func New(cfg Config, tracer Tracer) *Relevance {
	if cfg.MaxLights <= 0 || cfg.MaxLights > MaxCached {
		cfg.MaxLights = MaxCached
	}
	return &Relevance{cfg: cfg, tracer: tracer, caches: make(map[int]*cache)}
}

// SortKey ranks a light for a point. Sun lights rank above everything; point
// and spot lights rank by brightness over squared distance and score zero
// outside their radius or cone.
func SortKey(l *world.Light, s math3d.Sphere) float64 {
	if l.Kind == world.SunLight {
		return math.MaxFloat64
	}
	d2 := l.Position.DistanceSq(s.Center)
	reach := l.Radius + s.Radius
	if d2 > reach*reach {
		return 0
	}
	if l.Kind == world.SpotLight && d2 > 0 {
		dir := s.Center.Sub(l.Position).Normalize()
		if dir.Dot(l.Direction.Normalize()) < l.Cone {
			return 0
		}
	}
	return l.Brightness / math.Max(d2, 1)
}

// Gather updates the cache of entity from this frame's candidate lights and
// appends the resulting influences, strongest first, to out.
func (r *Relevance) Gather(entity int, s math3d.Sphere, candidates []int, lights Lights, now float64, out []Influence) []Influence {
	c := r.caches[entity]
	if c == nil {
		c = &cache{}
		r.caches[entity] = c
	}

	for i := 0; i < c.n; i++ {
		c.entries[i].key = 0
	}
	for _, li := range candidates {
		key := SortKey(lights.Light(li), s)
		if key <= 0 {
			continue
		}
		c.offer(li, key)
	}
	c.sort()

	dt := 0.0
	if c.started {
		dt = now - c.last
	}
	c.last, c.started = now, true

	var spring harmonica.Spring
	if dt > 0 {
		spring = harmonica.NewSpring(dt, r.cfg.FadeFrequency, 1.0)
	}

	for i := 0; i < c.n; i++ {
		e := &c.entries[i]
		target := 0.0
		if e.key > 0 && i < r.cfg.MaxLights {
			r.trace(e, lights.Light(e.light), s.Center, now)
			if e.visible {
				target = 1
			}
		}
		if dt > 0 {
			e.intensity, e.velocity = spring.Update(e.intensity, e.velocity, target)
			e.intensity = math.Min(math.Max(e.intensity, 0), 1)
		}
	}
	c.compact()

	for i := 0; i < c.n && i < r.cfg.MaxLights; i++ {
		e := &c.entries[i]
		if e.key <= 0 {
			continue
		}
		out = append(out, Influence{Light: e.light, Key: e.key, Intensity: e.intensity})
	}
	return out
}

// trace refreshes the visibility of one cached light when its timer is due.
func (r *Relevance) trace(e *entry, l *world.Light, p math3d.Vec3, now float64) {
	if e.traced && now < e.nextTrace {
		return
	}
	e.traced = true
	e.nextTrace = now + r.cfg.TraceInterval
	switch {
	case r.tracer == nil:
		e.visible = true
	case l.Kind == world.SunLight:
		e.visible = !r.tracer.Occluded(p, p.Sub(l.Direction.Normalize().Scale(1e4)))
	default:
		e.visible = !r.tracer.Occluded(l.Position, p)
	}
}

// Cached returns the lights remembered for entity, strongest first.
func (r *Relevance) Cached(entity int) []int {
	c := r.caches[entity]
	if c == nil {
		return nil
	}
	out := make([]int, c.n)
	for i := range out {
		out[i] = c.entries[i].light
	}
	return out
}

// Forget drops the cache of an entity that left the level.
func (r *Relevance) Forget(entity int) {
	delete(r.caches, entity)
}

// Reset drops every cache.
func (r *Relevance) Reset() {
	clear(r.caches)
}

// offer adds or refreshes a light, evicting the weakest entry when full.
func (c *cache) offer(light int, key float64) {
	for i := 0; i < c.n; i++ {
		if c.entries[i].light == light {
			c.entries[i].key = key
			return
		}
	}
	if c.n < MaxCached {
		c.entries[c.n] = entry{light: light, key: key}
		c.n++
		return
	}
	weakest := 0
	for i := 1; i < c.n; i++ {
		if c.entries[i].key < c.entries[weakest].key {
			weakest = i
		}
	}
	if key > c.entries[weakest].key {
		c.entries[weakest] = entry{light: light, key: key}
	}
}

// sort orders entries by descending key. Insertion sort keeps ties stable.
func (c *cache) sort() {
	for i := 1; i < c.n; i++ {
		e := c.entries[i]
		j := i - 1
		for j >= 0 && c.entries[j].key < e.key {
			c.entries[j+1] = c.entries[j]
			j--
		}
		c.entries[j+1] = e
	}
}

// compact drops lights that are out of range and fully faded.
func (c *cache) compact() {
	n := 0
	for i := 0; i < c.n; i++ {
		e := c.entries[i]
		if e.key <= 0 && e.intensity < fadeEpsilon {
			continue
		}
		c.entries[n] = e
		n++
	}
	c.n = n
}
