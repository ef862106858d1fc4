// Package render decides what is potentially visible from a viewpoint and
// emits ordered draw batches for it. A frame walks the level's BSP tree once
// per pass, growing per-zone visibility volumes as portals are crossed, and
// spawns nested passes for mirrors, warp portals and skies.
package render

import (
	"github.com/taigrr/zonevis/pkg/arena"
	"github.com/taigrr/zonevis/pkg/lighting"
	"github.com/taigrr/zonevis/pkg/log"
	"github.com/taigrr/zonevis/pkg/volume"
	"github.com/taigrr/zonevis/pkg/world"
	"github.com/taigrr/zonevis/pkg/zone"
)

var logger = log.New("render")

// Renderer turns views of one level into draw batches. It is not safe for
// concurrent use.
type Renderer struct {
	db        world.Database
	opts      Options
	relevance *lighting.Relevance

	arena      arena.Arena
	passes     passPool
	volumes    *arena.Slab[volume.Volume]
	trans      *arena.Slab[transItem]
	candLights *arena.Stack[int]
	candProj   *arena.Stack[int]
	influences *arena.Stack[lighting.Influence]
	attached   *arena.Stack[int]

	ctx      FrameContext
	sink     Sink
	tags     []uint32
	counter  uint32
	revision uint32
	primed   bool

	candidates []int
	gathered   []lighting.Influence
	members    []int
	faces      []volume.Polygon
	batch      Batch
}

// NewRenderer returns a renderer for db.
func NewRenderer(db world.Database, opts Options) *Renderer {
	if opts.MaxNesting <= 0 {
		opts.MaxNesting = 1
	}
	r := &Renderer{
		db:   db,
		opts: opts,
		relevance: lighting.New(lighting.Config{
			MaxLights:     opts.MaxLightsPerEntity,
			TraceInterval: opts.TraceInterval,
			FadeFrequency: opts.FadeFrequency,
		}, db),
		volumes:    arena.NewSlab[volume.Volume](64),
		trans:      arena.NewSlab[transItem](256),
		candLights: arena.NewStack[int](4 * MaxCandidates),
		candProj:   arena.NewStack[int](4 * MaxCandidates),
		influences: arena.NewStack[lighting.Influence](1024),
		attached:   arena.NewStack[int](256),
	}
	r.arena.Register(&r.passes, r.volumes, r.trans, r.candLights, r.candProj, r.influences, r.attached)
	return r
}

// Relevance exposes the per-entity light caches.
func (r *Renderer) Relevance() *lighting.Relevance {
	return r.relevance
}

// Context returns the context of the frame rendered last.
func (r *Renderer) Context() *FrameContext {
	return &r.ctx
}

// RenderView determines what is visible from v and submits it to sink.
func (r *Renderer) RenderView(v *View, sink Sink) *Report {
	if v.Camera == nil {
		panic("render: view without camera")
	}
	defer r.arena.Begin().End()

	r.sink = sink
	r.ctx.begin(v)
	r.prime()
	r.ctx.build(r.db)
	if r.ctx.truncated {
		logger.Noticef("frame %d: dynamic light or projector candidates truncated to %d", r.ctx.Frame, MaxCandidates)
	}

	cam := v.Camera
	root := r.newPass(PassMain, 0, -1)
	root.origin = cam.Position
	root.forward = cam.Forward()
	frustum := cam.Frustum()
	root.far = frustum.Planes[FrustumFar]
	root.hasFar = true
	vol := r.volumes.New()
	*vol = frustum.Volume()
	root.root = vol

	leaf := r.db.PointLeaf(root.origin)
	if leaf == world.None {
		root.outside = true
		for z := 0; z < r.db.NumZones(); z++ {
			r.activate(root, z, vol)
		}
		logger.Debugf("frame %d: eye in solid space, all %d zones active", r.ctx.Frame, r.db.NumZones())
	} else {
		root.rootZone = r.db.Leaf(leaf).Zone
		r.activate(root, root.rootZone, vol)
	}

	r.runPass(root)

	rep := r.report()
	r.sink = nil
	return rep
}

// prime resets cached filter results when the level has changed and sizes the
// visit tags.
func (r *Renderer) prime() {
	n := r.db.NumEntities()
	if len(r.tags) < n {
		r.tags = append(r.tags, make([]uint32, n-len(r.tags))...)
	}
	rev := r.db.Revision()
	if r.primed && rev == r.revision {
		return
	}
	for i := 0; i < n; i++ {
		r.db.Entity(i).Filter = world.FilterUnknown
	}
	r.revision, r.primed = rev, true
}

func (r *Renderer) newPass(kind PassKind, depth, parent int) *pass {
	p := r.passes.get()
	p.reset(kind, depth, parent, r.db.NumSurfaces(), r.db.NumLeaves())
	r.counter++
	if r.counter == 0 {
		clear(r.tags)
		r.counter = 1
	}
	p.tag = r.counter
	return p
}

// activate adds vol to zone z of p, seeding the zone's occluders the first
// time it is reached.
func (r *Renderer) activate(p *pass, z int, vol *volume.Volume) {
	if z < 0 || z >= zone.MaxZones {
		panic("render: zone index out of range")
	}
	if p.zones.Activate(z) {
		p.stats.Zones++
		logger.Debugf("%s pass %d: zone %d active", p.kind, p.index, z)
		r.seedOccluders(p, z)
	}
	p.zones.Zone(z).AddPortal(vol)
	if vol.Truncated() {
		p.stats.Truncated++
	}
}

// seedOccluders turns the occluders registered with zone z into anti-portals
// as seen from the pass's eye.
func (r *Renderer) seedOccluders(p *pass, z int) {
	for _, oi := range r.db.Zone(z).Occluders {
		o := r.db.Occluder(oi)
		r.faces = r.faces[:0]
		for _, f := range o.Faces {
			r.faces = append(r.faces, volume.NewPolygon(f...))
		}
		v, ok := volume.FromOccluder(p.origin, r.faces)
		if !ok {
			continue
		}
		nv := r.volumes.New()
		*nv = v
		p.zones.Zone(z).AddAntiPortal(nv)
		p.stats.AntiPortals++
	}
}

// runPass traverses the tree for p and submits its draw lists, running any
// nested passes it spawned on the way.
func (r *Renderer) runPass(p *pass) {
	r.traverse(p)
	r.submit(p)
}

// spawn creates a nested pass keyed by (kind, surface, zone) and returns its
// stencil mask. Callers check p.child first. ok is false when the nesting ceiling
// or the sink's stencil bits are exhausted.
func (r *Renderer) spawn(p *pass, kind PassKind, surface, z int, setup func(c *pass)) (mask uint8, ok bool) {
	if p.depth+1 >= r.opts.MaxNesting {
		logger.Noticef("%s pass %d: nesting ceiling %d reached, drawing surface %d opaque", p.kind, p.index, r.opts.MaxNesting, surface)
		p.stats.Degraded++
		return 0, false
	}
	mask, ok = r.sink.AllocStencilMask()
	if !ok {
		logger.Noticef("%s pass %d: no stencil mask free for surface %d", p.kind, p.index, surface)
		p.stats.Degraded++
		return 0, false
	}

	c := r.newPass(kind, p.depth+1, p.index)
	c.stencil = mask
	c.hasFar = p.hasFar
	c.far = p.far
	c.forward = p.forward
	setup(c)

	p.children = append(p.children, childRef{kind: kind, surface: surface, zone: z, pass: c.index, mask: mask})
	p.pending.PushBack(c.index)
	p.stats.Children++
	logger.Debugf("%s pass %d: spawned %s pass %d at depth %d, mask %#x", p.kind, p.index, kind, c.index, c.depth, mask)
	return mask, true
}

// submit issues the draw lists of p in their fixed order.
func (r *Renderer) submit(p *pass) {
	sink := r.sink
	flags := r.ctx.View.Flags
	d := &p.lists
	b := &r.batch

	sink.PushState()
	sink.SetTransform(p.transform)

	if flags.Has(ShowTerrain) {
		for _, it := range d.terrain {
			r.drawEntity(p, BatchTerrain, it)
		}
	}
	for i := range d.sections {
		s := &d.sections[i]
		*b = Batch{Kind: BatchSurfaces, Pass: p.index, Section: s.section, Material: s.material, Surfaces: s.surfaces}
		sink.Draw(b)
	}
	for _, it := range d.opaque {
		r.drawEntity(p, BatchEntity, it)
	}
	for i := range d.statics {
		mb := &d.statics[i]
		r.members = r.members[:0]
		for _, it := range mb.items {
			r.members = append(r.members, it.entity)
		}
		*b = Batch{Kind: BatchStaticMeshes, Pass: p.index, Material: mb.material, Entities: r.members}
		sink.Draw(b)
	}
	for _, s := range d.stencil {
		*b = Batch{Kind: BatchStencil, Pass: p.index, Material: r.db.Surface(s.surface).Material, Surfaces: []int{s.surface}, Stencil: s.mask}
		sink.Draw(b)
	}

	for p.pending.Len() > 0 {
		c := r.passes.at(p.pending.PopFront())
		sink.PushState()
		sink.SetStencilTest(c.stencil)
		sink.Clear(c.stencil)
		r.runPass(c)
		sink.PopState()
		sink.FreeStencilMask(c.stencil)
	}

	for t := d.translucent; t != nil; t = t.next {
		if t.surface != world.None {
			*b = Batch{Kind: BatchTranslucentSurface, Pass: p.index, Material: r.db.Surface(t.surface).Material, Surfaces: []int{t.surface}}
			sink.Draw(b)
			continue
		}
		r.drawEntity(p, BatchTranslucentEntity, t.entity)
	}
	if flags.Has(ShowParticles) {
		for _, it := range d.particles {
			r.drawEntity(p, BatchParticles, it)
		}
	}
	if flags.Has(ShowCoronas) {
		for _, li := range d.coronas {
			*b = Batch{Kind: BatchCorona, Pass: p.index, Lights: []lighting.Influence{{Light: li, Intensity: 1}}}
			sink.Draw(b)
		}
	}
	if flags.Has(ShowSelection) && len(d.selection) > 0 {
		*b = Batch{Kind: BatchSelection, Pass: p.index, Entities: d.selection}
		sink.Draw(b)
	}

	sink.PopState()
}

func (r *Renderer) drawEntity(p *pass, kind BatchKind, it entityItem) {
	e := r.db.Entity(it.entity)
	r.batch = Batch{
		Kind:       kind,
		Pass:       p.index,
		Material:   e.Material,
		Entities:   []int{it.entity},
		Lights:     r.influences.Span(it.lights.start, it.lights.n),
		Projectors: r.attached.Span(it.projectors.start, it.projectors.n),
	}
	r.sink.Draw(&r.batch)
}
