package render

import (
	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/world"
)

// coronaRadius is the size of the sphere tested for a corona's visibility.
const coronaRadius = 0.25

// processLeaf files the contents of a visible leaf into p's draw lists.
// lights and projectors are the dynamic candidates that reach the leaf.
func (r *Renderer) processLeaf(p *pass, li int, lights, projectors span) {
	leaf := r.db.Leaf(li)
	if !p.zones.Active.Has(leaf.Zone) {
		return
	}
	state := p.zones.Zone(leaf.Zone)
	if !state.Visible(leaf.Bounds) {
		return
	}
	p.leaves.Set(uint(li))
	p.stats.Leaves++

	r.candidates = append(r.candidates[:0], leaf.Lights...)
	for i := 0; i < lights.n; i++ {
		r.candidates = append(r.candidates, r.candLights.At(lights.start+i))
	}

	if r.ctx.View.Flags.Has(ShowCoronas) {
		for _, l := range r.candidates {
			lt := r.db.Light(l)
			if !lt.Corona || !leaf.Bounds.ContainsPoint(lt.Position) {
				continue
			}
			if state.VisibleSphere(math3d.Sphere{Center: lt.Position, Radius: coronaRadius}) {
				p.lists.addCorona(l)
			}
		}
	}

	for _, e := range leaf.Entities {
		r.visitEntity(p, leaf, e, projectors)
	}
	for _, e := range r.ctx.Dynamic(li) {
		r.visitEntity(p, leaf, e, projectors)
	}
}

// visitEntity routes one entity at most once per pass. Entities rejected for
// reasons that do not depend on the zone are tagged too; entities merely
// hidden from this leaf's zone may still be reached through another leaf.
func (r *Renderer) visitEntity(p *pass, leaf *world.Leaf, ei int, projectors span) {
	if r.tags[ei] == p.tag {
		return
	}
	e := r.db.Entity(ei)
	if !r.relevant(ei, e) {
		r.tags[ei] = p.tag
		return
	}
	if e.Pending {
		r.tags[ei] = p.tag
		p.stats.Pending++
		return
	}
	if e.CullDistance > 0 && e.Bounds.Center().Distance(p.origin) > e.CullDistance {
		r.tags[ei] = p.tag
		p.stats.Culled++
		return
	}
	if !p.zones.Zone(leaf.Zone).Visible(e.Bounds) {
		return
	}
	r.tags[ei] = p.tag
	p.stats.Entities++

	flags := r.ctx.View.Flags
	d := &p.lists
	if e.Selected && flags.Has(ShowSelection) {
		d.selection = append(d.selection, ei)
	}

	switch {
	case e.Kind == world.Particles:
		if flags.Has(ShowParticles) {
			d.particles = append(d.particles, entityItem{entity: ei})
		}
	case e.Kind == world.Terrain:
		if flags.Has(ShowTerrain) {
			d.terrain = append(d.terrain, r.lightEntity(ei, e, projectors))
		}
	case e.Translucent:
		t := r.trans.New()
		t.dist = e.Bounds.Center().Distance(p.origin)
		t.surface = world.None
		t.entity = r.lightEntity(ei, e, projectors)
		d.addTranslucent(t)
		p.stats.Translucent++
	case e.Kind == world.StaticMesh && flags.Has(StaticMeshBatching):
		d.addStatic(e.Material, r.lightEntity(ei, e, projectors))
	default:
		d.opaque = append(d.opaque, r.lightEntity(ei, e, projectors))
	}
}

// relevant applies the gameplay filter, caching the answer for static
// entities.
func (r *Renderer) relevant(ei int, e *world.Entity) bool {
	if !e.Static {
		return r.filter(ei, e)
	}
	switch e.Filter {
	case world.FilterYes:
		return true
	case world.FilterNo:
		return false
	}
	ok := r.filter(ei, e)
	e.Filter = world.FilterNo
	if ok {
		e.Filter = world.FilterYes
	}
	return ok
}

func (r *Renderer) filter(ei int, e *world.Entity) bool {
	if e.Hidden {
		return false
	}
	if f := r.ctx.View.Filter; f != nil {
		return f(ei, e)
	}
	return true
}

// lightEntity gathers the lights and projectors acting on an entity.
func (r *Renderer) lightEntity(ei int, e *world.Entity, projectors span) entityItem {
	it := entityItem{entity: ei}

	r.gathered = r.relevance.Gather(ei, e.Bounds.Sphere(), r.candidates, r.db, r.ctx.View.Time, r.gathered[:0])
	it.lights.start = r.influences.Mark()
	for _, g := range r.gathered {
		r.influences.Push(g)
	}
	it.lights.n = len(r.gathered)

	it.projectors.start = r.attached.Mark()
	for i := 0; i < projectors.n; i++ {
		pi := r.candProj.At(projectors.start + i)
		if r.db.Projector(pi).Bounds.Intersects(e.Bounds) {
			r.attached.Push(pi)
			it.projectors.n++
		}
	}
	return it
}
