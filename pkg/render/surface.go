package render

import (
	"fmt"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/volume"
	"github.com/taigrr/zonevis/pkg/world"
)

// surfaceHandler reacts to one surface of a node during the plane phase.
// near is the side of the node the pass's eye is on.
type surfaceHandler func(r *Renderer, p *pass, node *world.Node, near, si int, s *world.Surface)

var surfaceHandlers = [...]surfaceHandler{
	world.Ordinary:   (*Renderer).ordinarySurface,
	world.Sky:        (*Renderer).skySurface,
	world.Portal:     (*Renderer).portalSurface,
	world.AntiPortal: (*Renderer).antiPortalSurface,
	world.Mirror:     (*Renderer).mirrorSurface,
}

func (r *Renderer) processSurface(p *pass, ni, near, si int) {
	s := r.db.Surface(si)
	if int(s.Kind) >= len(surfaceHandlers) {
		panic(fmt.Sprintf("render: surface %d has unknown kind %d", si, s.Kind))
	}
	surfaceHandlers[s.Kind](r, p, r.db.Node(ni), near, si, s)
}

func (r *Renderer) ordinarySurface(p *pass, node *world.Node, near, si int, s *world.Surface) {
	if !r.ctx.View.Flags.Has(ShowBSP) {
		return
	}
	if near != world.Front && !s.TwoSided {
		return
	}
	p.stats.Surfaces++
	if s.Translucent {
		poly := volume.NewPolygon(s.Verts...)
		t := r.trans.New()
		t.dist = poly.Centroid().Distance(p.origin)
		t.surface = si
		p.lists.addTranslucent(t)
		p.stats.Translucent++
		return
	}
	p.lists.addSurface(s.Section, s.Material, si)
}

// portalSurface lets visibility flow from the eye's zone into the zone on
// the far side of the portal.
func (r *Renderer) portalSurface(p *pass, node *world.Node, near, si int, s *world.Surface) {
	if p.outside || p.portalsDone.Test(uint(si)) {
		return
	}
	p.portalsDone.Set(uint(si))

	src, dst := node.Zones[near], node.Zones[1-near]
	if src == world.None || dst == world.None || src == dst || !p.zones.Active.Has(src) {
		return
	}
	if r.db.Zone(src).Lonely || r.excluded(p, dst) {
		return
	}
	p.stats.Portals++

	poly := volume.NewPolygon(s.Verts...)
	info := r.db.Zone(dst)
	if info.Warp != nil {
		r.warpPortal(p, si, s, src, dst, &poly)
		return
	}

	far := p.farPlaneFor(info)
	sources := p.zones.Zone(src).Portals()
	for _, v := range sources {
		clipped := v.ClipPolygon(poly)
		if clipped.Empty() {
			continue
		}
		state := p.zones.Zone(dst)
		if state.Occludes(&clipped) {
			p.stats.Occluded++
			continue
		}
		clipped = state.Uncovered(clipped)
		if clipped.Area() == 0 {
			p.stats.Redundant++
			continue
		}
		built, ok := volume.FromPortal(p.origin, &clipped, far)
		if !ok {
			// Eye in the portal plane: see everything the source volume sees.
			built = *v
		}
		nv := r.volumes.New()
		*nv = built
		r.activate(p, dst, nv)
	}
}

// warpPortal shows a warp zone's target through a nested pass.
func (r *Renderer) warpPortal(p *pass, si int, s *world.Surface, src, dst int, poly *volume.Polygon) {
	if _, found := p.child(PassWarp, si, dst); found {
		return
	}
	if !r.seenThrough(p, src, poly) {
		return
	}
	warp := r.db.Zone(dst).Warp
	xf := warp.Transform
	moved := poly.Transform(xf)

	mask, ok := r.spawn(p, PassWarp, si, dst, func(c *pass) {
		c.origin = xf.MulVec3(p.origin)
		c.forward = xf.MulVec3Dir(p.forward).Normalize()
		if c.hasFar {
			c.far = p.far.Transform(xf)
		}
		c.rootZone = warp.Target
		c.transform = p.transform.Mul(xf.Inverse())
		c.root = r.volumes.New()
		v, ok := volume.FromPortal(c.origin, &moved, c.farPlaneFor(r.db.Zone(warp.Target)))
		if !ok {
			v = p.root.Transform(xf)
		}
		*c.root = v
		r.activate(c, warp.Target, c.root)
	})
	if !ok {
		r.drawFallback(p, si, s)
		return
	}
	p.lists.stencil = append(p.lists.stencil, stencilItem{surface: si, mask: mask})
}

func (r *Renderer) antiPortalSurface(p *pass, node *world.Node, near, si int, s *world.Surface) {
	z := r.surfaceZone(p, node, near)
	if z == world.None || !p.zones.Active.Has(z) {
		return
	}
	poly := volume.NewPolygon(s.Verts...)
	state := p.zones.Zone(z)
	if !state.Visible(poly.Bounds()) {
		return
	}
	r.faces = append(r.faces[:0], poly)
	v, ok := volume.FromOccluder(p.origin, r.faces)
	if !ok {
		return
	}
	nv := r.volumes.New()
	*nv = v
	state.AddAntiPortal(nv)
	p.stats.AntiPortals++
}

// mirrorSurface shows the reflected scene through a nested pass. Mirrors are
// one-sided: only an eye in front of the mirror's own plane sees anything.
func (r *Renderer) mirrorSurface(p *pass, node *world.Node, near, si int, s *world.Surface) {
	poly := volume.NewPolygon(s.Verts...)
	if poly.Plane().Distance(p.origin) <= math3d.Epsilon {
		return
	}
	z := r.surfaceZone(p, node, near)
	if !r.ctx.View.Flags.Has(StencilMirrors) || z == world.None {
		r.drawFallback(p, si, s)
		return
	}
	if _, found := p.child(PassMirror, si, z); found {
		return
	}
	if !r.seenThrough(p, z, &poly) {
		return
	}

	refl := math3d.Reflection(poly.Plane())
	mask, ok := r.spawn(p, PassMirror, si, z, func(c *pass) {
		c.origin = refl.MulVec3(p.origin)
		c.forward = refl.MulVec3Dir(p.forward)
		if c.hasFar {
			c.far = p.far.Transform(refl)
		}
		c.rootZone = z
		c.transform = p.transform.Mul(refl)
		c.root = r.volumes.New()
		v, ok := volume.FromPortal(c.origin, &poly, c.farPlaneFor(r.db.Zone(z)))
		if !ok {
			v = p.root.Transform(refl)
		}
		*c.root = v
		r.activate(c, z, c.root)
	})
	if !ok {
		r.drawFallback(p, si, s)
		return
	}
	p.lists.stencil = append(p.lists.stencil, stencilItem{surface: si, mask: mask})
}

// skySurface replaces a sky surface with the zone's sky, viewed from the sky
// origin. All sky surfaces of one zone share a single pass.
func (r *Renderer) skySurface(p *pass, node *world.Node, near, si int, s *world.Surface) {
	if near != world.Front && !s.TwoSided {
		return
	}
	z := r.surfaceZone(p, node, near)
	if z == world.None || r.db.Zone(z).Sky == nil {
		r.ordinarySurface(p, node, near, si, s)
		return
	}
	if c, found := p.child(PassSky, world.None, z); found {
		p.lists.stencil = append(p.lists.stencil, stencilItem{surface: si, mask: c.mask})
		return
	}
	poly := volume.NewPolygon(s.Verts...)
	if !r.seenThrough(p, z, &poly) {
		return
	}

	sky := r.db.Zone(z).Sky
	shift := math3d.Translate(sky.Origin.Sub(p.origin))
	mask, ok := r.spawn(p, PassSky, world.None, z, func(c *pass) {
		c.origin = sky.Origin
		if c.hasFar {
			c.far = p.far.Transform(shift)
		}
		c.rootZone = sky.Zone
		c.transform = p.transform.Mul(shift.Inverse())
		c.root = r.volumes.New()
		*c.root = p.root.Transform(shift)
		r.activate(c, sky.Zone, c.root)
	})
	if !ok {
		r.drawFallback(p, si, s)
		return
	}
	p.lists.stencil = append(p.lists.stencil, stencilItem{surface: si, mask: mask})
}

// drawFallback draws a special surface as an ordinary opaque one when no
// nested pass can be made for it.
func (r *Renderer) drawFallback(p *pass, si int, s *world.Surface) {
	p.stats.Surfaces++
	p.lists.addSurface(s.Section, s.Material, si)
}

// surfaceZone is the zone on the eye's side of node.
func (r *Renderer) surfaceZone(p *pass, node *world.Node, near int) int {
	if z := node.Zones[near]; z != world.None {
		return z
	}
	return p.rootZone
}

// seenThrough reports whether any part of poly lies inside a volume of zone z.
func (r *Renderer) seenThrough(p *pass, z int, poly *volume.Polygon) bool {
	if !p.zones.Active.Has(z) {
		return false
	}
	for _, v := range p.zones.Zone(z).Portals() {
		clipped := v.ClipPolygon(*poly)
		if !clipped.Empty() {
			return true
		}
	}
	return false
}

// excluded reports whether the zone the pass started in excludes z.
func (r *Renderer) excluded(p *pass, z int) bool {
	if p.rootZone == world.None {
		return false
	}
	for _, x := range r.db.Zone(p.rootZone).Exclude {
		if x == z {
			return true
		}
	}
	return false
}
