package zone

import (
	"math/bits"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/volume"
)

// State is the visibility of one zone within one pass. Portal and anti-portal
// lists only grow until Reset.
type State struct {
	portals []*volume.Volume
	anti    []*volume.Volume
}

// AddPortal records a volume through which the zone is seen.
func (s *State) AddPortal(v *volume.Volume) {
	s.portals = append(s.portals, v)
}

// AddAntiPortal records an occluding volume inside the zone.
func (s *State) AddAntiPortal(v *volume.Volume) {
	s.anti = append(s.anti, v)
}

// Portals returns the portal volumes added so far.
func (s *State) Portals() []*volume.Volume { return s.portals }

// AntiPortals returns the anti-portal volumes added so far.
func (s *State) AntiPortals() []*volume.Volume { return s.anti }

// Reset empties both lists, keeping their storage.
func (s *State) Reset() {
	clear(s.portals)
	clear(s.anti)
	s.portals = s.portals[:0]
	s.anti = s.anti[:0]
}

// Visible reports whether any part of the box may be seen. The box must touch
// at least one portal volume; it is then hidden only when every anti-portal
// holds it completely.
func (s *State) Visible(b math3d.Box) bool {
	return s.visible(func(v *volume.Volume) volume.Containment {
		return v.Box(b)
	})
}

// VisibleSphere is Visible for a sphere.
func (s *State) VisibleSphere(sp math3d.Sphere) bool {
	return s.visible(func(v *volume.Volume) volume.Containment {
		return v.SphereCheck(sp)
	})
}

func (s *State) visible(check func(*volume.Volume) volume.Containment) bool {
	seen := false
	for _, p := range s.portals {
		if check(p)&volume.Inside != 0 {
			seen = true
			break
		}
	}
	if !seen {
		return false
	}
	if len(s.anti) == 0 {
		return true
	}
	for _, a := range s.anti {
		if check(a) != volume.Inside {
			return true
		}
	}
	return false
}

// Occludes reports whether a single anti-portal hides the whole polygon.
func (s *State) Occludes(poly *volume.Polygon) bool {
	for _, a := range s.anti {
		if a.ContainsPolygon(poly) {
			return true
		}
	}
	return false
}

// Uncovered returns the part of poly not already represented by the zone's
// portal volumes. A polygon wholly inside an existing volume yields an empty
// polygon; otherwise poly is returned unchanged, since the uncovered remainder
// of a convex polygon is not in general convex.
func (s *State) Uncovered(poly volume.Polygon) volume.Polygon {
	for _, p := range s.portals {
		if p.ContainsPolygon(&poly) {
			return volume.Polygon{}
		}
	}
	return poly
}

// Set holds the state of every zone for one pass plus the mask of zones that
// have been reached.
type Set struct {
	zones  [MaxZones]State
	Active Mask
}

// Zone returns the state of zone i.
func (s *Set) Zone(i int) *State {
	if i < 0 || i >= MaxZones {
		panic("zone: index out of range")
	}
	return &s.zones[i]
}

// Activate marks zone i as reached and reports whether it was new.
func (s *Set) Activate(i int) bool {
	if s.Active.Has(i) {
		return false
	}
	s.Active |= Bit(i)
	return true
}

// Visible reports whether the box is visible in any active zone of mask.
func (s *Set) Visible(mask Mask, b math3d.Box) bool {
	mask &= s.Active
	for mask != 0 {
		i := lowest(mask)
		if s.zones[i].Visible(b) {
			return true
		}
		mask &^= 1 << uint(i)
	}
	return false
}

// VisibleSphere is Visible for a sphere.
func (s *Set) VisibleSphere(mask Mask, sp math3d.Sphere) bool {
	mask &= s.Active
	for mask != 0 {
		i := lowest(mask)
		if s.zones[i].VisibleSphere(sp) {
			return true
		}
		mask &^= 1 << uint(i)
	}
	return false
}

// Reset clears every zone.
func (s *Set) Reset() {
	for i := range s.zones {
		s.zones[i].Reset()
	}
	s.Active = 0
}

func lowest(m Mask) int {
	return bits.TrailingZeros64(uint64(m))
}
