package render

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/gammazero/deque"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/volume"
	"github.com/taigrr/zonevis/pkg/world"
	"github.com/taigrr/zonevis/pkg/zone"
)

// PassKind says why a scene pass exists.
type PassKind uint8

const (
	PassMain PassKind = iota
	PassMirror
	PassWarp
	PassSky
)

var passKindNames = [...]string{"main", "mirror", "warp", "sky"}

func (k PassKind) String() string {
	if int(k) < len(passKindNames) {
		return passKindNames[k]
	}
	return fmt.Sprintf("PassKind(%d)", k)
}

// childRef records a nested pass spawned by a surface. Each (kind, surface,
// zone) key spawns at most one pass per parent.
type childRef struct {
	kind    PassKind
	surface int
	zone    int
	pass    int
	mask    uint8
}

// pass is one traversal of the tree from one eye: the main view or a nested
// mirror, warp or sky view. Passes are owned by the renderer's pool and live
// until the end of the frame; a child refers to its parent by index only.
type pass struct {
	index  int
	kind   PassKind
	depth  int
	parent int
	tag    uint32

	origin    math3d.Vec3
	forward   math3d.Vec3
	transform math3d.Mat4
	far       math3d.Plane
	hasFar    bool
	root      *volume.Volume
	rootZone  int
	outside   bool
	stencil   uint8

	zones       zone.Set
	portalsDone *bitset.BitSet
	leaves      *bitset.BitSet
	children    []childRef
	pending     deque.Deque[int]
	lists       drawLists
	stats       PassStats
}

func (p *pass) reset(kind PassKind, depth, parent, surfaces, leaves int) {
	p.kind, p.depth, p.parent = kind, depth, parent
	p.tag = 0
	p.transform = math3d.Identity()
	p.hasFar = false
	p.root = nil
	p.rootZone = world.None
	p.outside = false
	p.stencil = 0
	p.zones.Reset()
	p.portalsDone = clearedBits(p.portalsDone, surfaces)
	p.leaves = clearedBits(p.leaves, leaves)
	p.children = p.children[:0]
	p.pending.Clear()
	p.lists.reset()
	p.stats = PassStats{}
}

func clearedBits(b *bitset.BitSet, n int) *bitset.BitSet {
	if b == nil || b.Len() < uint(n) {
		return bitset.New(uint(n))
	}
	return b.ClearAll()
}

// child returns the pass already spawned for key, or -1.
func (p *pass) child(kind PassKind, surface, z int) (childRef, bool) {
	for _, c := range p.children {
		if c.kind == kind && c.surface == surface && c.zone == z {
			return c, true
		}
	}
	return childRef{}, false
}

// farPlaneFor returns the plane closing volumes built into zone info: its fog
// distance if set, else the pass's view distance.
func (p *pass) farPlaneFor(info *world.ZoneInfo) *math3d.Plane {
	if info.FogDistance > 0 {
		n := p.forward.Negate()
		pl := math3d.NewPlane(n, p.origin.Add(p.forward.Scale(info.FogDistance)))
		return &pl
	}
	if p.hasFar {
		pl := p.far
		return &pl
	}
	return nil
}

// passPool hands out passes for one frame.
type passPool struct {
	passes []*pass
	n      int
}

func (pp *passPool) get() *pass {
	if pp.n == len(pp.passes) {
		pp.passes = append(pp.passes, &pass{})
	}
	p := pp.passes[pp.n]
	p.index = pp.n
	pp.n++
	return p
}

func (pp *passPool) at(i int) *pass {
	if i < 0 || i >= pp.n {
		panic(fmt.Sprintf("render: pass %d out of range", i))
	}
	return pp.passes[i]
}

func (pp *passPool) Reset() {
	pp.n = 0
}
