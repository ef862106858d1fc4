package world

import (
	"fmt"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/zone"
)

// Builder assembles a Level by hand. Nodes are wired explicitly; Build derives
// bounds, zone masks and the static entity and light lists of every leaf.
type Builder struct {
	level Level
	root  int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{root: None}
}

// AddZone appends a zone and returns its index.
func (b *Builder) AddZone(info ZoneInfo) int {
	b.level.Zones = append(b.level.Zones, info)
	return len(b.level.Zones) - 1
}

// ZoneInfo returns the zone being built for further edits.
func (b *Builder) ZoneInfo(i int) *ZoneInfo {
	return &b.level.Zones[i]
}

// AddLeaf appends a leaf of zone z.
func (b *Builder) AddLeaf(z int, bounds math3d.Box) int {
	b.level.Leaves = append(b.level.Leaves, Leaf{Zone: z, Bounds: bounds})
	return len(b.level.Leaves) - 1
}

// AddNode appends a split node with no children, leaves or zones.
func (b *Builder) AddNode(plane math3d.Plane) int {
	b.level.Nodes = append(b.level.Nodes, Node{
		Plane:    plane,
		Children: [2]int{None, None},
		Leaves:   [2]int{None, None},
		Zones:    [2]int{None, None},
	})
	if b.root == None {
		b.root = len(b.level.Nodes) - 1
	}
	return len(b.level.Nodes) - 1
}

// SetChild hangs child off one side of node.
func (b *Builder) SetChild(node, side, child int) {
	b.level.Nodes[node].Children[side] = child
}

// SetLeaf puts leaf on one side of node.
func (b *Builder) SetLeaf(node, side, leaf int) {
	b.level.Nodes[node].Leaves[side] = leaf
}

// SetZones sets the zones on either side of node. Portal nodes need it;
// other nodes get their zones from their leaves.
func (b *Builder) SetZones(node, front, back int) {
	b.level.Nodes[node].Zones = [2]int{front, back}
}

// AddSurface appends a surface and attaches it to node.
func (b *Builder) AddSurface(node int, s Surface) int {
	b.level.Surfaces = append(b.level.Surfaces, s)
	i := len(b.level.Surfaces) - 1
	b.level.Nodes[node].Surfaces = append(b.level.Nodes[node].Surfaces, i)
	return i
}

// AttachSurface attaches an existing surface to another node as well.
func (b *Builder) AttachSurface(node, surface int) {
	b.level.Nodes[node].Surfaces = append(b.level.Nodes[node].Surfaces, surface)
}

// SetRoot overrides the root, which defaults to the first node added.
func (b *Builder) SetRoot(node int) {
	b.root = node
}

// AddEntity appends an entity.
func (b *Builder) AddEntity(e Entity) int {
	b.level.Entities = append(b.level.Entities, e)
	return len(b.level.Entities) - 1
}

// AddLight appends a light.
func (b *Builder) AddLight(l Light) int {
	b.level.Lights = append(b.level.Lights, l)
	return len(b.level.Lights) - 1
}

// AddProjector appends a projector.
func (b *Builder) AddProjector(p Projector) int {
	b.level.Projectors = append(b.level.Projectors, p)
	return len(b.level.Projectors) - 1
}

// AddOccluder appends an occluder and registers it with its zone.
func (b *Builder) AddOccluder(o Occluder) int {
	b.level.Occluders = append(b.level.Occluders, o)
	i := len(b.level.Occluders) - 1
	if o.Zone >= 0 && o.Zone < len(b.level.Zones) {
		b.level.Zones[o.Zone].Occluders = append(b.level.Zones[o.Zone].Occluders, i)
	}
	return i
}

// Build finishes the level. The builder must not be used afterwards.
func (b *Builder) Build() (*Level, error) {
	l := &b.level
	l.RootNode = b.root
	if len(l.Nodes) > 0 && b.root == None {
		return nil, fmt.Errorf("world: no root node")
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}
	l.Prepare()
	return l, nil
}

// Prepare derives node zones, bounds and zone masks, and rebuilds the static
// entity and light lists of every leaf. Call it after moving static content.
func (l *Level) Prepare() {
	if len(l.Nodes) > 0 {
		l.prepareNode(l.RootNode)
	}

	for i := range l.Leaves {
		l.Leaves[i].Entities = l.Leaves[i].Entities[:0]
		l.Leaves[i].Lights = l.Leaves[i].Lights[:0]
	}
	for i := range l.Entities {
		e := &l.Entities[i]
		if !e.Static {
			continue
		}
		l.BoxLeaves(e.Bounds, func(leaf int) {
			l.Leaves[leaf].Entities = append(l.Leaves[leaf].Entities, i)
		})
	}
	for i := range l.Lights {
		lt := &l.Lights[i]
		if lt.Dynamic {
			continue
		}
		if lt.Kind == SunLight {
			for leaf := range l.Leaves {
				l.Leaves[leaf].Lights = append(l.Leaves[leaf].Lights, i)
			}
			continue
		}
		l.BoxLeaves(lt.Sphere().Box(), func(leaf int) {
			l.Leaves[leaf].Lights = append(l.Leaves[leaf].Lights, i)
		})
	}
	l.Touch()
}

func (l *Level) prepareNode(n int) (math3d.Box, zone.Mask) {
	node := &l.Nodes[n]
	bounds := math3d.EmptyBox()
	var mask zone.Mask

	for side := Front; side <= Back; side++ {
		var sideMask zone.Mask
		if c := node.Children[side]; c != None {
			cb, cm := l.prepareNode(c)
			bounds = bounds.Union(cb)
			sideMask = cm
		} else if lf := node.Leaves[side]; lf != None {
			bounds = bounds.Union(l.Leaves[lf].Bounds)
			sideMask = zone.Bit(l.Leaves[lf].Zone)
		}
		if node.Zones[side] == None && sideMask.Count() == 1 {
			sideMask.Each(func(z int) { node.Zones[side] = z })
		}
		if z := node.Zones[side]; z != None {
			sideMask |= zone.Bit(z)
		}
		mask |= sideMask
	}
	for _, s := range node.Surfaces {
		for _, v := range l.Surfaces[s].Verts {
			bounds = bounds.Add(v)
		}
	}

	node.Bounds = bounds
	node.ZoneMask = mask
	return bounds, mask
}
