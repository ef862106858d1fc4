package world

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/taigrr/zonevis/pkg/zone"
)

// Validate checks every cross reference in the level. The renderer assumes a
// valid level and panics on dangling indices, so loaders call this first.
func (l *Level) Validate() error {
	if len(l.Zones) > zone.MaxZones {
		return fmt.Errorf("world: %d zones, at most %d supported", len(l.Zones), zone.MaxZones)
	}
	if len(l.Nodes) == 0 {
		return nil
	}
	if !inRange(l.RootNode, len(l.Nodes)) {
		return fmt.Errorf("world: root node %d out of range", l.RootNode)
	}

	for i := range l.Nodes {
		node := &l.Nodes[i]
		for side := Front; side <= Back; side++ {
			if c := node.Children[side]; c != None && !inRange(c, len(l.Nodes)) {
				return fmt.Errorf("world: node %d child %d out of range", i, c)
			}
			if lf := node.Leaves[side]; lf != None && !inRange(lf, len(l.Leaves)) {
				return fmt.Errorf("world: node %d leaf %d out of range", i, lf)
			}
			if node.Children[side] != None && node.Leaves[side] != None {
				return fmt.Errorf("world: node %d has both a child and a leaf on side %d", i, side)
			}
			if z := node.Zones[side]; z != None && !inRange(z, len(l.Zones)) {
				return fmt.Errorf("world: node %d zone %d out of range", i, z)
			}
		}
		for _, s := range node.Surfaces {
			if !inRange(s, len(l.Surfaces)) {
				return fmt.Errorf("world: node %d surface %d out of range", i, s)
			}
			surf := &l.Surfaces[s]
			if len(surf.Verts) < 3 {
				return fmt.Errorf("world: surface %d has %d vertices", s, len(surf.Verts))
			}
			if surf.Kind == Portal && (node.Zones[Front] == None || node.Zones[Back] == None) {
				return fmt.Errorf("world: portal surface %d on node %d without zones", s, i)
			}
		}
	}

	for i := range l.Leaves {
		leaf := &l.Leaves[i]
		if !inRange(leaf.Zone, len(l.Zones)) {
			return fmt.Errorf("world: leaf %d zone %d out of range", i, leaf.Zone)
		}
		for _, e := range leaf.Entities {
			if !inRange(e, len(l.Entities)) {
				return fmt.Errorf("world: leaf %d entity %d out of range", i, e)
			}
		}
		for _, lt := range leaf.Lights {
			if !inRange(lt, len(l.Lights)) {
				return fmt.Errorf("world: leaf %d light %d out of range", i, lt)
			}
		}
	}

	for i := range l.Zones {
		info := &l.Zones[i]
		if info.Sky != nil && !inRange(info.Sky.Zone, len(l.Zones)) {
			return fmt.Errorf("world: zone %d sky zone %d out of range", i, info.Sky.Zone)
		}
		if info.Warp != nil && !inRange(info.Warp.Target, len(l.Zones)) {
			return fmt.Errorf("world: zone %d warp target %d out of range", i, info.Warp.Target)
		}
		for _, z := range info.Exclude {
			if !inRange(z, len(l.Zones)) {
				return fmt.Errorf("world: zone %d excludes unknown zone %d", i, z)
			}
		}
		for _, o := range info.Occluders {
			if !inRange(o, len(l.Occluders)) {
				return fmt.Errorf("world: zone %d occluder %d out of range", i, o)
			}
		}
	}

	// No node may be reached twice from the root.
	seen := bitset.New(uint(len(l.Nodes)))
	stack := []int{l.RootNode}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Test(uint(n)) {
			return fmt.Errorf("world: node %d reached twice", n)
		}
		seen.Set(uint(n))
		for _, c := range l.Nodes[n].Children {
			if c != None {
				stack = append(stack, c)
			}
		}
	}
	return nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
