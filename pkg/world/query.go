package world

import (
	"github.com/taigrr/zonevis/pkg/math3d"
)

// PointLeaf returns the leaf containing p, or None when p is in solid space.
func (l *Level) PointLeaf(p math3d.Vec3) int {
	if len(l.Nodes) == 0 {
		return None
	}
	n := l.RootNode
	for {
		node := l.Node(n)
		side := Front
		if node.Plane.Distance(p) < 0 {
			side = Back
		}
		if c := node.Children[side]; c != None {
			n = c
			continue
		}
		return node.Leaves[side]
	}
}

// BoxLeaves calls fn for every leaf the box may touch.
func (l *Level) BoxLeaves(b math3d.Box, fn func(leaf int)) {
	if len(l.Nodes) == 0 {
		return
	}
	var buf [64]int
	stack := append(buf[:0], l.RootNode)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := l.Node(n)

		side := b.PlaneSide(node.Plane)
		for s := Front; s <= Back; s++ {
			if (s == Front && side < 0) || (s == Back && side > 0) {
				continue
			}
			if c := node.Children[s]; c != None {
				stack = append(stack, c)
			} else if leaf := node.Leaves[s]; leaf != None {
				fn(leaf)
			}
		}
	}
}

// Occluded reports whether the segment a-b passes through solid space.
func (l *Level) Occluded(a, b math3d.Vec3) bool {
	if len(l.Nodes) == 0 {
		return false
	}
	return l.segmentBlocked(l.RootNode, a, b)
}

func (l *Level) segmentBlocked(n int, a, b math3d.Vec3) bool {
	node := l.Node(n)
	da := node.Plane.Distance(a)
	db := node.Plane.Distance(b)

	switch {
	case da >= 0 && db >= 0:
		return l.sideBlocked(node, Front, a, b)
	case da < 0 && db < 0:
		return l.sideBlocked(node, Back, a, b)
	}

	mid := a.Lerp(b, da/(da-db))
	near := Front
	if da < 0 {
		near = Back
	}
	return l.sideBlocked(node, near, a, mid) || l.sideBlocked(node, 1-near, mid, b)
}

func (l *Level) sideBlocked(node *Node, side int, a, b math3d.Vec3) bool {
	if c := node.Children[side]; c != None {
		return l.segmentBlocked(c, a, b)
	}
	return node.Leaves[side] == None
}
