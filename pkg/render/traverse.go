package render

import (
	"github.com/taigrr/zonevis/pkg/arena"
	"github.com/taigrr/zonevis/pkg/world"
)

const (
	// MaxStackDepth bounds the depth of the BSP tree.
	MaxStackDepth = 256
	// MaxCandidates bounds the dynamic lights and projectors carried down
	// the tree; extras are dropped.
	MaxCandidates = 256
)

type phase uint8

const (
	phaseFront phase = iota
	phasePlane
	phaseDone
)

// frame is one node on the traversal stack. Candidate spans index the
// renderer's candidate stacks; mark is where those stacks stood when the
// frame was pushed.
type frame struct {
	node       int
	phase      phase
	near       int
	lights     span
	projectors span
	farLights  span
	farProj    span
	lightMark  int
	projMark   int
}

// traverse walks the tree front to back from p's eye. For every node it
// first visits the near side, then the node's own surfaces, then the far
// side, carrying the dynamic lights and projectors that can reach each side.
func (r *Renderer) traverse(p *pass) {
	if r.db.NumLeaves() == 0 {
		return
	}
	var stack [MaxStackDepth]frame
	top := 0

	push := func(node int, lights, projectors span) {
		if top == MaxStackDepth {
			panic("render: node stack overflow")
		}
		stack[top] = frame{
			node:       node,
			lights:     lights,
			projectors: projectors,
			lightMark:  r.candLights.Mark(),
			projMark:   r.candProj.Mark(),
		}
		top++
	}

	lights := pushAll(r.candLights, r.ctx.lights)
	projectors := pushAll(r.candProj, r.ctx.projectors)
	push(r.db.Root(), lights, projectors)

	for top > 0 {
		f := &stack[top-1]
		node := r.db.Node(f.node)

		switch f.phase {
		case phaseFront:
			p.stats.Nodes++
			if !p.outside && !node.ZoneMask.Intersects(p.zones.Active) {
				f.phase = phaseDone
				continue
			}
			if !p.zones.Visible(node.ZoneMask, node.Bounds) {
				f.phase = phaseDone
				continue
			}

			f.near = world.Front
			if node.Plane.Distance(p.origin) < 0 {
				f.near = world.Back
			}
			var nearL, nearP span
			nearL, f.farLights = r.splitLights(node, f.near, f.lights)
			nearP, f.farProj = r.splitProjectors(node, f.near, f.projectors)
			f.phase = phasePlane

			if c := node.Children[f.near]; c != world.None {
				push(c, nearL, nearP)
			} else if lf := node.Leaves[f.near]; lf != world.None {
				r.processLeaf(p, lf, nearL, nearP)
			}

		case phasePlane:
			for _, s := range node.Surfaces {
				r.processSurface(p, f.node, f.near, s)
			}
			f.phase = phaseDone

			far := 1 - f.near
			if c := node.Children[far]; c != world.None {
				push(c, f.farLights, f.farProj)
			} else if lf := node.Leaves[far]; lf != world.None {
				r.processLeaf(p, lf, f.farLights, f.farProj)
			}

		case phaseDone:
			r.candLights.Rewind(f.lightMark)
			r.candProj.Rewind(f.projMark)
			top--
		}
	}
}

func pushAll(s *arena.Stack[int], values []int) span {
	start := s.Mark()
	for _, v := range values {
		s.Push(v)
	}
	return span{start: start, n: len(values)}
}

// splitLights copies the lights of in that reach each side of node into two
// new spans. Sun lights reach both sides.
func (r *Renderer) splitLights(node *world.Node, near int, in span) (nearSpan, farSpan span) {
	st := r.candLights
	nearSpan.start = st.Mark()
	for i := 0; i < in.n; i++ {
		li := st.At(in.start + i)
		if r.reaches(node, near, li) {
			st.Push(li)
			nearSpan.n++
		}
	}
	farSpan.start = st.Mark()
	for i := 0; i < in.n; i++ {
		li := st.At(in.start + i)
		if r.reaches(node, 1-near, li) {
			st.Push(li)
			farSpan.n++
		}
	}
	return nearSpan, farSpan
}

func (r *Renderer) reaches(node *world.Node, side, light int) bool {
	l := r.db.Light(light)
	if l.Kind == world.SunLight {
		return true
	}
	return sideOf(l.Sphere().PlaneSide(node.Plane), side)
}

func (r *Renderer) splitProjectors(node *world.Node, near int, in span) (nearSpan, farSpan span) {
	st := r.candProj
	nearSpan.start = st.Mark()
	for i := 0; i < in.n; i++ {
		pi := st.At(in.start + i)
		if sideOf(r.db.Projector(pi).Bounds.PlaneSide(node.Plane), near) {
			st.Push(pi)
			nearSpan.n++
		}
	}
	farSpan.start = st.Mark()
	for i := 0; i < in.n; i++ {
		pi := st.At(in.start + i)
		if sideOf(r.db.Projector(pi).Bounds.PlaneSide(node.Plane), 1-near) {
			st.Push(pi)
			farSpan.n++
		}
	}
	return nearSpan, farSpan
}

// sideOf reports whether a PlaneSide result touches side.
func sideOf(planeSide, side int) bool {
	switch planeSide {
	case 1:
		return side == world.Front
	case -1:
		return side == world.Back
	}
	return true
}
