package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/taigrr/zonevis/pkg/zone"
)

// PassStats counts what one pass did.
type PassStats struct {
	Nodes       int
	Zones       int
	Leaves      int
	Entities    int
	Surfaces    int
	Portals     int
	Occluded    int
	Redundant   int
	AntiPortals int
	Children    int
	Degraded    int
	Truncated   int
	Pending     int
	Culled      int
	Translucent int
}

func (s *PassStats) add(o PassStats) {
	s.Nodes += o.Nodes
	s.Zones += o.Zones
	s.Leaves += o.Leaves
	s.Entities += o.Entities
	s.Surfaces += o.Surfaces
	s.Portals += o.Portals
	s.Occluded += o.Occluded
	s.Redundant += o.Redundant
	s.AntiPortals += o.AntiPortals
	s.Children += o.Children
	s.Degraded += o.Degraded
	s.Truncated += o.Truncated
	s.Pending += o.Pending
	s.Culled += o.Culled
	s.Translucent += o.Translucent
}

// PassReport describes one pass of a rendered frame.
type PassReport struct {
	Index   int
	Kind    PassKind
	Depth   int
	Parent  int
	Zones   zone.Mask
	Leaves  []int
	Stencil uint8
	Stats   PassStats
}

// Report summarizes a rendered frame. It stays valid after the frame ends.
type Report struct {
	Frame  uint64
	Passes []PassReport
	Total  PassStats
}

// VisitedLeaves returns the leaves drawn by the main pass.
func (rep *Report) VisitedLeaves() []int {
	if len(rep.Passes) == 0 {
		return nil
	}
	return rep.Passes[0].Leaves
}

// Count returns the number of passes of the given kind.
func (rep *Report) Count(kind PassKind) int {
	n := 0
	for i := range rep.Passes {
		if rep.Passes[i].Kind == kind {
			n++
		}
	}
	return n
}

// Table writes a per-pass summary of the frame to w.
func (rep *Report) Table(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Kind", "Depth", "Zones", "Nodes", "Leaves", "Entities", "Surfaces", "Portals", "Occluded", "Children", "Degraded"})
	for i := range rep.Passes {
		p := &rep.Passes[i]
		table.Append([]string{
			strconv.Itoa(p.Index),
			p.Kind.String(),
			strconv.Itoa(p.Depth),
			strconv.Itoa(p.Zones.Count()),
			strconv.Itoa(p.Stats.Nodes),
			strconv.Itoa(p.Stats.Leaves),
			strconv.Itoa(p.Stats.Entities),
			strconv.Itoa(p.Stats.Surfaces),
			strconv.Itoa(p.Stats.Portals),
			strconv.Itoa(p.Stats.Occluded),
			strconv.Itoa(p.Stats.Children),
			strconv.Itoa(p.Stats.Degraded),
		})
	}
	t := &rep.Total
	table.SetFooter([]string{
		"", fmt.Sprintf("frame %d", rep.Frame), "", "",
		strconv.Itoa(t.Nodes), strconv.Itoa(t.Leaves), strconv.Itoa(t.Entities), strconv.Itoa(t.Surfaces),
		strconv.Itoa(t.Portals), strconv.Itoa(t.Occluded), strconv.Itoa(t.Children), strconv.Itoa(t.Degraded),
	})
	table.Render()
}

// report copies the frame's pass state out of the arena.
func (r *Renderer) report() *Report {
	rep := &Report{Frame: r.ctx.Frame, Passes: make([]PassReport, 0, r.passes.n)}
	for i := 0; i < r.passes.n; i++ {
		p := r.passes.at(i)
		pr := PassReport{
			Index:   p.index,
			Kind:    p.kind,
			Depth:   p.depth,
			Parent:  p.parent,
			Zones:   p.zones.Active,
			Stencil: p.stencil,
			Stats:   p.stats,
		}
		for li, ok := p.leaves.NextSet(0); ok; li, ok = p.leaves.NextSet(li + 1) {
			pr.Leaves = append(pr.Leaves, int(li))
		}
		rep.Total.add(p.stats)
		rep.Passes = append(rep.Passes, pr)
	}
	return rep
}
