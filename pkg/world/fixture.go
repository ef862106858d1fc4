package world

import (
	"fmt"

	"github.com/taigrr/zonevis/pkg/math3d"
)

// CorridorHalfWidth is the half size of the corridor cross-section.
const CorridorHalfWidth = 2.0

// Zones of the corridor level.
const (
	CorridorStart = 0
	CorridorHall  = 1
	CorridorEnd   = 2
)

// Corridor builds a straight corridor running down -Z from z=0, split into
// cells of length cellLen. A start room lies behind the z=0 portal and an end
// room past the portal at z=-cells*cellLen. Each leaf holds one static prop.
func Corridor(cells int, cellLen float64) *Level {
	if cells < 1 {
		panic("world: corridor needs at least one cell")
	}
	const w = CorridorHalfWidth
	b := NewBuilder()

	start := b.AddZone(ZoneInfo{Name: "start"})
	hall := b.AddZone(ZoneInfo{Name: "corridor"})
	end := b.AddZone(ZoneInfo{Name: "end"})

	slice := func(z0, z1 float64) math3d.Box {
		return math3d.NewBox(math3d.V3(-w, -w, z0), math3d.V3(w, w, z1))
	}
	last := -float64(cells) * cellLen

	startLeaf := b.AddLeaf(start, slice(0, cellLen))
	cellLeaves := make([]int, cells)
	for k := range cellLeaves {
		cellLeaves[k] = b.AddLeaf(hall, slice(-float64(k+1)*cellLen, -float64(k)*cellLen))
	}
	endLeaf := b.AddLeaf(end, slice(last-cellLen, last))

	nodes := make([]int, cells+1)
	for k := range nodes {
		z := -float64(k) * cellLen
		nodes[k] = b.AddNode(math3d.Plane{Normal: math3d.V3(0, 0, 1), D: -z})
	}
	for k, n := range nodes {
		if k == 0 {
			b.SetLeaf(n, Front, startLeaf)
		} else {
			b.SetLeaf(n, Front, cellLeaves[k-1])
		}
		if k == cells {
			b.SetLeaf(n, Back, endLeaf)
		} else {
			b.SetChild(n, Back, nodes[k+1])
		}
	}

	b.SetZones(nodes[0], start, hall)
	b.AddSurface(nodes[0], Surface{Kind: Portal, Verts: Square(0, w)})
	b.SetZones(nodes[cells], hall, end)
	b.AddSurface(nodes[cells], Surface{Kind: Portal, Verts: Square(last, w)})

	prop := func(name string, z float64) {
		b.AddEntity(Entity{
			Name:     name,
			Kind:     StaticMesh,
			Static:   true,
			Material: 1,
			Bounds:   math3d.BoxAround(math3d.V3(0, -w+0.5, z), math3d.V3(0.25, 0.5, 0.25)),
		})
	}
	prop("start-prop", cellLen/2)
	for k := range cellLeaves {
		prop(fmt.Sprintf("cell-prop-%d", k), -(float64(k)+0.5)*cellLen)
	}
	prop("end-prop", last-cellLen/2)

	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// Square returns the square of half size h in the plane z, wound
// counter-clockwise seen from +Z.
func Square(z, h float64) []math3d.Vec3 {
	return []math3d.Vec3{
		math3d.V3(-h, -h, z),
		math3d.V3(h, -h, z),
		math3d.V3(h, h, z),
		math3d.V3(-h, h, z),
	}
}
