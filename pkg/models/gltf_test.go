package models

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/volume"
	"github.com/taigrr/zonevis/pkg/world"
)

var cubePositions = []float32{
	-1, -1, -1,
	1, -1, -1,
	1, 1, -1,
	-1, 1, -1,
	-1, -1, 1,
	1, -1, 1,
	1, 1, 1,
	-1, 1, 1,
}

var cubeIndices = []uint16{
	4, 5, 6, 4, 6, 7, // +Z
	0, 2, 1, 0, 3, 2, // -Z
	1, 2, 6, 1, 6, 5, // +X
	0, 4, 7, 0, 7, 3, // -X
	3, 7, 6, 3, 6, 2, // +Y
	0, 1, 5, 0, 5, 4, // -Y
}

func index(i int) *int { return &i }

// cubeDoc returns a document whose single mesh is a 2x2x2 cube around the
// origin, placed by the given root nodes.
func cubeDoc(nodes ...*gltf.Node) *gltf.Document {
	data := make([]byte, 0, len(cubePositions)*4+len(cubeIndices)*2)
	for _, f := range cubePositions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	posLen := len(data)
	for _, i := range cubeIndices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	roots := make([]int, len(nodes))
	for i := range roots {
		roots[i] = i
	}
	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
			{Buffer: 0, ByteOffset: posLen, ByteLength: len(data) - posLen},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: index(0), ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3, Count: 8},
			{BufferView: index(1), ComponentType: gltf.ComponentUshort, Type: gltf.AccessorScalar, Count: len(cubeIndices)},
		},
		Meshes: []*gltf.Mesh{{
			Name: "cube",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    index(1),
				Material:   index(3),
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
		Nodes:  nodes,
		Scenes: []*gltf.Scene{{Nodes: roots}},
		Scene:  index(0),
	}
}

func TestImportCube(t *testing.T) {
	doc := cubeDoc(&gltf.Node{Name: "crate", Mesh: index(0), Translation: [3]float64{0, 0, -6}})

	sc, err := Import(doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(sc.Objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(sc.Objects))
	}
	o := sc.Objects[0]
	if o.Name != "crate" || o.Occluder {
		t.Errorf("object = %q occluder=%v, want crate drawable", o.Name, o.Occluder)
	}
	if got := o.Mesh.TriangleCount(); got != 12 {
		t.Errorf("TriangleCount = %d, want 12", got)
	}
	if got := o.Mesh.Material(); got != 3 {
		t.Errorf("Material = %d, want 3", got)
	}
	want := math3d.NewBox(math3d.V3(-1, -1, -7), math3d.V3(1, 1, -5))
	if !o.Mesh.Bounds.Min.ApproxEqual(want.Min, 1e-9) || !o.Mesh.Bounds.Max.ApproxEqual(want.Max, 1e-9) {
		t.Errorf("Bounds = %+v, want %+v", o.Mesh.Bounds, want)
	}
}

func TestImportNodeTransforms(t *testing.T) {
	s45 := math.Sqrt2 / 2
	tests := []struct {
		name     string
		nodes    []*gltf.Node
		min, max math3d.Vec3
	}{
		{
			name:  "scale",
			nodes: []*gltf.Node{{Mesh: index(0), Scale: [3]float64{2, 1, 3}}},
			min:   math3d.V3(-2, -1, -3),
			max:   math3d.V3(2, 1, 3),
		},
		{
			name:  "rotation then translation",
			nodes: []*gltf.Node{{Mesh: index(0), Scale: [3]float64{3, 1, 1}, Rotation: [4]float64{0, s45, 0, s45}, Translation: [3]float64{10, 0, 0}}},
			min:   math3d.V3(9, -1, -3),
			max:   math3d.V3(11, 1, 3),
		},
		{
			name: "matrix",
			nodes: []*gltf.Node{{Mesh: index(0), Matrix: [16]float64{
				1, 0, 0, 0,
				0, 1, 0, 0,
				0, 0, 1, 0,
				5, 6, 7, 1,
			}}},
			min: math3d.V3(4, 5, 6),
			max: math3d.V3(6, 7, 8),
		},
		{
			name: "child of translated parent",
			nodes: []*gltf.Node{
				{Translation: [3]float64{0, 4, 0}, Children: []int{1}},
				{Mesh: index(0), Translation: [3]float64{1, 0, 0}},
			},
			min: math3d.V3(0, 3, -1),
			max: math3d.V3(2, 5, 1),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := cubeDoc(tc.nodes...)
			doc.Scenes[0].Nodes = []int{0}
			sc, err := Import(doc)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if len(sc.Objects) != 1 {
				t.Fatalf("got %d objects, want 1", len(sc.Objects))
			}
			b := sc.Objects[0].Mesh.Bounds
			if !b.Min.ApproxEqual(tc.min, 1e-9) || !b.Max.ApproxEqual(tc.max, 1e-9) {
				t.Errorf("Bounds = %v..%v, want %v..%v", b.Min, b.Max, tc.min, tc.max)
			}
		})
	}
}

func TestImportMirroredKeepsOutwardFaces(t *testing.T) {
	doc := cubeDoc(&gltf.Node{Mesh: index(0), Scale: [3]float64{-1, 1, 1}})
	sc, err := Import(doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	m := sc.Objects[0].Mesh
	center := m.Bounds.Center()
	for i, face := range m.Polygons() {
		poly := volume.NewPolygon(face...)
		pl := poly.Plane()
		if d := pl.Distance(center); d >= 0 {
			t.Errorf("face %d faces inward: center distance %v", i, d)
		}
	}
}

func TestImportWithoutScene(t *testing.T) {
	doc := cubeDoc(
		&gltf.Node{Name: "parent", Children: []int{1}},
		&gltf.Node{Name: "child", Mesh: index(0)},
		&gltf.Node{Name: "other", Mesh: index(0)},
	)
	doc.Scenes = nil
	doc.Scene = nil

	sc, err := Import(doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	var names []string
	for _, o := range sc.Objects {
		names = append(names, o.Name)
	}
	if len(names) != 2 || names[0] != "child" || names[1] != "other" {
		t.Errorf("objects = %v, want [child other]", names)
	}
}

func TestImportOccluderName(t *testing.T) {
	tests := []struct {
		name     string
		occluder bool
	}{
		{"AntiPortal.001", true},
		{"antiportal", true},
		{"pillar", false},
		{"my-antiportal", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := Import(cubeDoc(&gltf.Node{Name: tc.name, Mesh: index(0)}))
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if got := sc.Objects[0].Occluder; got != tc.occluder {
				t.Errorf("Occluder = %v, want %v", got, tc.occluder)
			}
		})
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gltf.Document)
	}{
		{"mesh out of range", func(d *gltf.Document) { d.Nodes[0].Mesh = index(4) }},
		{"node out of range", func(d *gltf.Document) { d.Scenes[0].Nodes = []int{7} }},
		{"buffer overrun", func(d *gltf.Document) { d.Accessors[0].Count = 100 }},
		{"missing data", func(d *gltf.Document) { d.Buffers[0].Data = nil }},
		{"index out of range", func(d *gltf.Document) { d.Accessors[0].Count = 4 }},
		{"wrong position type", func(d *gltf.Document) { d.Accessors[0].Type = gltf.AccessorVec2 }},
		{"cycle", func(d *gltf.Document) { d.Nodes[0].Children = []int{0} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := cubeDoc(&gltf.Node{Mesh: index(0)})
			tc.mutate(doc)
			if _, err := Import(doc); err == nil {
				t.Error("Import succeeded, want error")
			}
		})
	}
}

func TestLoadInvalidPath(t *testing.T) {
	if _, err := Load("/nonexistent/path.glb"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestApply(t *testing.T) {
	l := world.Corridor(4, 4)
	rev := l.Revision()
	entities := len(l.Entities)

	sc, err := Import(cubeDoc(
		&gltf.Node{Name: "crate", Mesh: index(0), Translation: [3]float64{0, -1, -6}, Scale: [3]float64{0.5, 0.5, 0.5}},
		&gltf.Node{Name: "antiportal-pillar", Mesh: index(0), Translation: [3]float64{0, 0, -10}},
	))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	st := sc.Apply(l, 7)
	if st != (Stats{Entities: 1, Occluders: 1}) {
		t.Fatalf("Apply = %+v", st)
	}
	if l.Revision() == rev {
		t.Error("Apply did not bump the level revision")
	}

	crate := len(l.Entities) - 1
	if crate != entities {
		t.Fatalf("entity count = %d, want %d", len(l.Entities), entities+1)
	}
	e := l.Entity(crate)
	if !e.Static || e.Kind != world.StaticMesh || e.Material != 3 {
		t.Errorf("entity = %+v", e)
	}
	leaf := l.PointLeaf(math3d.V3(0, -1, -6))
	found := false
	for _, i := range l.Leaf(leaf).Entities {
		found = found || i == crate
	}
	if !found {
		t.Error("crate missing from its leaf entity list")
	}

	if len(l.Occluders) != 1 {
		t.Fatalf("got %d occluders, want 1", len(l.Occluders))
	}
	occ := l.Occluder(0)
	if occ.Zone != world.CorridorHall || len(occ.Faces) != 12 {
		t.Errorf("occluder zone %d with %d faces, want zone %d with 12", occ.Zone, len(occ.Faces), world.CorridorHall)
	}
	if got := l.Zone(world.CorridorHall).Occluders; len(got) != 1 || got[0] != 0 {
		t.Errorf("hall occluders = %v, want [0]", got)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplySkipsOccluderInSolid(t *testing.T) {
	sc, err := Import(cubeDoc(&gltf.Node{Name: "antiportal", Mesh: index(0)}))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	st := sc.Apply(&world.Level{}, 0)
	if st != (Stats{Skipped: 1}) {
		t.Errorf("Apply = %+v, want one skipped", st)
	}
}
