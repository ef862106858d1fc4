package world

import (
	"bytes"
	"strings"
	"testing"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/zone"
)

func TestCorridorPointLeaf(t *testing.T) {
	l := Corridor(4, 10)

	tests := []struct {
		name string
		p    math3d.Vec3
		zone int
	}{
		{"start room", math3d.V3(0, 0, 5), CorridorStart},
		{"first cell", math3d.V3(0, 0, -0.5), CorridorHall},
		{"last cell", math3d.V3(0, 0, -39), CorridorHall},
		{"end room", math3d.V3(0, 0, -45), CorridorEnd},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			leaf := l.PointLeaf(tc.p)
			if leaf == None {
				t.Fatal("PointLeaf returned None")
			}
			if got := l.Leaf(leaf).Zone; got != tc.zone {
				t.Errorf("zone = %d, want %d", got, tc.zone)
			}
		})
	}
}

func TestCorridorPrepared(t *testing.T) {
	l := Corridor(3, 10)

	root := l.Node(l.Root())
	want := zone.Bit(CorridorStart) | zone.Bit(CorridorHall) | zone.Bit(CorridorEnd)
	if root.ZoneMask != want {
		t.Errorf("root mask = %b, want %b", root.ZoneMask, want)
	}
	if root.Bounds.Max.Z < 10 || root.Bounds.Min.Z > -40 {
		t.Errorf("root bounds %v do not cover the level", root.Bounds)
	}

	for i := 0; i < l.NumLeaves(); i++ {
		if got := len(l.Leaf(i).Entities); got != 1 {
			t.Errorf("leaf %d holds %d static entities, want 1", i, got)
		}
	}
}

func TestBoxLeaves(t *testing.T) {
	l := Corridor(4, 10)

	var got []int
	l.BoxLeaves(math3d.NewBox(math3d.V3(-1, -1, -15), math3d.V3(1, 1, -5)), func(leaf int) {
		got = append(got, leaf)
	})
	if len(got) != 2 {
		t.Fatalf("box spanning two cells touched %d leaves, want 2", len(got))
	}
	for _, leaf := range got {
		if l.Leaf(leaf).Zone != CorridorHall {
			t.Errorf("leaf %d in zone %d, want corridor", leaf, l.Leaf(leaf).Zone)
		}
	}
}

// halfSolid is a level with empty space above y=0 and solid below.
func halfSolid(t *testing.T) *Level {
	t.Helper()
	b := NewBuilder()
	z := b.AddZone(ZoneInfo{Name: "air"})
	leaf := b.AddLeaf(z, math3d.NewBox(math3d.V3(-10, 0, -10), math3d.V3(10, 10, 10)))
	n := b.AddNode(math3d.Plane{Normal: math3d.V3(0, 1, 0)})
	b.SetLeaf(n, Front, leaf)
	l, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return l
}

func TestOccluded(t *testing.T) {
	l := halfSolid(t)

	tests := []struct {
		name string
		a, b math3d.Vec3
		want bool
	}{
		{"open air", math3d.V3(-5, 1, 0), math3d.V3(5, 1, 0), false},
		{"into the floor", math3d.V3(0, 5, 0), math3d.V3(0, -5, 0), true},
		{"through the floor", math3d.V3(-5, 1, 0), math3d.V3(5, 1, 0).Add(math3d.V3(0, -3, 0)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.Occluded(tc.a, tc.b); got != tc.want {
				t.Errorf("Occluded = %v, want %v", got, tc.want)
			}
		})
	}

	if l.PointLeaf(math3d.V3(0, -1, 0)) != None {
		t.Error("point below the floor should be in solid space")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *Level)
		errMsg string
	}{
		{"dangling child", func(l *Level) { l.Nodes[0].Children[Back] = 99 }, "child 99"},
		{"bad leaf zone", func(l *Level) { l.Leaves[0].Zone = 7 }, "zone 7"},
		{"bad surface", func(l *Level) { l.Nodes[0].Surfaces = append(l.Nodes[0].Surfaces, 42) }, "surface 42"},
		{"cycle", func(l *Level) {
			l.Nodes[1].Children[Back] = 0
			l.Nodes[1].Leaves[Back] = None
		}, "reached twice"},
		{"bad warp", func(l *Level) { l.Zones[1].Warp = &Warp{Target: 12} }, "warp target"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := Corridor(1, 10)
			tc.mutate(l)
			err := l.Validate()
			if err == nil {
				t.Fatal("Validate returned nil")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("error %q does not mention %q", err, tc.errMsg)
			}
		})
	}

	if err := Corridor(3, 10).Validate(); err != nil {
		t.Errorf("corridor invalid: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	l := Corridor(2, 8)
	l.Entities[0].Filter = FilterYes

	var buf bytes.Buffer
	if err := l.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Nodes) != len(l.Nodes) || len(got.Leaves) != len(l.Leaves) || len(got.Surfaces) != len(l.Surfaces) {
		t.Fatalf("loaded %d/%d/%d nodes/leaves/surfaces, want %d/%d/%d",
			len(got.Nodes), len(got.Leaves), len(got.Surfaces), len(l.Nodes), len(l.Leaves), len(l.Surfaces))
	}
	if got.Nodes[0].ZoneMask != l.Nodes[0].ZoneMask {
		t.Error("zone mask lost")
	}
	if got.Entities[0].Filter != FilterUnknown {
		t.Error("filter cache should not be persisted")
	}
	p := math3d.V3(0, 0, -3)
	if got.PointLeaf(p) != l.PointLeaf(p) {
		t.Error("loaded level locates points differently")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(strings.NewReader("not a level")); err == nil {
		t.Error("Load accepted garbage")
	}
}

func TestSurfaceKindString(t *testing.T) {
	if Mirror.String() != "mirror" {
		t.Errorf("Mirror.String() = %q", Mirror.String())
	}
	if SurfaceKind(99).String() != "SurfaceKind(99)" {
		t.Errorf("unknown kind = %q", SurfaceKind(99).String())
	}
}
