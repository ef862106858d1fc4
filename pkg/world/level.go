// Package world holds the read-only spatial database the visibility code
// walks: a BSP tree of split nodes and leaves, the zones leaves belong to and
// the surfaces, entities and lights placed in them.
package world

import (
	"fmt"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/zone"
)

// None marks an absent child, leaf, or link.
const None = -1

// Sides of a split node.
const (
	Front = 0
	Back  = 1
)

// Node is a split node. For each side it may have a child node, a leaf, or
// neither (solid space).
type Node struct {
	Plane    math3d.Plane
	Children [2]int
	Leaves   [2]int
	// Zones holds the zone on each side of the node's plane.
	Zones    [2]int
	Surfaces []int
	Bounds   math3d.Box
	ZoneMask zone.Mask
}

// Leaf is a convex empty region of a single zone.
type Leaf struct {
	Zone   int
	Bounds math3d.Box
	// Entities lists static entities touching the leaf, built once at load.
	Entities []int
	// Lights lists static lights permeating the leaf.
	Lights []int
}

// SurfaceKind selects how the traversal treats a surface.
type SurfaceKind uint8

const (
	Ordinary SurfaceKind = iota
	Sky
	Portal
	AntiPortal
	Mirror
)

var surfaceKindNames = [...]string{"ordinary", "sky", "portal", "antiportal", "mirror"}

func (k SurfaceKind) String() string {
	if int(k) < len(surfaceKindNames) {
		return surfaceKindNames[k]
	}
	return fmt.Sprintf("SurfaceKind(%d)", k)
}

// Surface is a convex polygon lying in its node's plane.
type Surface struct {
	Kind        SurfaceKind
	Verts       []math3d.Vec3
	Material    int
	Section     int
	Translucent bool
	TwoSided    bool
}

// Warp links a zone to another place in the level. Looking through a portal
// into a warp zone shows Target as seen through Transform.
type Warp struct {
	Target    int
	Transform math3d.Mat4
}

// SkyLink names the zone drawn behind sky surfaces and the point in it the
// sky is viewed from.
type SkyLink struct {
	Zone   int
	Origin math3d.Vec3
}

// ZoneInfo carries per-zone properties.
type ZoneInfo struct {
	Name string
	// FogDistance closes portal volumes built into the zone. Zero disables it.
	FogDistance float64
	Sky         *SkyLink
	// Lonely zones do not let visibility leave through their portals.
	Lonely    bool
	Exclude   []int
	Warp      *Warp
	Occluders []int
}

// EntityKind routes an entity to a draw list.
type EntityKind uint8

const (
	Mesh EntityKind = iota
	StaticMesh
	Particles
	Terrain
)

// FilterState caches the result of the gameplay relevance filter for static
// entities.
type FilterState uint8

const (
	FilterUnknown FilterState = iota
	FilterYes
	FilterNo
)

// Entity is anything placed in the level besides BSP surfaces.
type Entity struct {
	Name        string
	Kind        EntityKind
	Bounds      math3d.Box
	Static      bool
	Hidden      bool
	Translucent bool
	Material    int
	// CullDistance hides the entity beyond this distance. Zero disables it.
	CullDistance float64
	Selected     bool
	// Pending entities have no render data yet and are skipped.
	Pending bool

	Filter FilterState `msgpack:"-"`
}

// LightKind selects the light falloff model.
type LightKind uint8

const (
	PointLight LightKind = iota
	SpotLight
	SunLight
)

// Light is a static or dynamic light source.
type Light struct {
	Kind       LightKind
	Position   math3d.Vec3
	Direction  math3d.Vec3
	Radius     float64
	Brightness float64
	// Cone is the cosine of the spot half-angle.
	Cone    float64
	Dynamic bool
	Corona  bool
}

// Sphere returns the light's bounding sphere.
func (l *Light) Sphere() math3d.Sphere {
	return math3d.Sphere{Center: l.Position, Radius: l.Radius}
}

// Projector casts a material onto whatever its box touches.
type Projector struct {
	Bounds   math3d.Box
	Material int
}

// Occluder is a convex solid that hides what lies behind it. Faces wind
// outward.
type Occluder struct {
	Zone  int
	Faces [][]math3d.Vec3
}

// Database is the spatial database consumed by the renderer. Indices are
// stable for the lifetime of the level; accessors panic on a bad index.
type Database interface {
	Root() int
	Node(i int) *Node
	Leaf(i int) *Leaf
	Surface(i int) *Surface
	Zone(i int) *ZoneInfo
	ZoneOf(node, side int) int
	Entity(i int) *Entity
	Light(i int) *Light
	Projector(i int) *Projector
	Occluder(i int) *Occluder

	NumLeaves() int
	NumSurfaces() int
	NumZones() int
	NumEntities() int
	NumLights() int
	NumProjectors() int

	PointLeaf(p math3d.Vec3) int
	BoxLeaves(b math3d.Box, fn func(leaf int))
	Occluded(a, b math3d.Vec3) bool
	Revision() uint32
}

// Level is the in-memory Database.
type Level struct {
	Nodes      []Node
	Leaves     []Leaf
	Surfaces   []Surface
	Zones      []ZoneInfo
	Entities   []Entity
	Lights     []Light
	Projectors []Projector
	Occluders  []Occluder
	RootNode   int
	Rev        uint32
}

var _ Database = (*Level)(nil)

func (l *Level) Root() int { return l.RootNode }

func (l *Level) Node(i int) *Node {
	if i < 0 || i >= len(l.Nodes) {
		panic(fmt.Sprintf("world: node %d out of range", i))
	}
	return &l.Nodes[i]
}

func (l *Level) Leaf(i int) *Leaf {
	if i < 0 || i >= len(l.Leaves) {
		panic(fmt.Sprintf("world: leaf %d out of range", i))
	}
	return &l.Leaves[i]
}

func (l *Level) Surface(i int) *Surface {
	if i < 0 || i >= len(l.Surfaces) {
		panic(fmt.Sprintf("world: surface %d out of range", i))
	}
	return &l.Surfaces[i]
}

func (l *Level) Zone(i int) *ZoneInfo {
	if i < 0 || i >= len(l.Zones) {
		panic(fmt.Sprintf("world: zone %d out of range", i))
	}
	return &l.Zones[i]
}

// ZoneOf returns the zone on one side of a node.
func (l *Level) ZoneOf(node, side int) int {
	return l.Node(node).Zones[side]
}

func (l *Level) Entity(i int) *Entity {
	if i < 0 || i >= len(l.Entities) {
		panic(fmt.Sprintf("world: entity %d out of range", i))
	}
	return &l.Entities[i]
}

func (l *Level) Light(i int) *Light {
	if i < 0 || i >= len(l.Lights) {
		panic(fmt.Sprintf("world: light %d out of range", i))
	}
	return &l.Lights[i]
}

func (l *Level) Projector(i int) *Projector {
	if i < 0 || i >= len(l.Projectors) {
		panic(fmt.Sprintf("world: projector %d out of range", i))
	}
	return &l.Projectors[i]
}

func (l *Level) Occluder(i int) *Occluder {
	if i < 0 || i >= len(l.Occluders) {
		panic(fmt.Sprintf("world: occluder %d out of range", i))
	}
	return &l.Occluders[i]
}

func (l *Level) NumLeaves() int     { return len(l.Leaves) }
func (l *Level) NumSurfaces() int   { return len(l.Surfaces) }
func (l *Level) NumZones() int      { return len(l.Zones) }
func (l *Level) NumEntities() int   { return len(l.Entities) }
func (l *Level) NumLights() int     { return len(l.Lights) }
func (l *Level) NumProjectors() int { return len(l.Projectors) }

// Revision changes whenever entities are added or moved.
func (l *Level) Revision() uint32 { return l.Rev }

// Touch bumps the revision counter.
func (l *Level) Touch() { l.Rev++ }
