package models

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/zonevis/pkg/log"
	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/world"
)

var logger = log.New("models")

// OccluderPrefix marks glTF nodes that are imported as anti-portal occluders
// instead of drawable meshes. Matching ignores case.
const OccluderPrefix = "antiportal"

// Object is one placed mesh of an imported scene, in world space.
type Object struct {
	Name     string
	Mesh     *Mesh
	Occluder bool
}

// Scene is the content of one glTF file.
type Scene struct {
	Objects []Object
}

// Load reads a glTF or GLB file.
func Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	sc, err := Import(doc)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return sc, nil
}

// Import walks the default scene of doc, or every root node when it has
// none, and collects each node that carries a mesh.
func Import(doc *gltf.Document) (*Scene, error) {
	sc := &Scene{}
	for _, n := range rootNodes(doc) {
		if err := sc.walk(doc, n, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil {
			s = *doc.Scene
		}
		if s < len(doc.Scenes) {
			return doc.Scenes[s].Nodes
		}
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (sc *Scene) walk(doc *gltf.Document, ni int, parent math3d.Mat4, depth int) error {
	if ni < 0 || ni >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range", ni)
	}
	if depth > len(doc.Nodes) {
		return fmt.Errorf("node %d: cycle in node hierarchy", ni)
	}
	n := doc.Nodes[ni]
	xf := parent.Mul(localTransform(n))

	if n.Mesh != nil {
		if *n.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("node %q: mesh %d out of range", n.Name, *n.Mesh)
		}
		m := doc.Meshes[*n.Mesh]
		name := n.Name
		if name == "" {
			name = m.Name
		}
		mesh := NewMesh(name)
		if err := readMesh(doc, m, mesh); err != nil {
			return fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		mesh.Transform(xf)
		if len(mesh.Faces) > 0 {
			sc.Objects = append(sc.Objects, Object{
				Name:     name,
				Mesh:     mesh,
				Occluder: strings.HasPrefix(strings.ToLower(name), OccluderPrefix),
			})
		}
	}
	for _, c := range n.Children {
		if err := sc.walk(doc, c, xf, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localTransform is the node's matrix when set, else its TRS.
func localTransform(n *gltf.Node) math3d.Mat4 {
	m := math3d.Mat4(n.Matrix)
	if m != (math3d.Mat4{}) && m != math3d.Identity() {
		return m
	}
	r := n.Rotation
	if r == ([4]float64{}) {
		r[3] = 1
	}
	s := n.Scale
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}
	t := n.Translation
	return math3d.Translate(math3d.V3(t[0], t[1], t[2])).
		Mul(math3d.FromQuat(r[0], r[1], r[2], r[3])).
		Mul(math3d.Scale(math3d.V3(s[0], s[1], s[2])))
}

// Stats counts what Apply added to a level.
type Stats struct {
	Entities  int
	Occluders int
	Skipped   int
}

// Apply adds the scene to l: meshes become static entities and occluders are
// registered with the zone containing their center. Occluders whose center
// lies in solid space or outside any zone are skipped. The level is prepared again afterwards.
func (sc *Scene) Apply(l *world.Level, material int) Stats {
	var st Stats
	for _, o := range sc.Objects {
		if !o.Occluder {
			mat := o.Mesh.Material()
			if mat < 0 {
				mat = material
			}
			l.Entities = append(l.Entities, world.Entity{
				Name:     o.Name,
				Kind:     world.StaticMesh,
				Static:   true,
				Bounds:   o.Mesh.Bounds,
				Material: mat,
			})
			st.Entities++
			continue
		}
		leaf := l.PointLeaf(o.Mesh.Bounds.Center())
		if leaf == world.None {
			logger.Warningf("occluder %q lies in solid space, skipped", o.Name)
			st.Skipped++
			continue
		}
		z := l.Leaf(leaf).Zone
		if z == world.None {
			logger.Warningf("occluder %q lies in a leaf without a zone, skipped", o.Name)
			st.Skipped++
			continue
		}
		l.Occluders = append(l.Occluders, world.Occluder{Zone: z, Faces: o.Mesh.Polygons()})
		l.Zones[z].Occluders = append(l.Zones[z].Occluders, len(l.Occluders)-1)
		st.Occluders++
	}
	l.Prepare()
	logger.Infof("imported %d entities and %d occluders, skipped %d", st.Entities, st.Occluders, st.Skipped)
	return st
}

// readMesh appends the triangle primitives of m to mesh.
func readMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}
		base := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, positions...)

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{V: [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]}, Material: material}
			for _, v := range f.V {
				if v >= len(mesh.Vertices) {
					return fmt.Errorf("index %d out of range", v-base)
				}
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	mesh.CalculateBounds()
	return nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v of %v", accessor.Type, accessor.ComponentType)
	}
	data, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, accessor.Count)
	for i := range out {
		off := start + i*stride
		out[i] = math3d.V3(
			float64(readFloat32(data[off:])),
			float64(readFloat32(data[off+4:])),
			float64(readFloat32(data[off+8:])),
		)
	}
	return out, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}
	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}
	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, accessor.Count)
	for i := range out {
		off := start + i*stride
		switch size {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out, nil
}

// accessorBytes returns the buffer behind an accessor with the offset of its
// first element and the element stride, checking that every element fits.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (data []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data = doc.Buffers[view.Buffer].Data
	if data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}
	start = view.ByteOffset + accessor.ByteOffset
	stride = view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(data) {
			return nil, 0, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(data))
		}
	}
	return data, start, stride, nil
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
