package render

import (
	"fmt"
	"slices"

	"github.com/taigrr/zonevis/pkg/lighting"
	"github.com/taigrr/zonevis/pkg/math3d"
)

// BatchKind says what a Batch holds.
type BatchKind uint8

const (
	BatchTerrain BatchKind = iota
	BatchSurfaces
	BatchEntity
	BatchStaticMeshes
	BatchStencil
	BatchTranslucentSurface
	BatchTranslucentEntity
	BatchParticles
	BatchCorona
	BatchSelection
)

var batchKindNames = [...]string{
	"terrain", "surfaces", "entity", "static-meshes", "stencil",
	"translucent-surface", "translucent-entity", "particles", "corona", "selection",
}

func (k BatchKind) String() string {
	if int(k) < len(batchKindNames) {
		return batchKindNames[k]
	}
	return fmt.Sprintf("BatchKind(%d)", k)
}

// Batch is one draw call handed to a Sink. Its slices are only valid for the
// duration of Sink.Draw.
type Batch struct {
	Kind       BatchKind
	Pass       int
	Section    int
	Material   int
	Surfaces   []int
	Entities   []int
	Lights     []lighting.Influence
	Projectors []int
	// Stencil is the mask bit written by stencil batches.
	Stencil uint8
}

// Sink receives the ordered output of a frame.
type Sink interface {
	PushState()
	PopState()
	SetTransform(m math3d.Mat4)
	// SetStencilTest restricts drawing to pixels carrying mask; zero disables
	// the test.
	SetStencilTest(mask uint8)
	// AllocStencilMask reserves a stencil bit; ok is false when none is free.
	AllocStencilMask() (mask uint8, ok bool)
	FreeStencilMask(mask uint8)
	// Clear resets depth inside the stencil region mask, or everywhere for zero.
	Clear(mask uint8)
	Draw(b *Batch)
}

// OpKind identifies a recorded Sink call.
type OpKind uint8

const (
	OpPush OpKind = iota
	OpPop
	OpTransform
	OpStencilTest
	OpAlloc
	OpFree
	OpClear
	OpDraw
)

// Op is one recorded Sink call.
type Op struct {
	Kind      OpKind
	Mask      uint8
	Transform math3d.Mat4
	Batch     Batch
}

// Recorder is a Sink that keeps every call. It has seven stencil bits.
type Recorder struct {
	Ops   []Op
	used  uint8
	depth int
	// MaxMasks limits the stencil bits handed out; zero means all seven.
	MaxMasks int
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) PushState() {
	r.depth++
	r.Ops = append(r.Ops, Op{Kind: OpPush})
}

func (r *Recorder) PopState() {
	if r.depth == 0 {
		panic("render: PopState without PushState")
	}
	r.depth--
	r.Ops = append(r.Ops, Op{Kind: OpPop})
}

func (r *Recorder) SetTransform(m math3d.Mat4) {
	r.Ops = append(r.Ops, Op{Kind: OpTransform, Transform: m})
}

func (r *Recorder) SetStencilTest(mask uint8) {
	r.Ops = append(r.Ops, Op{Kind: OpStencilTest, Mask: mask})
}

func (r *Recorder) AllocStencilMask() (uint8, bool) {
	limit := r.MaxMasks
	if limit <= 0 || limit > 7 {
		limit = 7
	}
	for i := 1; i <= limit; i++ {
		bit := uint8(1) << uint(i)
		if r.used&bit == 0 {
			r.used |= bit
			r.Ops = append(r.Ops, Op{Kind: OpAlloc, Mask: bit})
			return bit, true
		}
	}
	return 0, false
}

func (r *Recorder) FreeStencilMask(mask uint8) {
	if r.used&mask != mask {
		panic("render: freeing a stencil mask that is not allocated")
	}
	r.used &^= mask
	r.Ops = append(r.Ops, Op{Kind: OpFree, Mask: mask})
}

func (r *Recorder) Clear(mask uint8) {
	r.Ops = append(r.Ops, Op{Kind: OpClear, Mask: mask})
}

func (r *Recorder) Draw(b *Batch) {
	c := *b
	c.Surfaces = slices.Clone(b.Surfaces)
	c.Entities = slices.Clone(b.Entities)
	c.Lights = slices.Clone(b.Lights)
	c.Projectors = slices.Clone(b.Projectors)
	r.Ops = append(r.Ops, Op{Kind: OpDraw, Batch: c})
}

// Batches returns the recorded draws in order.
func (r *Recorder) Batches() []Batch {
	var out []Batch
	for i := range r.Ops {
		if r.Ops[i].Kind == OpDraw {
			out = append(out, r.Ops[i].Batch)
		}
	}
	return out
}

// InUse returns the stencil bits currently allocated.
func (r *Recorder) InUse() uint8 {
	return r.used
}

// Balanced reports whether every PushState has been popped.
func (r *Recorder) Balanced() bool {
	return r.depth == 0
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.used = 0
	r.depth = 0
}
