// Package zone tracks per-frame visibility state for each zone of a level:
// the portal volumes through which the zone has been seen and the anti-portal
// volumes that hide parts of it.
package zone

import "math/bits"

// MaxZones is the number of zones a Mask can address.
const MaxZones = 64

// Mask is a set of zone indices.
type Mask uint64

// All contains every zone.
const All = ^Mask(0)

// Bit returns the mask holding only zone i.
func Bit(i int) Mask {
	if i < 0 || i >= MaxZones {
		panic("zone: index out of range")
	}
	return 1 << uint(i)
}

// Has reports whether zone i is in the mask.
func (m Mask) Has(i int) bool {
	return i >= 0 && i < MaxZones && m&(1<<uint(i)) != 0
}

// Intersects reports whether the masks share a zone.
func (m Mask) Intersects(o Mask) bool {
	return m&o != 0
}

// Count returns the number of zones in the mask.
func (m Mask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Each calls fn for every zone in the mask, lowest index first.
func (m Mask) Each(fn func(i int)) {
	for m != 0 {
		i := bits.TrailingZeros64(uint64(m))
		fn(i)
		m &^= 1 << uint(i)
	}
}
