package render

// span addresses a run of values in one of the renderer's bump stacks.
type span struct {
	start, n int
}

type entityItem struct {
	entity     int
	lights     span
	projectors span
}

type sectionBatch struct {
	section  int
	material int
	surfaces []int
}

type meshBatch struct {
	material int
	items    []entityItem
}

type stencilItem struct {
	surface int
	mask    uint8
}

// transItem is a node of the back-to-front translucent list. Exactly one of
// surface and entity is set.
type transItem struct {
	dist    float64
	surface int
	entity  entityItem
	next    *transItem
}

// drawLists accumulates one pass's output during traversal.
type drawLists struct {
	terrain     []entityItem
	sections    []sectionBatch
	opaque      []entityItem
	statics     []meshBatch
	stencil     []stencilItem
	translucent *transItem
	particles   []entityItem
	coronas     []int
	selection   []int
}

func (d *drawLists) reset() {
	d.terrain = d.terrain[:0]
	for i := range d.sections {
		d.sections[i].surfaces = d.sections[i].surfaces[:0]
	}
	d.sections = d.sections[:0]
	d.opaque = d.opaque[:0]
	for i := range d.statics {
		d.statics[i].items = d.statics[i].items[:0]
	}
	d.statics = d.statics[:0]
	d.stencil = d.stencil[:0]
	d.translucent = nil
	d.particles = d.particles[:0]
	d.coronas = d.coronas[:0]
	d.selection = d.selection[:0]
}

// addSurface files an opaque surface under its section and material.
func (d *drawLists) addSurface(section, material, surface int) {
	for i := range d.sections {
		b := &d.sections[i]
		if b.section == section && b.material == material {
			b.surfaces = append(b.surfaces, surface)
			return
		}
	}
	d.sections = grow(d.sections)
	b := &d.sections[len(d.sections)-1]
	b.section, b.material = section, material
	b.surfaces = append(b.surfaces[:0], surface)
}

// addStatic files a static mesh under its material.
func (d *drawLists) addStatic(material int, item entityItem) {
	for i := range d.statics {
		b := &d.statics[i]
		if b.material == material {
			b.items = append(b.items, item)
			return
		}
	}
	d.statics = grow(d.statics)
	b := &d.statics[len(d.statics)-1]
	b.material = material
	b.items = append(b.items[:0], item)
}

// addTranslucent links t into the list, farthest first. Items at equal
// distance keep insertion order.
func (d *drawLists) addTranslucent(t *transItem) {
	link := &d.translucent
	for *link != nil && (*link).dist >= t.dist {
		link = &(*link).next
	}
	t.next = *link
	*link = t
}

func (d *drawLists) addCorona(light int) {
	for _, l := range d.coronas {
		if l == light {
			return
		}
	}
	d.coronas = append(d.coronas, light)
}

// grow extends s by one element, reusing spare capacity so that nested slices
// left over from earlier frames keep their storage.
func grow[T any](s []T) []T {
	if len(s) < cap(s) {
		return s[:len(s)+1]
	}
	var zero T
	return append(s, zero)
}
