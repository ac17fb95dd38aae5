package geom

import "github.com/jinzhu/copier"

// Model is a renderer-independent instance: a named set of model-space hull
// points and a transform. Renderer adapters embed it so bounds math never
// needs to reach into GPU-side data.
type Model struct {
	Name   string
	Points []Vec3
	Xform  Transform
}

// NewModel returns a model at the identity transform.
func NewModel(name string, points []Vec3) *Model {
	return &Model{Name: name, Points: points, Xform: Identity()}
}

// NewBoxModel returns a model whose geometry is the corners of b.
func NewBoxModel(name string, b Box) *Model {
	if b.IsEmpty() {
		return NewModel(name, nil)
	}
	return NewModel(name, b.Corners())
}

func (m *Model) LocalPoints() []Vec3 { return m.Points }

func (m *Model) Transform() Transform { return m.Xform }

func (m *Model) SetTransform(t Transform) { m.Xform = t }

// Bounds is shorthand for ComputeBounds(m).
func (m *Model) Bounds() Box { return ComputeBounds(m) }

// Clone returns a deep copy that shares no points with m, so one loaded asset
// can back many placements without aliasing their transforms.
func (m *Model) Clone() *Model {
	c := &Model{}
	if err := copier.CopyWithOption(c, m, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds; fall back to a manual copy.
		c = &Model{Name: m.Name, Xform: m.Xform, Points: append([]Vec3(nil), m.Points...)}
	}
	return c
}

// LocalBox is the box around the model-space points, ignoring the transform.
func (m *Model) LocalBox() Box {
	b := EmptyBox()
	for _, p := range m.Points {
		b.ExpandByPoint(p)
	}
	return b
}
