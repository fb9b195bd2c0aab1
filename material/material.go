package material

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	Red  = colorful.Color{R: 1, G: 0, B: 0}
	Blue = colorful.Color{R: 0, G: 0, B: 1}
)

type Material struct {
	Name      string
	Color     colorful.Color
	Alpha     float32
	Roughness float32
	Metallic  float32
}

func Default() *Material {
	return &Material{
		Name:      "default",
		Color:     colorful.Color{R: 1, G: 1, B: 1},
		Alpha:     1,
		Roughness: 0.5,
	}
}

// Clone returns a distinct instance sharing nothing with m.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}

func (m *Material) RGBA() [4]float32 {
	c := m.Color.Clamped()
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), m.Alpha}
}

func (m *Material) Hex() string {
	return m.Color.Clamped().Hex()
}

// Table holds one material per depth level, index 0 is the root.
type Table []*Material

// NewTable clones template maxDepth+1 times with colors interpolated linearly in
// RGB from low (depth 0) to high (depth maxDepth). With maxDepth == 0 the single
// entry keeps the low color.
func NewTable(template *Material, low, high colorful.Color, maxDepth int) Table {
	if maxDepth < 0 {
		maxDepth = 0
	}
	t := make(Table, maxDepth+1)
	for i := range t {
		m := template.Clone()
		m.Name = fmt.Sprintf("%s_depth%d", template.Name, i)
		if maxDepth == 0 {
			m.Color = low
		} else {
			m.Color = low.BlendRgb(high, float64(i)/float64(maxDepth))
		}
		t[i] = m
	}
	return t
}

func (t Table) At(depth int) *Material {
	if depth < 0 || depth >= len(t) {
		return nil
	}
	return t[depth]
}
