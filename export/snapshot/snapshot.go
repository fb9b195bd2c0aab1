// Package snapshot renders a fractal tree to a flat shaded image on the CPU,
// painting triangles far to near.
package snapshot

import (
	"io"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/mogaika/fractal_browser/fractal"
	"github.com/mogaika/fractal_browser/r3d"
)

type Options struct {
	Width, Height int
	Yaw, Pitch    float32 // camera orbit, degrees
	Light         mgl32.Vec3
	Ambient       float32
	Background    colorful.Color
}

func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		Yaw:        35,
		Pitch:      25,
		Light:      mgl32.Vec3{0.4, 1, 0.6}.Normalize(),
		Ambient:    0.25,
		Background: colorful.Color{R: 0.08, G: 0.08, B: 0.1},
	}
}

// Bounds returns a sphere enclosing every node of the tree.
func Bounds(root *fractal.Fractal) (center mgl32.Vec3, radius float32) {
	var min, max mgl32.Vec3
	first := true
	meshRadius := float32(0.5)
	if root.Mesh != nil {
		meshRadius = root.Mesh.Radius()
	}
	root.Walk(func(f *fractal.Fractal) bool {
		p := f.Transform.WorldPosition()
		r := f.Transform.WorldScale() * meshRadius
		for i := 0; i < 3; i++ {
			if first || p[i]-r < min[i] {
				min[i] = p[i] - r
			}
			if first || p[i]+r > max[i] {
				max[i] = p[i] + r
			}
		}
		first = false
		return true
	})
	center = min.Add(max).Mul(0.5)
	return center, max.Sub(min).Len() / 2
}

// FitCamera places an orbit camera so the whole tree fits the view.
func FitCamera(root *fractal.Fractal, yaw, pitch float32) *r3d.OrbitController {
	center, radius := Bounds(root)
	cam := r3d.NewOrbitController(center, 1, pitch, yaw)
	half := math.Sin(float64(mgl32.DegToRad(cam.Fov)) / 2)
	cam.Distance = float32(float64(radius)/half) * 1.1
	if cam.Distance < 0.1 {
		cam.Distance = 0.1
	}
	return cam
}

type triangle struct {
	points [3][2]float64
	depth  float32
	color  colorful.Color
}

func collect(root *fractal.Fractal, cam *r3d.OrbitController, opt Options) []triangle {
	eye := cam.Position()
	proj := r3d.NewProjector(cam, eye, opt.Width, opt.Height, float32(opt.Width)/float32(opt.Height))
	m := root.Mesh

	var tris []triangle
	root.Walk(func(f *fractal.Fractal) bool {
		mat := f.RenderMaterial()
		if mat == nil {
			return true
		}
		world := f.Transform.WorldMatrix()

	triangles:
		for i := 0; i < m.TrianglesCount(); i++ {
			a, b, c := m.Triangle(i)
			v := [3]mgl32.Vec3{
				mgl32.TransformCoordinate(mgl32.Vec3(a), world),
				mgl32.TransformCoordinate(mgl32.Vec3(b), world),
				mgl32.TransformCoordinate(mgl32.Vec3(c), world),
			}
			normal := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
			if normal.Len() == 0 {
				continue
			}
			normal = normal.Normalize()
			if normal.Dot(v[0].Sub(eye)) >= 0 {
				continue
			}

			t := triangle{}
			for j := range v {
				x, y, depth, ok := proj.Project(v[j])
				if !ok {
					continue triangles
				}
				t.points[j] = [2]float64{float64(x), float64(y)}
				t.depth += depth / 3
			}
			light := opt.Ambient + (1-opt.Ambient)*float32(math.Max(0, float64(normal.Dot(opt.Light))))
			t.color = colorful.Color{
				R: mat.Color.R * float64(light),
				G: mat.Color.G * float64(light),
				B: mat.Color.B * float64(light),
			}
			tris = append(tris, t)
		}
		return true
	})

	sort.SliceStable(tris, func(i, j int) bool { return tris[i].depth > tris[j].depth })
	return tris
}

// Frame is a tree projected to screen space. It keeps no reference to the
// tree, so it can be rasterized after the tree is unlocked or changed.
type Frame struct {
	opt  Options
	tris []triangle
}

// Prepare projects every visible triangle of the tree framed by FitCamera.
func Prepare(root *fractal.Fractal, opt Options) (*Frame, error) {
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, errors.Errorf("invalid snapshot size %dx%d", opt.Width, opt.Height)
	}
	if root.Mesh == nil {
		return nil, errors.New("tree has no mesh")
	}
	cam := FitCamera(root, opt.Yaw, opt.Pitch)
	return &Frame{opt: opt, tris: collect(root, cam, opt)}, nil
}

func (fr *Frame) Triangles() int { return len(fr.tris) }

// Render paints the frame far to near. The caller owns the returned context
// and must Close it.
func (fr *Frame) Render() (*gg.Context, error) {
	opt := fr.opt
	dc := gg.NewContext(opt.Width, opt.Height)
	dc.ClearWithColor(gg.RGB(opt.Background.R, opt.Background.G, opt.Background.B))

	for _, t := range fr.tris {
		dc.SetRGB(t.color.R, t.color.G, t.color.B)
		dc.MoveTo(t.points[0][0], t.points[0][1])
		dc.LineTo(t.points[1][0], t.points[1][1])
		dc.LineTo(t.points[2][0], t.points[2][1])
		dc.ClosePath()
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, errors.Wrapf(err, "Failed to fill triangle")
		}
	}
	return dc, nil
}

func (fr *Frame) EncodePNG(w io.Writer) error {
	dc, err := fr.Render()
	if err != nil {
		return err
	}
	defer dc.Close()
	return errors.Wrapf(dc.EncodePNG(w), "Failed to encode png")
}

// Render draws the tree framed by FitCamera. The caller owns the returned
// context and must Close it.
func Render(root *fractal.Fractal, opt Options) (*gg.Context, error) {
	fr, err := Prepare(root, opt)
	if err != nil {
		return nil, err
	}
	return fr.Render()
}

func EncodePNG(w io.Writer, root *fractal.Fractal, opt Options) error {
	fr, err := Prepare(root, opt)
	if err != nil {
		return err
	}
	return fr.EncodePNG(w)
}
