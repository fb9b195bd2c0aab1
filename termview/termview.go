// Package termview draws a growing fractal tree in a terminal, one filled
// ellipse of cells per node.
package termview

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/export/snapshot"
	"github.com/mogaika/fractal_browser/r3d"
	"github.com/mogaika/fractal_browser/scene"
)

const (
	cellRune  = '█'
	orbitStep = 10 // degrees per key press
)

var hudStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)

type Viewer struct {
	Screen    tcell.Screen
	Scene     *scene.Scene
	Scheduler *scene.Scheduler
	Config    config.Config

	Tree       uuid.UUID
	Yaw, Pitch float32
}

func New(screen tcell.Screen, sc *scene.Scene, scheduler *scene.Scheduler, cfg config.Config) *Viewer {
	v := &Viewer{
		Screen:    screen,
		Scene:     sc,
		Scheduler: scheduler,
		Config:    cfg,
		Yaw:       35,
		Pitch:     20,
	}
	if id, ok := sc.First(); ok {
		v.Tree = id
	}
	return v
}

// Respawn replaces the viewed tree with a new one. A fixed seed is bumped so
// every respawn grows a different tree.
func (v *Viewer) Respawn() error {
	if v.Tree != uuid.Nil {
		if _, err := v.Scene.RemoveTree(v.Tree); err != nil && errors.Cause(err) != scene.ErrNotFound {
			return err
		}
	}
	if v.Config.Seed != 0 {
		v.Config.Seed++
	}
	tree, err := v.Scene.Spawn(v.Config)
	if err != nil {
		return err
	}
	v.Tree = tree.ID
	return nil
}

type blob struct {
	x, y   float32
	rx, ry float32
	depth  float32
	style  tcell.Style
}

func (v *Viewer) collect(t *scene.Tree, width, height int) []blob {
	cam := snapshot.FitCamera(t.Root, v.Yaw, v.Pitch)
	eye := cam.Position()
	// cells are about twice as tall as they are wide
	proj := r3d.NewProjector(cam, eye, width, height, float32(width)/float32(height*2))

	meshRadius := float32(0.5)
	if t.Root.Mesh != nil {
		meshRadius = t.Root.Mesh.Radius() * 0.7
	}

	blobs := make([]blob, 0, t.Len())
	for _, f := range t.Nodes() {
		m := f.RenderMaterial()
		if m == nil {
			continue
		}
		x, y, depth, ok := proj.Project(f.Transform.WorldPosition())
		if !ok {
			continue
		}
		r := f.Transform.WorldScale() * meshRadius * proj.PixelsPerUnit(cam, depth)
		red, green, blue := m.Color.Clamped().RGB255()
		blobs = append(blobs, blob{
			x: x, y: y,
			rx: r * 2, ry: r,
			depth: depth,
			style: tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(red), int32(green), int32(blue))),
		})
	}
	sort.SliceStable(blobs, func(i, j int) bool { return blobs[i].depth > blobs[j].depth })
	return blobs
}

func (v *Viewer) fill(b blob, width, height int) {
	x0 := int(math.Floor(float64(b.x - b.rx)))
	x1 := int(math.Ceil(float64(b.x + b.rx)))
	y0 := int(math.Floor(float64(b.y - b.ry)))
	y1 := int(math.Ceil(float64(b.y + b.ry)))
	drawn := false
	if b.rx > 0 && b.ry > 0 {
		for cy := max(y0, 0); cy < y1 && cy < height; cy++ {
			for cx := max(x0, 0); cx < x1 && cx < width; cx++ {
				dx := (float32(cx) + 0.5 - b.x) / b.rx
				dy := (float32(cy) + 0.5 - b.y) / b.ry
				if dx*dx+dy*dy <= 1 {
					v.Screen.SetContent(cx, cy, cellRune, nil, b.style)
					drawn = true
				}
			}
		}
	}
	// nodes smaller than a cell still show up
	if !drawn && b.x >= 0 && b.y >= 0 && int(b.x) < width && int(b.y) < height {
		v.Screen.SetContent(int(b.x), int(b.y), cellRune, nil, b.style)
	}
}

func (v *Viewer) drawText(x, y int, s string) {
	width, _ := v.Screen.Size()
	for _, r := range s {
		if x >= width {
			return
		}
		v.Screen.SetContent(x, y, r, nil, hudStyle)
		x++
	}
}

// Draw renders the current tree with a status line on the last row.
func (v *Viewer) Draw() {
	v.Screen.Clear()
	width, height := v.Screen.Size()
	if width <= 0 || height <= 1 {
		v.Screen.Show()
		return
	}
	rows := height - 1

	var hud string
	err := v.Scene.View(v.Tree, func(t *scene.Tree) error {
		for _, b := range v.collect(t, width, rows) {
			v.fill(b, width, rows)
		}
		info := t.Info()
		hud = fmt.Sprintf(" %s  %d/%d nodes", info.Name, info.Nodes, info.Expected)
		return nil
	})
	if err != nil {
		hud = " no tree"
	}
	if v.Scheduler != nil && v.Scheduler.IsPaused() {
		hud += "  [paused]"
	}
	hud += "  q quit  space pause  r respawn  h/l orbit"
	v.drawText(0, rows, hud)
	v.Screen.Show()
}

// HandleEvent applies one input event and reports whether the viewer should
// keep running.
func (v *Viewer) HandleEvent(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case nil:
		return false, nil
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false, nil
		case tcell.KeyLeft:
			v.Yaw -= orbitStep
		case tcell.KeyRight:
			v.Yaw += orbitStep
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false, nil
			case ' ':
				if v.Scheduler != nil {
					if v.Scheduler.IsPaused() {
						v.Scheduler.Resume()
					} else {
						v.Scheduler.Pause()
					}
				}
			case 'r':
				if err := v.Respawn(); err != nil {
					return true, err
				}
			case 'h':
				v.Yaw -= orbitStep
			case 'l':
				v.Yaw += orbitStep
			}
		}
	case *tcell.EventResize:
		v.Screen.Sync()
	}
	return true, nil
}

// Run redraws every frame until the user quits. The screen is finalized on
// return.
func (v *Viewer) Run(frame time.Duration) error {
	defer v.Screen.Fini()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go v.Screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	v.Draw()
	for {
		select {
		case ev := <-events:
			keep, err := v.HandleEvent(ev)
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
			v.Draw()
		case <-ticker.C:
			v.Draw()
		}
	}
}
