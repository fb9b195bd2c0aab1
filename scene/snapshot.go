package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/fractal"
	"github.com/mogaika/fractal_browser/utils"
)

type TreeInfo struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Nodes    int       `json:"nodes"`
	Expected int       `json:"expected"`
	MaxDepth int       `json:"max_depth"`
	Seed     int64     `json:"seed"`
	Age      float64   `json:"age"`
	Done     bool      `json:"done"`
}

type MaterialInfo struct {
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Roughness float32 `json:"roughness"`
	Metallic  float32 `json:"metallic"`
}

type NodeInfo struct {
	ID     uuid.UUID `json:"id"`
	Parent uuid.UUID `json:"parent"`
	Name   string    `json:"name"`
	Depth  int       `json:"depth"`
	Color  string    `json:"color"`

	Active        bool    `json:"active"`
	State         string  `json:"state"`
	NextChild     int     `json:"next_child"`
	Remaining     float32 `json:"remaining"`
	RotationSpeed float32 `json:"rotation_speed"`
	Twist         float32 `json:"twist"`

	Position      mgl32.Vec3 `json:"position"`
	Rotation      mgl32.Vec3 `json:"rotation"` // euler degrees
	Scale         float32    `json:"scale"`
	WorldPosition mgl32.Vec3 `json:"world_position"`
	WorldRotation mgl32.Vec3 `json:"world_rotation"`
	WorldScale    float32    `json:"world_scale"`

	Children []uuid.UUID `json:"children"`
}

type TreeSnapshot struct {
	TreeInfo
	Config    config.Config  `json:"config"`
	Materials []MaterialInfo `json:"materials"`
	Nodes     []NodeInfo     `json:"nodes"`
}

type Stats struct {
	Tree             uuid.UUID `json:"tree"`
	PerDepth         []int     `json:"per_depth"`
	ExpectedPerDepth []int     `json:"expected_per_depth"`
	Total            int       `json:"total"`
	Expected         int       `json:"expected"`
	Active           int       `json:"active"`
	Waiting          int       `json:"waiting"`
	Done             bool      `json:"done"`
}

func (t *Tree) Info() TreeInfo {
	return TreeInfo{
		ID:       t.ID,
		Name:     t.Name,
		Nodes:    t.Len(),
		Expected: fractal.TreeSize(t.Config.MaxDepth),
		MaxDepth: t.Config.MaxDepth,
		Seed:     t.Seed,
		Age:      t.Age.Seconds(),
		Done:     t.Done(),
	}
}

func (t *Tree) NodeInfo(f *fractal.Fractal) NodeInfo {
	tr := f.Transform
	info := NodeInfo{
		ID:            t.ids[f],
		Name:          tr.Name,
		Depth:         f.Depth(),
		Active:        f.Active(),
		State:         f.State().String(),
		NextChild:     f.NextChild(),
		Remaining:     f.Remaining(),
		RotationSpeed: f.RotationSpeed(),
		Twist:         f.Twist(),
		Position:      tr.Position,
		Rotation:      utils.QuatToEulerDegrees(tr.Rotation),
		Scale:         tr.Scale[0],
		WorldPosition: tr.WorldPosition(),
		WorldRotation: utils.QuatToEulerDegrees(tr.WorldRotation()),
		WorldScale:    tr.WorldScale(),
		Children:      make([]uuid.UUID, 0, len(f.Children())),
	}
	if p := f.Parent(); p != nil {
		info.Parent = t.ids[p]
	}
	if m := f.RenderMaterial(); m != nil {
		info.Color = m.Hex()
	}
	for _, c := range f.Children() {
		info.Children = append(info.Children, t.ids[c])
	}
	return info
}

func (t *Tree) Snapshot() *TreeSnapshot {
	snap := &TreeSnapshot{
		TreeInfo:  t.Info(),
		Config:    t.Config,
		Materials: make([]MaterialInfo, 0, len(t.Root.Materials())),
		Nodes:     make([]NodeInfo, 0, t.Len()),
	}
	for _, m := range t.Root.Materials() {
		snap.Materials = append(snap.Materials, MaterialInfo{
			Name:      m.Name,
			Color:     m.Hex(),
			Roughness: m.Roughness,
			Metallic:  m.Metallic,
		})
	}
	for _, f := range t.order {
		snap.Nodes = append(snap.Nodes, t.NodeInfo(f))
	}
	return snap
}

func (t *Tree) Stats() *Stats {
	st := &Stats{
		Tree:             t.ID,
		PerDepth:         make([]int, t.Config.MaxDepth+1),
		ExpectedPerDepth: make([]int, t.Config.MaxDepth+1),
		Total:            t.Len(),
		Expected:         fractal.TreeSize(t.Config.MaxDepth),
		Done:             true,
	}
	level := 1
	for d := range st.ExpectedPerDepth {
		st.ExpectedPerDepth[d] = level
		level *= fractal.ChildCount
	}
	for _, f := range t.order {
		st.PerDepth[f.Depth()]++
		if f.Active() {
			st.Active++
		}
		if f.State() == fractal.SpawnWaiting {
			st.Waiting++
			st.Done = false
		}
	}
	return st
}

func (s *Scene) Trees() []TreeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]TreeInfo, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.trees[id].Info())
	}
	return result
}

func (s *Scene) Snapshot(treeID uuid.UUID) (snap *TreeSnapshot, err error) {
	err = s.View(treeID, func(t *Tree) error {
		snap = t.Snapshot()
		return nil
	})
	return snap, err
}

func (s *Scene) Stats(treeID uuid.UUID) (st *Stats, err error) {
	err = s.View(treeID, func(t *Tree) error {
		st = t.Stats()
		return nil
	})
	return st, err
}

func (s *Scene) NodeSnapshot(treeID, nodeID uuid.UUID) (info NodeInfo, err error) {
	err = s.View(treeID, func(t *Tree) error {
		f, err := t.Node(nodeID)
		if err != nil {
			return err
		}
		info = t.NodeInfo(f)
		return nil
	})
	return info, err
}
