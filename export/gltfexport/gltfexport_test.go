package gltfexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/qmuntal/gltf"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/fractal"
	"github.com/mogaika/fractal_browser/material"
	"github.com/mogaika/fractal_browser/mesh"
	"github.com/mogaika/fractal_browser/scene"
)

func grownTree(t *testing.T, maxDepth int) (*scene.Scene, *scene.Tree) {
	s := scene.New()
	cfg := config.Default()
	cfg.MaxDepth = maxDepth
	cfg.Seed = 17
	tree, err := s.Spawn(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Settle(100*time.Millisecond, 10000)
	return s, tree
}

func TestExportTree(t *testing.T) {
	s, tree := grownTree(t, 2)

	doc := NewDocument()
	var rootIndex uint32
	err := s.View(tree.ID, func(tr *scene.Tree) (err error) {
		rootIndex, err = ExportTree(doc, tr.Name, tr.Root)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportBinary(&buf, doc); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatal("output is not a glb")
	}

	decoded := &gltf.Document{}
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Nodes) != fractal.TreeSize(2) {
		t.Errorf("%d nodes; expected %d", len(decoded.Nodes), fractal.TreeSize(2))
	}
	if len(decoded.Materials) != 3 || len(decoded.Meshes) != 3 {
		t.Errorf("%d materials %d meshes; expected 3", len(decoded.Materials), len(decoded.Meshes))
	}
	if len(decoded.Scenes) == 0 || len(decoded.Scenes[0].Nodes) != 1 || decoded.Scenes[0].Nodes[0] != rootIndex {
		t.Fatalf("scene roots %v", decoded.Scenes)
	}

	root := decoded.Nodes[rootIndex]
	if root.Name != tree.Name || len(root.Children) != fractal.ChildCount {
		t.Errorf("root node %q with %d children", root.Name, len(root.Children))
	}
	child := decoded.Nodes[root.Children[0]]
	if child.Scale != [3]float32{0.5, 0.5, 0.5} || child.Translation != [3]float32{0, 0.75, 0} {
		t.Errorf("first child scale %v translation %v", child.Scale, child.Translation)
	}
	if *child.Mesh != 1 || *decoded.Meshes[1].Primitives[0].Material != 1 {
		t.Error("depth 1 node does not use the depth 1 material")
	}
	red := decoded.Materials[0].PBRMetallicRoughness.BaseColorFactor
	if red == nil || red[0] != 1 || red[2] != 0 {
		t.Errorf("depth 0 color %v", red)
	}
}

func TestExportRejectsInactiveRoot(t *testing.T) {
	f := fractal.New(fractal.Settings{MaxDepth: 1, ChildScale: 0.5}, mesh.Cube(), material.Default(), nil)
	if _, err := ExportTree(NewDocument(), "inactive", f); err == nil {
		t.Error("expected error for a root without materials")
	}
}
