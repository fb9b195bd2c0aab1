package gltfexport

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/fractal_browser/fractal"
	"github.com/mogaika/fractal_browser/mesh"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

type meshAccessors struct {
	positions uint32
	normals   uint32
	indices   uint32
}

func writeMesh(doc *gltf.Document, m *mesh.Mesh) meshAccessors {
	return meshAccessors{
		positions: modeler.WritePosition(doc, m.Positions),
		normals:   modeler.WriteNormal(doc, m.Normals),
		indices:   modeler.WriteIndices(doc, m.Indices),
	}
}

// ExportTree adds the tree under root to doc: the mesh buffers once, one
// material and one mesh per depth, and a node per fractal node carrying its
// local transform. The root node is added to the default scene and its index
// returned.
func ExportTree(doc *gltf.Document, name string, root *fractal.Fractal) (uint32, error) {
	if root.Mesh == nil {
		return 0, errors.Errorf("tree %q has no mesh", name)
	}
	table := root.Materials()
	if len(table) == 0 {
		return 0, errors.Errorf("tree %q is not activated", name)
	}

	acc := writeMesh(doc, root.Mesh)

	meshes := make([]uint32, len(table))
	for depth, m := range table {
		color := new([4]float32)
		*color = m.RGBA()

		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        m.Name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: color,
			},
			Extras: map[string]float32{
				"roughness": m.Roughness,
				"metallic":  m.Metallic,
			},
		})

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: fmt.Sprintf("%s_%s_depth%d", name, root.Mesh.Name, depth),
			Primitives: []*gltf.Primitive{
				&gltf.Primitive{
					Indices: gltf.Index(acc.indices),
					Attributes: map[string]uint32{
						"POSITION": acc.positions,
						"NORMAL":   acc.normals,
					},
					Material: gltf.Index(uint32(len(doc.Materials) - 1)),
				},
			},
		})
		meshes[depth] = uint32(len(doc.Meshes) - 1)
	}

	rootIndex := exportNode(doc, root, meshes)
	doc.Nodes[rootIndex].Name = name
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, rootIndex)
	return rootIndex, nil
}

func exportNode(doc *gltf.Document, f *fractal.Fractal, meshes []uint32) uint32 {
	tr := f.Transform
	q := tr.Rotation
	node := &gltf.Node{
		Name:        tr.Name,
		Mesh:        gltf.Index(meshes[f.Depth()]),
		Translation: tr.Position,
		Rotation:    q.V.Vec4(q.W),
		Scale:       tr.Scale,
	}
	index := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, node)

	for _, c := range f.Children() {
		node.Children = append(node.Children, exportNode(doc, c, meshes))
	}
	return index
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return errors.Wrapf(encoder.Encode(doc), "Failed to encode glb")
}
