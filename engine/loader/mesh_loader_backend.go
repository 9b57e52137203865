package loader

import (
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// meshData is the triangle soup produced by the OBJ and STL parsers.
type meshData struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
}

// meshLoaderBackendImpl is the implementation of meshLoaderBackend.
type meshLoaderBackendImpl struct{}

// meshLoaderBackend is a loaderBackend for geometry-only formats (.obj, .stl).
// Every asset becomes one mesh node with a default material and no authored color.
type meshLoaderBackend interface {
	loaderBackend
}

var _ meshLoaderBackend = &meshLoaderBackendImpl{}

// newMeshLoaderBackend creates a new triangle mesh loader backend.
//
// Returns:
//   - meshLoaderBackend: the loader backend for OBJ and STL files
func newMeshLoaderBackend() meshLoaderBackend {
	return &meshLoaderBackendImpl{}
}

func (b *meshLoaderBackendImpl) Decode(dc *decodeContext, asset *fetchedAsset) (*scene.Node, error) {
	var (
		md  *meshData
		err error
	)
	switch dc.ext {
	case ".stl":
		md, err = parseSTL(asset.data)
	default:
		md, err = parseOBJ(asset.data)
	}
	if err != nil {
		return nil, parseFailure(err, "invalid %s file %s", dc.ext, asset.name)
	}
	if err := dc.err(); err != nil {
		return nil, err
	}

	geo := scene.NewGeometry(dc.tracker, md.positions, md.normals, md.uvs, md.indices)
	mat := material.NewMaterial(material.WithName(dc.name))
	return scene.NewMeshNode(dc.name, geo, mat), nil
}
