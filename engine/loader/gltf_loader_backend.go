package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/url"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	pool *common.WorkerGroup
}

// gltfLoaderBackend is a loaderBackend for glTF 2.0 documents, both the JSON (.gltf)
// and binary (.glb) containers. It keeps the authored node hierarchy and transforms.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - pool: the worker pool that decodes textures
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(pool *common.WorkerGroup) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{pool: pool}
}

// gltfBuild holds the state of one document conversion.
type gltfBuild struct {
	dc        *decodeContext
	doc       *gltf.Document
	fsys      fs.FS
	textures  map[int]*material.Texture
	materials map[int]material.Material
	fallback  material.Material
}

func (b *gltfLoaderBackendImpl) Decode(dc *decodeContext, asset *fetchedAsset) (*scene.Node, error) {
	doc := new(gltf.Document)
	var dec *gltf.Decoder
	if asset.fsys != nil {
		dec = gltf.NewDecoderFS(bytes.NewReader(asset.data), asset.fsys)
	} else {
		dec = gltf.NewDecoder(bytes.NewReader(asset.data))
	}
	if err := dec.Decode(doc); err != nil {
		return nil, parseFailure(err, "invalid glTF document %s", asset.name)
	}
	if err := dc.err(); err != nil {
		return nil, err
	}

	build := &gltfBuild{
		dc:        dc,
		doc:       doc,
		fsys:      asset.fsys,
		textures:  make(map[int]*material.Texture),
		materials: make(map[int]material.Material),
	}

	root := scene.NewGroup(dc.name)
	if err := build.run(b.pool, root); err != nil {
		disposeLogged(root)
		build.disposeTextures()
		return nil, err
	}
	build.disposeUnusedTextures()
	return root, nil
}

func (g *gltfBuild) run(pool *common.WorkerGroup, root *scene.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()
	g.decodeTextures(pool)
	if err := g.dc.err(); err != nil {
		return err
	}

	roots, err := g.sceneRoots()
	if err != nil {
		return err
	}
	visiting := make(map[int]bool)
	for _, idx := range roots {
		child, err := g.buildNode(idx, visiting)
		if err != nil {
			return err
		}
		root.Add(child)
		if err := g.dc.err(); err != nil {
			return err
		}
	}
	return nil
}

// sceneRoots returns the root node indices of the default scene. Documents without
// scenes fall back to every node that is nobody's child.
func (g *gltfBuild) sceneRoots() ([]int, error) {
	doc := g.doc
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = int(*doc.Scene)
		}
		if si < 0 || si >= len(doc.Scenes) {
			return nil, parseFailure(nil, "default scene %d out of range", si)
		}
		out := make([]int, 0, len(doc.Scenes[si].Nodes))
		for _, n := range doc.Scenes[si].Nodes {
			out = append(out, int(n))
		}
		return out, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[int(c)] = true
			}
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !isChild[i] {
			out = append(out, i)
		}
	}
	return out, nil
}

func (g *gltfBuild) buildNode(index int, visiting map[int]bool) (*scene.Node, error) {
	if index < 0 || index >= len(g.doc.Nodes) {
		return nil, parseFailure(nil, "node %d out of range", index)
	}
	if visiting[index] {
		return nil, parseFailure(nil, "node %d is its own ancestor", index)
	}
	visiting[index] = true
	defer delete(visiting, index)

	src := g.doc.Nodes[index]
	node := scene.NewGroup(common.Coalesce(src.Name, fmt.Sprintf("node_%d", index)))
	applyTransform(node, src)

	if src.Mesh != nil {
		if err := g.buildMesh(node, int(*src.Mesh)); err != nil {
			disposeLogged(node)
			return nil, err
		}
	}
	for _, c := range src.Children {
		child, err := g.buildNode(int(c), visiting)
		if err != nil {
			disposeLogged(node)
			return nil, err
		}
		node.Add(child)
	}
	return node, nil
}

// applyTransform copies the node's TRS, decomposing an explicit matrix when present.
func applyTransform(node *scene.Node, src *gltf.Node) {
	m := src.MatrixOrDefault()
	var mat mgl32.Mat4
	for i := range mat {
		mat[i] = float32(m[i])
	}
	identity := mat == mgl32.Ident4()
	if !identity {
		node.Position = mat.Col(3).Vec3()
		sx := mat.Col(0).Vec3().Len()
		sy := mat.Col(1).Vec3().Len()
		sz := mat.Col(2).Vec3().Len()
		node.Scale = mgl32.Vec3{sx, sy, sz}
		if sx > 0 && sy > 0 && sz > 0 {
			rot := mgl32.Mat3FromCols(mat.Col(0).Vec3().Mul(1/sx), mat.Col(1).Vec3().Mul(1/sy), mat.Col(2).Vec3().Mul(1/sz))
			node.Rotation = mgl32.Mat4ToQuat(rot.Mat4()).Normalize()
		}
		return
	}

	t := src.TranslationOrDefault()
	r := src.RotationOrDefault()
	s := src.ScaleOrDefault()
	node.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	node.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize()
	node.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

func (g *gltfBuild) buildMesh(parent *scene.Node, meshIndex int) error {
	if meshIndex < 0 || meshIndex >= len(g.doc.Meshes) {
		return parseFailure(nil, "mesh %d out of range", meshIndex)
	}
	mesh := g.doc.Meshes[meshIndex]
	for pi, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			common.Logger().Debug("[Loader] skipping non-triangle primitive", "mesh", mesh.Name, "primitive", pi, "mode", prim.Mode)
			continue
		}
		geo, err := g.buildGeometry(prim)
		if err != nil {
			return parseFailure(err, "mesh %q primitive %d", mesh.Name, pi)
		}
		name := common.Coalesce(mesh.Name, fmt.Sprintf("mesh_%d", meshIndex))
		if len(mesh.Primitives) > 1 {
			name = fmt.Sprintf("%s_%d", name, pi)
		}
		parent.Add(scene.NewMeshNode(name, geo, g.material(prim.Material)))
	}
	return nil
}

func (g *gltfBuild) buildGeometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	acr, err := g.accessor(posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	rawPositions, err := modeler.ReadPosition(g.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions := toVec3s(rawPositions)

	var normals []mgl32.Vec3
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err = g.accessor(idx); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		raw, err := modeler.ReadNormal(g.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		normals = toVec3s(raw)
	}
	var uvs []mgl32.Vec2
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = g.accessor(idx); err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
		raw, err := modeler.ReadTextureCoord(g.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
		uvs = make([]mgl32.Vec2, len(raw))
		for i, v := range raw {
			uvs[i] = mgl32.Vec2(v)
		}
	}
	var indices []uint32
	if prim.Indices != nil {
		if acr, err = g.accessor(*prim.Indices); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		if indices, err = modeler.ReadIndices(g.doc, acr, nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
			}
		}
	}
	return scene.NewGeometry(g.dc.tracker, positions, normals, uvs, indices), nil
}

// accessor returns the accessor at index. Accessors without a buffer view or sparse
// substitution carry no data and are rejected.
func (g *gltfBuild) accessor(index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(g.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	acr := g.doc.Accessors[index]
	if acr.BufferView == nil && acr.Sparse == nil {
		return nil, fmt.Errorf("accessor %d has no data", index)
	}
	return acr, nil
}

func toVec3s(raw [][3]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(raw))
	for i, v := range raw {
		out[i] = mgl32.Vec3(v)
	}
	return out
}

// material returns the shared material for a glTF material index, creating it on first use.
// Primitives without a material share one default material.
func (g *gltfBuild) material(index *uint32) material.Material {
	if index == nil || int(*index) >= len(g.doc.Materials) {
		if g.fallback == nil {
			g.fallback = material.NewMaterial(material.WithName("default"))
		}
		return g.fallback
	}
	mi := int(*index)
	if m, ok := g.materials[mi]; ok {
		return m
	}

	src := g.doc.Materials[mi]
	opts := []material.MaterialBuilderOption{
		material.WithName(common.Coalesce(src.Name, fmt.Sprintf("material_%d", mi))),
	}
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			opts = append(opts, material.WithBaseColor(common.Color{R: float32(f[0]), G: float32(f[1]), B: float32(f[2])}))
		}
		if ti := pbr.BaseColorTexture; ti != nil {
			if tex := g.textures[int(ti.Index)]; tex != nil {
				opts = append(opts, material.WithColorTexture(tex))
			}
		}
	}
	m := material.NewMaterial(opts...)
	g.materials[mi] = m
	return m
}

// decodeTextures decodes every texture referenced as a base color map on the worker pool.
// A texture that fails to decode is logged and left out; its material keeps its color.
func (g *gltfBuild) decodeTextures(pool *common.WorkerGroup) {
	wanted := make(map[int]struct{})
	for _, m := range g.doc.Materials {
		if m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.BaseColorTexture != nil {
			wanted[int(m.PBRMetallicRoughness.BaseColorTexture.Index)] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	taskID := 0
	for texIdx := range wanted {
		src, err := g.textureSource(texIdx)
		if err != nil {
			common.Logger().Warn("[Loader] skipping texture", "texture", texIdx, "error", err)
			continue
		}
		wg.Add(1)
		id := taskID
		taskID++
		ti := texIdx
		pool.Submit(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				if g.dc.err() != nil {
					return nil, nil
				}
				img, err := src.Decode()
				if err != nil {
					common.Logger().Warn("[Loader] failed to decode texture", "texture", ti, "error", err)
					return nil, err
				}
				mu.Lock()
				g.textures[ti] = material.NewTexture(g.dc.tracker, src.Name, img)
				mu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// textureSource locates the encoded bytes of a texture: a GLB buffer view, a data URI,
// or a file relative to the document.
func (g *gltfBuild) textureSource(texIdx int) (*common.TextureSource, error) {
	doc := g.doc
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", texIdx)
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d has no image source", texIdx)
	}
	img := doc.Images[int(*tex.Source)]
	src := &common.TextureSource{
		Name:     common.Coalesce(img.Name, tex.Name, fmt.Sprintf("texture_%d", texIdx)),
		MimeType: img.MimeType,
	}

	switch {
	case img.BufferView != nil:
		bvIdx := int(*img.BufferView)
		if bvIdx >= len(doc.BufferViews) {
			return nil, fmt.Errorf("image buffer view %d out of range", bvIdx)
		}
		bv := doc.BufferViews[bvIdx]
		if int(bv.Buffer) >= len(doc.Buffers) {
			return nil, fmt.Errorf("image buffer %d out of range", bv.Buffer)
		}
		data := doc.Buffers[int(bv.Buffer)].Data
		start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
		if end > len(data) {
			return nil, fmt.Errorf("image buffer view %d exceeds buffer", bvIdx)
		}
		src.Data = data[start:end]
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("invalid data URI: %w", err)
		}
		src.Data = data
	case img.URI != "":
		p, err := url.PathUnescape(img.URI)
		if err != nil {
			p = img.URI
		}
		src.Path = p
		src.FS = g.fsys
	default:
		return nil, fmt.Errorf("image for texture %d has no data", texIdx)
	}
	return src, nil
}

// disposeUnusedTextures releases the textures no built material took ownership of:
// maps of materials that no triangle primitive in the default scene references.
func (g *gltfBuild) disposeUnusedTextures() {
	owned := make(map[*material.Texture]struct{}, len(g.materials))
	for _, m := range g.materials {
		if t := m.RetainedMap(); t != nil {
			owned[t] = struct{}{}
		}
	}
	for idx, t := range g.textures {
		if _, ok := owned[t]; ok {
			continue
		}
		common.Logger().Debug("[Loader] releasing unreferenced texture", "texture", idx)
		_ = t.Dispose()
	}
}

func (g *gltfBuild) disposeTextures() {
	for _, t := range g.textures {
		_ = t.Dispose()
	}
}
