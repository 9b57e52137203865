package loader

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJ_FanTriangulation(t *testing.T) {
	md, err := parseOBJ([]byte(quadOBJ))
	require.NoError(t, err)

	assert.Len(t, md.positions, 4, "shared corners are deduplicated")
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, md.indices)
	require.Len(t, md.normals, 4)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, md.normals[0])
}

func TestParseOBJ_FlipsTextureV(t *testing.T) {
	md, err := parseOBJ([]byte(quadOBJ))
	require.NoError(t, err)

	require.Len(t, md.uvs, 4)
	assert.Equal(t, mgl32.Vec2{0, 1}, md.uvs[0])
	assert.Equal(t, mgl32.Vec2{1, 0}, md.uvs[2])
}

func TestParseOBJ_NegativeIndicesAndPlainCorners(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	md, err := parseOBJ([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, md.positions)
	assert.Nil(t, md.uvs, "no texcoords were referenced")
	assert.Nil(t, md.normals, "no normals were referenced")
}

func TestParseOBJ_IgnoresUnknownStatements(t *testing.T) {
	src := `mtllib box.mtl
o box
g side
usemtl red
s off
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3 # trailing comment
`
	md, err := parseOBJ([]byte(src))
	require.NoError(t, err)
	assert.Len(t, md.indices, 3)
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\nv 1 0 0\nv 0 1 0\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"bad number", "v 0 x 0\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOBJ([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

const triangleSTL = `solid tri
  facet normal 0 0 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`

func TestParseSTL_ASCII(t *testing.T) {
	md, err := parseSTL([]byte(triangleSTL))
	require.NoError(t, err)

	assert.Len(t, md.positions, 3)
	assert.Equal(t, []uint32{0, 1, 2}, md.indices)
	for _, n := range md.normals {
		assert.InDelta(t, 1, n.Z(), 1e-6, "zero facet normal is recomputed from the winding")
	}
}

func TestParseSTL_ASCIIErrors(t *testing.T) {
	_, err := parseSTL([]byte("facet normal 0 0 1\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendfacet\n"))
	assert.Error(t, err, "missing solid header")

	_, err = parseSTL([]byte("solid empty\nendsolid empty\n"))
	assert.Error(t, err, "no facets")

	_, err = parseSTL([]byte("solid bad\nfacet normal 0 0 1\nvertex 0 0 0\nendfacet\n"))
	assert.Error(t, err, "facet with one vertex")
}

// binarySTL encodes facets as a binary STL whose header starts with "solid", which
// must not confuse format detection.
func binarySTL(facets ...[4]mgl32.Vec3) []byte {
	var buf bytes.Buffer
	header := make([]byte, stlHeaderSize)
	copy(header, "solid binary")
	buf.Write(header)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(facets)))
	for _, f := range facets {
		for _, v := range f {
			for _, c := range v {
				_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(c))
			}
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestParseSTL_Binary(t *testing.T) {
	data := binarySTL(
		[4]mgl32.Vec3{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[4]mgl32.Vec3{{0, 0, 1}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	)
	require.True(t, isBinarySTL(data))

	md, err := parseSTL(data)
	require.NoError(t, err)

	assert.Len(t, md.positions, 6, "facets do not share vertices")
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, md.indices)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, md.positions[4])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, md.normals[5])
}

func TestParseSTL_BinaryWithoutFacets(t *testing.T) {
	_, err := parseSTL(binarySTL())
	assert.Error(t, err)
}
