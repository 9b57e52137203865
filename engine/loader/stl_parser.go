package loader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// parseSTL reads binary or ASCII STL. Each facet contributes three unshared vertices
// carrying the facet normal; a zero facet normal is recomputed from the winding.
func parseSTL(data []byte) (*meshData, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	return parseASCIISTL(data)
}

// isBinarySTL checks the declared triangle count against the byte length, since binary
// files may also start with "solid".
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return int64(len(data)) == int64(stlHeaderSize+4)+int64(n)*stlTriangleSize
}

func parseBinarySTL(data []byte) (*meshData, error) {
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	if n == 0 {
		return nil, fmt.Errorf("no facets")
	}
	md := &meshData{
		positions: make([]mgl32.Vec3, 0, n*3),
		normals:   make([]mgl32.Vec3, 0, n*3),
		indices:   make([]uint32, 0, n*3),
	}
	readVec := func(p []byte) mgl32.Vec3 {
		return mgl32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(p[0:])),
			math.Float32frombits(binary.LittleEndian.Uint32(p[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(p[8:])),
		}
	}
	for i := 0; i < n; i++ {
		p := data[stlHeaderSize+4+i*stlTriangleSize:]
		md.addFacet(readVec(p), readVec(p[12:]), readVec(p[24:]), readVec(p[36:]))
	}
	return md, nil
}

func parseASCIISTL(data []byte) (*meshData, error) {
	md := &meshData{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		normal mgl32.Vec3
		verts  []mgl32.Vec3
		line   int
		solid  bool
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "solid":
			solid = true
		case "facet":
			if len(fields) < 5 || strings.ToLower(fields[1]) != "normal" {
				return nil, fmt.Errorf("line %d: malformed facet", line)
			}
			v, err := parseVec3(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normal = v
			verts = verts[:0]
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: malformed vertex", line)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			verts = append(verts, v)
		case "endfacet":
			if len(verts) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", line, len(verts))
			}
			md.addFacet(normal, verts[0], verts[1], verts[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !solid {
		return nil, fmt.Errorf("missing solid header")
	}
	if len(md.indices) == 0 {
		return nil, fmt.Errorf("no facets")
	}
	return md, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i := range 3 {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, fmt.Errorf("invalid number %q", fields[i])
		}
		v[i] = float32(f)
	}
	return v, nil
}

func (md *meshData) addFacet(normal, a, b, c mgl32.Vec3) {
	if normal.Len() == 0 {
		normal = b.Sub(a).Cross(c.Sub(a))
		if l := normal.Len(); l > 0 {
			normal = normal.Mul(1 / l)
		}
	}
	base := uint32(len(md.positions))
	md.positions = append(md.positions, a, b, c)
	md.normals = append(md.normals, normal, normal, normal)
	md.indices = append(md.indices, base, base+1, base+2)
}
