package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// objCorner is one face corner: 0-based position, texcoord and normal indices, -1 when absent.
type objCorner struct {
	v, vt, vn int
}

// parseOBJ reads the geometry statements of a Wavefront OBJ file (v, vt, vn, f).
// Polygons are fan-triangulated, negative indices are resolved relative to the current
// element count, and texture v is flipped so v = 0 addresses the top row. Grouping and
// material statements are ignored.
func parseOBJ(data []byte) (*meshData, error) {
	var (
		positions []mgl32.Vec3
		texcoords []mgl32.Vec2
		normals   []mgl32.Vec3
		out       meshData
		hasUV     bool
		hasNormal bool
	)
	corners := make(map[objCorner]uint32)
	var faceCorners []objCorner

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{f[0], f[1], f[2]})
		case "vt":
			f, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			var v float32
			if len(f) > 1 {
				v = f[1]
			}
			texcoords = append(texcoords, mgl32.Vec2{f[0], 1 - v})
		case "vn":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{f[0], f[1], f[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			faceCorners = faceCorners[:0]
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				faceCorners = append(faceCorners, c)
			}
			for i := 1; i+1 < len(faceCorners); i++ {
				for _, c := range [3]objCorner{faceCorners[0], faceCorners[i], faceCorners[i+1]} {
					idx, ok := corners[c]
					if !ok {
						idx = uint32(len(out.positions))
						corners[c] = idx
						out.positions = append(out.positions, positions[c.v])
						var uv mgl32.Vec2
						if c.vt >= 0 {
							uv = texcoords[c.vt]
							hasUV = true
						}
						out.uvs = append(out.uvs, uv)
						var n mgl32.Vec3
						if c.vn >= 0 {
							n = normals[c.vn]
							hasNormal = true
						}
						out.normals = append(out.normals, n)
					}
					out.indices = append(out.indices, idx)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out.indices) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	if !hasUV {
		out.uvs = nil
	}
	if !hasNormal {
		out.normals = nil
	}
	return &out, nil
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d numbers, got %d", want, len(fields))
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn".
func parseCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	parts := strings.Split(tok, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], nv); err != nil {
		return c, fmt.Errorf("vertex %q: %w", tok, err)
	}
	if c.v < 0 {
		return c, fmt.Errorf("vertex %q: missing position index", tok)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], nvt); err != nil {
			return c, fmt.Errorf("texcoord %q: %w", tok, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], nvn); err != nil {
			return c, fmt.Errorf("normal %q: %w", tok, err)
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to a 0-based one.
func resolveIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += n
	default:
		return 0, fmt.Errorf("index 0 is invalid")
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %s out of range for %d elements", s, n)
	}
	return i, nil
}
