package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 4*3*4 + 2 // normal, three vertices, attribute byte count
)

// LoadSTL reads a binary or ASCII STL file.
func LoadSTL(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat stl: %w", err)
	}
	return ReadSTL(f, info.Size(), filepath.Base(path))
}

// ReadSTL decodes an STL stream of the given size. Identical vertex
// positions are merged so the result is an indexed mesh.
func ReadSTL(r io.Reader, size int64, name string) (*Mesh, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(stlHeaderSize + 4)
	if err != nil && len(head) < 5 {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "stl %s: short file", name)
	}

	// Binary files may also start with "solid", so trust the declared
	// triangle count when it matches the file size exactly.
	if len(head) == stlHeaderSize+4 {
		n := int64(binary.LittleEndian.Uint32(head[stlHeaderSize:]))
		if size == stlHeaderSize+4+n*stlRecordSize {
			return readBinarySTL(br, name)
		}
	}
	if bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte("solid")) {
		return readASCIISTL(br, name)
	}
	return readBinarySTL(br, name)
}

type vertexSet struct {
	mesh  *Mesh
	index map[math3d.Vec3]int
}

func (s *vertexSet) add(p math3d.Vec3) int {
	if i, ok := s.index[p]; ok {
		return i
	}
	i := s.mesh.AddVertex(p)
	s.index[p] = i
	return i
}

func readBinarySTL(r io.Reader, name string) (*Mesh, error) {
	var header struct {
		H    [stlHeaderSize]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "stl %s: header", name)
	}

	mesh := NewMesh(name)
	set := vertexSet{mesh: mesh, index: make(map[math3d.Vec3]int)}
	buf := make([]byte, stlRecordSize)
	for i := range int(header.NTri) {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "stl %s: triangle %d", name, i)
		}
		var tri [3]int
		for v := range tri {
			const start = 3 * 4 // skip normal
			var c [3]float64
			for k := range c {
				c[k] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[start+12*v+4*k:])))
			}
			tri[v] = set.add(math3d.FromArray(c))
		}
		mesh.AddFace(tri[0], tri[1], tri[2])
	}
	mesh.Refresh()
	return mesh, nil
}

func readASCIISTL(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	set := vertexSet{mesh: mesh, index: make(map[math3d.Vec3]int)}

	sc := bufio.NewScanner(r)
	var (
		line    int
		corners []int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "vertex":
			if len(fields) != 4 {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "stl %s:%d: vertex needs 3 coordinates", name, line)
			}
			var c [3]float64
			for k := range c {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "stl %s:%d", name, line)
				}
				c[k] = v
			}
			corners = append(corners, set.add(math3d.FromArray(c)))
		case "endloop":
			if len(corners) != 3 {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "stl %s:%d: facet has %d vertices", name, line, len(corners))
			}
			mesh.AddFace(corners[0], corners[1], corners[2])
			corners = corners[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "stl %s", name)
	}
	mesh.Refresh()
	return mesh, nil
}

// WriteSTL encodes the mesh as binary STL with per-facet normals.
func WriteSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	var header [stlHeaderSize]byte
	copy(header[:], "bricklayer "+m.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return err
	}

	buf := make([]byte, stlRecordSize)
	put := func(off int, v math3d.Vec3) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v.X)))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Y)))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(v.Z)))
	}
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		put(0, b.Sub(a).Cross(c.Sub(a)).Normalize())
		put(12, a)
		put(24, b)
		put(36, c)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load dispatches on the file extension: .stl, .glb or .gltf.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return LoadSTL(path)
	case ".glb", ".gltf":
		return LoadGLB(path)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported mesh format %q", filepath.Ext(path))
	}
}
