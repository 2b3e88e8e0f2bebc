package voxel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/taigrr/bricklayer/pkg/errors"
)

const codecVersion = 1

// MaxDecodeCells bounds the grid size Decode accepts, so a corrupt or
// hostile header cannot demand an oversized or overflowing allocation.
const MaxDecodeCells = 1 << 31

// cellCount multiplies dims, reporting false when any dim is negative or
// the product exceeds limit.
func cellCount(dims [3]int, limit int) (int, bool) {
	n := 1
	for _, d := range dims {
		if d < 0 {
			return 0, false
		}
		if d > 0 && n > limit/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// Header is the JSON line preceding the packed cells of an encoded grid.
type Header struct {
	Version int    `json:"version"`
	Dims    [3]int `json:"dims"`
	Solid   int    `json:"solid"`
}

// Encode writes g as a zstd stream: one JSON header line followed by the
// cells packed eight to a byte, least significant bit first.
func Encode(w io.Writer, g *Grid) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(Header{Version: codecVersion, Dims: g.dims, Solid: g.Count()})
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}

	packed := make([]byte, (len(g.cells)+7)/8)
	for i, v := range g.cells {
		if v {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	if _, err := bw.Write(packed); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a grid written by Encode.
func Decode(r io.Reader) (*Grid, Header, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, h, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, h, errors.Wrap(errors.ErrCodeInvalidFormat, err, "grid header")
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, h, errors.Wrap(errors.ErrCodeInvalidFormat, err, "grid header")
	}
	if h.Version != codecVersion {
		return nil, h, errors.New(errors.ErrCodeInvalidFormat, "grid version %d, want %d", h.Version, codecVersion)
	}
	cells, ok := cellCount(h.Dims, MaxDecodeCells)
	if !ok {
		return nil, h, errors.New(errors.ErrCodeInvalidFormat, "grid dims %v out of range", h.Dims)
	}
	if h.Solid < 0 || h.Solid > cells {
		return nil, h, errors.New(errors.ErrCodeInvalidFormat, "grid claims %d solid of %d cells", h.Solid, cells)
	}

	g := NewGrid(h.Dims[0], h.Dims[1], h.Dims[2])
	packed := make([]byte, (len(g.cells)+7)/8)
	if _, err := io.ReadFull(br, packed); err != nil {
		return nil, h, errors.Wrap(errors.ErrCodeInvalidFormat, err, "grid cells")
	}
	for i := range g.cells {
		g.cells[i] = packed[i/8]&(1<<(i%8)) != 0
	}
	if n := g.Count(); n != h.Solid {
		return nil, h, errors.New(errors.ErrCodeInvalidFormat, "grid has %d solid cells, header says %d", n, h.Solid)
	}
	return g, h, nil
}

// String summarises the grid for logs.
func (g *Grid) String() string {
	return fmt.Sprintf("%dx%dx%d (%d solid)", g.dims[0], g.dims[1], g.dims[2], g.Count())
}
