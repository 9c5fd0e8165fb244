package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wricardo/maze-runner/game/engine"
)

const (
	headerSize = 24
	tagSize    = 4
	blockCells = 16 * 1024
)

// Encode writes g as width, height and cell count (u64 little-endian)
// followed by one u32 little-endian tag per cell. Any grid engine.NewGrid
// can build is accepted by Decode.
func Encode(w io.Writer, g *engine.Grid) error {
	bw := bufio.NewWriter(w)

	cells := g.Cells()
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(g.Width()))
	binary.LittleEndian.PutUint64(header[8:16], uint64(g.Height()))
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(cells)))
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("%w: write header: %w", ErrIO, err)
	}

	var tag [tagSize]byte
	for _, c := range cells {
		binary.LittleEndian.PutUint32(tag[:], uint32(c))
		if _, err := bw.Write(tag[:]); err != nil {
			return fmt.Errorf("%w: write cells: %w", ErrIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %w", ErrIO, err)
	}
	return nil
}

// Marshal returns the encoded form of g.
func Marshal(g *engine.Grid) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + tagSize*g.Width()*g.Height())
	if err := Encode(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one grid from r. Data after the last cell is left unread.
// On any failure no grid is returned.
func Decode(r io.Reader) (*engine.Grid, error) {
	br := bufio.NewReader(r)

	var header [headerSize]byte
	if n, err := io.ReadFull(br, header[:]); err != nil {
		return nil, readFailure(err, int64(n), "header")
	}
	width := binary.LittleEndian.Uint64(header[0:8])
	height := binary.LittleEndian.Uint64(header[8:16])
	count := binary.LittleEndian.Uint64(header[16:24])

	if width == 0 || height == 0 {
		return nil, corrupt(ErrDimensionMismatch, 0, "%dx%d is not a non-empty grid", width, height)
	}
	if width > engine.MaxGridCells || height > engine.MaxGridCells || width > engine.MaxGridCells/height {
		return nil, corrupt(ErrDimensionTooLarge, 0, "%dx%d exceeds %d cells", width, height, engine.MaxGridCells)
	}
	if width%2 == 0 || height%2 == 0 {
		return nil, corrupt(ErrDimensionMismatch, 0, "%dx%d is not an odd grid", width, height)
	}
	if count != width*height {
		return nil, corrupt(ErrDimensionMismatch, 16, "%dx%d needs %d cells, header says %d", width, height, width*height, count)
	}

	// Cells are read a block at a time so a lying header cannot force a
	// large allocation before the data is actually there.
	cells := make([]engine.Cell, 0, min(count, blockCells))
	buf := make([]byte, blockCells*tagSize)
	for read := uint64(0); read < count; {
		n := min(count-read, blockCells)
		block := buf[:n*tagSize]
		offset := int64(headerSize + read*tagSize)
		if got, err := io.ReadFull(br, block); err != nil {
			return nil, readFailure(err, offset+int64(got), fmt.Sprintf("cells %d-%d of %d", read, read+n-1, count))
		}
		for i := uint64(0); i < n; i++ {
			v := binary.LittleEndian.Uint32(block[i*tagSize:])
			if v > math.MaxUint8 || !engine.Cell(v).Valid() {
				return nil, corrupt(ErrUnknownCellTag, offset+int64(i*tagSize), "tag %d for cell %d", v, read+i)
			}
			cells = append(cells, engine.Cell(v))
		}
		read += n
	}

	g, err := engine.NewGridFromCells(int(width), int(height), cells)
	if err != nil {
		return nil, corrupt(ErrDimensionMismatch, 0, "%v", err)
	}
	return g, nil
}

// Unmarshal decodes data, which must contain exactly one grid.
func Unmarshal(data []byte) (*engine.Grid, error) {
	r := bytes.NewReader(data)
	g, err := Decode(r)
	if err != nil {
		return nil, err
	}
	consumed := headerSize + tagSize*g.Width()*g.Height()
	if extra := len(data) - consumed; extra > 0 {
		return nil, corrupt(ErrTrailingData, int64(consumed), "%d extra bytes", extra)
	}
	return g, nil
}

func readFailure(err error, offset int64, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return corrupt(ErrTruncated, offset, "reading %s", what)
	}
	return fmt.Errorf("%w: reading %s: %w", ErrIO, what, err)
}
