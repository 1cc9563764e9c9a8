package table

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
)

// Magic starts every table file.
const Magic = "ca_table"

// Version is the only table format version understood.
const Version = 2

// maxOffsets bounds the neighborhood counts accepted from a header.
const maxOffsets = 64

// Read decodes a table rule:
//
//	"ca_table" | version u32 | n_in count u32 | n_in (x,y int8)... |
//	n_out count u32 | n_out (x,y int8)... | num_states u32 | entries u64...
//
// All integers are little endian.
func Read(r io.Reader) (*Rule, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, truncated(err)
	}
	if string(magic) != Magic {
		return nil, ErrBadHeader
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, truncated(err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, version)
	}

	nIn, err := readNeighborhood(r)
	if err != nil {
		return nil, err
	}
	nOut, err := readNeighborhood(r)
	if err != nil {
		return nil, err
	}

	var numStates uint32
	if err := binary.Read(r, binary.LittleEndian, &numStates); err != nil {
		return nil, truncated(err)
	}
	if numStates == 0 || numStates > math.MaxInt32 {
		return nil, fmt.Errorf("%w: num_states %d", ErrStateRange, numStates)
	}
	b := FieldBits(int(numStates))
	if b*uint(nIn.Len()) > MaxIndexBits {
		return nil, fmt.Errorf("%w: %d inputs of %d bits", ErrTableTooLarge, nIn.Len(), b)
	}

	entries := make([]uint64, 1<<(b*uint(nIn.Len())))
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return nil, truncated(err)
	}
	return New(nIn, nOut, int(numStates), entries)
}

func readNeighborhood(r io.Reader) (ca.Neighborhood, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return ca.Neighborhood{}, truncated(err)
	}
	if count > maxOffsets {
		return ca.Neighborhood{}, fmt.Errorf("%w: %d offsets", ErrBadHeader, count)
	}
	raw := make([]int8, 2*count)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return ca.Neighborhood{}, truncated(err)
	}
	offsets := make([]geom.Point, count)
	for i := range offsets {
		offsets[i] = geom.Pt(int(raw[2*i]), int(raw[2*i+1]))
	}
	n := ca.NewNeighborhood(offsets...)
	if int(count) != n.Len() && count != 0 {
		return ca.Neighborhood{}, fmt.Errorf("%w: duplicate offsets", ErrBadHeader)
	}
	return n, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return fmt.Errorf("table: read: %w", err)
}

// Write encodes t in the format described at Read.
func Write(w io.Writer, t *Rule) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return err
	}
	fields := []any{uint32(Version)}
	for _, n := range []ca.Neighborhood{t.nIn, t.nOut} {
		raw, err := encodeOffsets(n)
		if err != nil {
			return err
		}
		fields = append(fields, uint32(n.Len()), raw)
	}
	fields = append(fields, uint32(t.numStates), t.entries)
	for _, f := range fields {
		if err := binary.Write(bw, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("table: write: %w", err)
		}
	}
	return bw.Flush()
}

func encodeOffsets(n ca.Neighborhood) ([]int8, error) {
	raw := make([]int8, 0, 2*n.Len())
	for _, d := range n.Offsets() {
		if d.X < math.MinInt8 || d.X > math.MaxInt8 || d.Y < math.MinInt8 || d.Y > math.MaxInt8 {
			return nil, fmt.Errorf("table: offset %v does not fit int8", d)
		}
		raw = append(raw, int8(d.X), int8(d.Y))
	}
	return raw, nil
}

// Load reads a table rule from a file.
func Load(path string) (*Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: failed to open %s: %w", path, err)
	}
	defer f.Close()
	t, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	return t, nil
}

// Save writes a table rule to a file.
func Save(path string, t *Rule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: failed to create %s: %w", path, err)
	}
	if err := Write(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
