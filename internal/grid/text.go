package grid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vovakirdan/casim/internal/geom"
)

// sentinelToken is how border-sentinel cells appear in the text format.
const sentinelToken = "*"

// Read parses the text grid format: one row per line, cells separated by
// whitespace. The width is taken from the first row and every following row
// must match it. Blank lines and lines starting with '#' are skipped.
// The returned grid has a border of width bw.
func Read(r io.Reader, bw int) (*Grid, error) {
	var rows [][]int
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		row, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGrid, line, err)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d: expected %d cells, got %d",
				ErrMalformedGrid, line, len(rows[0]), len(row))
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("grid: read: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedGrid)
	}
	return FromRows(rows, bw)
}

// ParseText is Read over a string.
func ParseText(s string, bw int) (*Grid, error) {
	return Read(strings.NewReader(s), bw)
}

func parseRow(text string) ([]int, error) {
	fields := strings.Fields(text)
	row := make([]int, len(fields))
	for i, f := range fields {
		if f == sentinelToken {
			row[i] = BorderFill
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %q is not an integer", i, f)
		}
		row[i] = v
	}
	return row, nil
}

// Write prints the human region of g in the text format.
// Border-sentinel values are printed as '*'.
func Write(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	dim := g.Dim()
	for y := 0; y < dim.H; y++ {
		for x := 0; x < dim.W; x++ {
			if x > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(geom.Pt(x, y))
			if v == BorderFill {
				bw.WriteString(sentinelToken)
			} else {
				bw.WriteString(strconv.Itoa(v))
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String returns the text format of g.
func (g *Grid) String() string {
	var b strings.Builder
	_ = Write(&b, g)
	return b.String()
}
