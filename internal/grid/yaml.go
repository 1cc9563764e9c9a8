package grid

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/casim/internal/geom"
	"gopkg.in/yaml.v3"
)

// YAMLGrid is the YAML document form of a grid. Cells are given either as
// dense text rows or as a sparse list over a fill value.
type YAMLGrid struct {
	Name     string            `yaml:"name,omitempty"`
	Size     YAMLSize          `yaml:"size"`
	Fill     int               `yaml:"fill,omitempty"`
	Rows     []string          `yaml:"rows,omitempty"`
	Cells    []YAMLCell        `yaml:"cells,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLSize represents grid dimensions.
type YAMLSize struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// YAMLCell represents a single non-fill cell.
type YAMLCell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	V int `yaml:"v"`
}

// ParseYAML decodes a YAML grid document.
func ParseYAML(data []byte, bw int) (*Grid, error) {
	var doc YAMLGrid
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("grid: yaml unmarshal: %w", err)
	}
	return doc.Grid(bw)
}

// Grid converts the document into a grid with border width bw.
func (d YAMLGrid) Grid(bw int) (*Grid, error) {
	if len(d.Rows) > 0 {
		g, err := ParseText(strings.Join(d.Rows, "\n"), bw)
		if err != nil {
			return nil, err
		}
		if d.Size.W != 0 && d.Size.H != 0 && g.Dim() != geom.Dim(d.Size.W, d.Size.H) {
			return nil, fmt.Errorf("%w: rows are %v but size says %dx%d",
				ErrMalformedGrid, g.Dim(), d.Size.W, d.Size.H)
		}
		return g, nil
	}

	if d.Size.W <= 0 || d.Size.H <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %dx%d", ErrMalformedGrid, d.Size.W, d.Size.H)
	}
	g := New(geom.Dim(d.Size.W, d.Size.H), bw, d.Fill)
	for _, c := range d.Cells {
		p := geom.Pt(c.X, c.Y)
		if !g.Contains(p) {
			return nil, fmt.Errorf("%w: cell %v outside %v", ErrMalformedGrid, p, g.Dim())
		}
		g.Set(p, c.V)
	}
	return g, nil
}

// MarshalYAML encodes g as a dense YAML grid document.
func MarshalYAML(g *Grid, name string) ([]byte, error) {
	doc := YAMLGrid{
		Name: name,
		Size: YAMLSize{W: g.Dim().W, H: g.Dim().H},
		Rows: strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n"),
	}
	return yaml.Marshal(doc)
}
