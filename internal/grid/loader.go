package grid

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StdIO is the path meaning stdin for loading and stdout for saving.
const StdIO = "-"

// LoadFile reads a grid from path, choosing the format by extension:
// .yaml and .yml are YAML documents, everything else is the text format.
func LoadFile(path string, bw int) (*Grid, error) {
	if path == StdIO || path == "" {
		return Read(os.Stdin, bw)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grid: failed to read %s: %w", path, err)
	}
	g, err := parseByExtension(path, data, bw)
	if err != nil {
		return nil, fmt.Errorf("grid: %s: %w", path, err)
	}
	return g, nil
}

func parseByExtension(path string, data []byte, bw int) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, bw)
	default:
		return ParseText(string(data), bw)
	}
}

// SaveFile writes g to path using the format implied by its extension.
func SaveFile(path string, g *Grid) error {
	if path == StdIO || path == "" {
		return Write(os.Stdout, g)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("grid: failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := Encode(f, path, g); err != nil {
		return fmt.Errorf("grid: failed to write %s: %w", path, err)
	}
	return nil
}

// Encode writes g to w in the format implied by the extension of name.
func Encode(w io.Writer, name string, g *Grid) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		data, err := MarshalYAML(g, strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return Write(w, g)
	}
}

// FormatExtensions returns the extensions recognized as YAML grids.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
