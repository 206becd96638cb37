package netlist

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadFile parses a netlist file. Files ending in .yaml or .yml are read as
// YAML, everything else as a text netlist.
func LoadFile(path string) (*NetlistData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return Parse(string(data))
}
