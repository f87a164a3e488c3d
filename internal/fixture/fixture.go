// Package fixture loads list data sources from disk so they can be inspected
// or browsed without a feed database.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ItemsKey wraps a top-level array in TOML files, which cannot hold a bare
// array at the root.
const ItemsKey = "items"

var ErrUnsupportedFormat = errors.New("unsupported fixture format")

// Load decodes a .json or .toml file into the loose shape a data source
// accepts: a slice, a legacy blob map or anything else the decoder produced.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode is Load for in-memory data. ext selects the format and includes the
// leading dot.
func Decode(data []byte, ext string) (any, error) {
	switch strings.ToLower(ext) {
	case ".json":
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding json fixture: %w", err)
		}
		return v, nil
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding toml fixture: %w", err)
		}
		if items, ok := m[ItemsKey]; ok && len(m) == 1 {
			return items, nil
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
