package wstool

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidManifest = errors.New("wstool: invalid rosinstall manifest")

// ManifestEntry is one source declared in a rosinstall file.
type ManifestEntry struct {
	// Kind is the source type key, e.g. git, hg, svn, bzr or other.
	Kind      string
	LocalName string
	URI       string
	Version   string
}

type manifestSource struct {
	LocalName string `yaml:"local-name"`
	URI       string `yaml:"uri"`
	Version   string `yaml:"version"`
}

// ReadManifest decodes the rosinstall file at path.
func ReadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest (%s): %w", path, err)
	}
	entries, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseManifest decodes rosinstall YAML: a list of single-key maps from
// source kind to source attributes.
func ParseManifest(data []byte) ([]ManifestEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw []map[string]manifestSource
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	out := make([]ManifestEntry, 0, len(raw))
	for i, item := range raw {
		if len(item) != 1 {
			return nil, fmt.Errorf("%w: entry %d must have exactly one source kind", ErrInvalidManifest, i)
		}
		for kind, src := range item {
			if strings.TrimSpace(src.LocalName) == "" {
				return nil, fmt.Errorf("%w: entry %d (%s) missing local-name", ErrInvalidManifest, i, kind)
			}
			out = append(out, ManifestEntry{
				Kind:      kind,
				LocalName: src.LocalName,
				URI:       src.URI,
				Version:   src.Version,
			})
		}
	}
	return out, nil
}
