package pip

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/danmuck/partkit/internal/tools"
	"github.com/rs/zerolog/log"
)

const unsupportedOptionMarker = "no such option"

// Package is one installed distribution.
type Package struct {
	Name    string
	Version string
}

// Listing maps installed package names to versions.
type Listing map[string]string

// Packages returns the listing sorted by name.
func (l Listing) Packages() []Package {
	out := make([]Package, 0, len(l))
	for name, version := range l {
		out = append(out, Package{Name: name, Version: version})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

var legacyLine = regexp.MustCompile(`^(\S+)\s+\(([^,()\s]+)(?:,[^)]*)?\)$`)

// List returns the packages pip sees in the part, only those in the user
// site when user is set. pip releases without --format fall back to the
// legacy text listing.
func (i *Installer) List(user bool) (Listing, error) {
	args := []string{"list"}
	if user {
		args = append(args, "--user")
	}

	jsonArgs := append(append([]string(nil), args...), "--format=json")
	cmd, res := i.run(jsonArgs, "", i.builder)
	switch tools.Classify(res, tools.Rule{Marker: unsupportedOptionMarker, Outcome: tools.OutcomeUnsupported}) {
	case tools.OutcomeOK:
		return parseJSONListing(res.Stdout)
	case tools.OutcomeUnsupported:
		log.Debug().Msg("pip list has no --format, using legacy output")
		out, err := i.runChecked(args, "", i.builder)
		if err != nil {
			return nil, err
		}
		return parseLegacyListing(out)
	default:
		return nil, tools.NewCommandError(cmd, res)
	}
}

func parseJSONListing(data []byte) (Listing, error) {
	var raw any
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, &ListInvalidJSONError{Output: string(data)}
	}

	listing := Listing{}
	switch v := raw.(type) {
	case map[string]any:
		// Some pip releases print {} when nothing is installed.
		if len(v) == 0 {
			return listing, nil
		}
		return nil, &ListInvalidJSONError{Output: string(data)}
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, &ListInvalidJSONError{Output: string(data)}
			}
			name, ok := obj["name"].(string)
			if !ok {
				return nil, &ListMissingFieldError{Field: "name"}
			}
			version, ok := obj["version"].(string)
			if !ok {
				return nil, &ListMissingFieldError{Field: "version"}
			}
			listing[name] = version
		}
		return listing, nil
	default:
		return nil, &ListInvalidJSONError{Output: string(data)}
	}
}

func parseLegacyListing(output string) (Listing, error) {
	listing := Listing{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := legacyLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &ListInvalidLegacyFormatError{Output: output}
		}
		listing[m[1]] = m[2]
	}
	return listing, nil
}
