package toolenv

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	PathVar        = "PATH"
	LibraryPathVar = "LD_LIBRARY_PATH"
	CPPFlagsVar    = "CPPFLAGS"
	GitExecPathVar = "GIT_EXEC_PATH"
	PythonPathVar  = "PYTHONPATH"
)

// Environment maps variable names to values.
type Environment map[string]string

// Ambient snapshots the current process environment.
func Ambient() Environment {
	return FromList(os.Environ())
}

// FromList parses KEY=VALUE entries; later duplicates win.
func FromList(entries []string) Environment {
	env := make(Environment, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// Clone returns an independent copy.
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// List renders KEY=VALUE entries sorted by key.
func (e Environment) List() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e[k])
	}
	return out
}

// AppendList extends a path-list variable. The existing value is kept as is;
// entries already present are not added again.
func (e Environment) AppendList(key string, entries ...string) {
	current, ok := e[key]
	next := appendPathList(current, entries...)
	if !ok && next == "" {
		return
	}
	e[key] = next
}

// AppendFlags extends a space separated flag variable.
func (e Environment) AppendFlags(key string, flags ...string) {
	parts := strings.Fields(e[key])
	for _, flag := range flags {
		if strings.TrimSpace(flag) == "" {
			continue
		}
		parts = append(parts, flag)
	}
	if len(parts) == 0 {
		return
	}
	e[key] = strings.Join(parts, " ")
}

func appendPathList(current string, entries ...string) string {
	separator := string(os.PathListSeparator)
	seen := map[string]struct{}{}
	for _, entry := range filepath.SplitList(current) {
		seen[entry] = struct{}{}
	}

	out := current
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, exists := seen[entry]; exists {
			continue
		}
		seen[entry] = struct{}{}
		if out == "" {
			out = entry
			continue
		}
		out += separator + entry
	}
	return out
}
