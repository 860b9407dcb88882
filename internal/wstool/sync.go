package wstool

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

const ManifestSuffix = ".rosinstall"

// MergeAll merges rosinstall files in the order given and stops at the
// first failure.
func (t *Tool) MergeAll(rosinstallFiles []string) error {
	for _, path := range rosinstallFiles {
		if entries, err := ReadManifest(path); err == nil {
			log.Info().Str("manifest", path).Int("sources", len(entries)).Msg("merging rosinstall file")
		} else {
			log.Warn().Err(err).Str("manifest", path).Msg("merging unparsable rosinstall file")
		}
		if _, err := t.Merge(path); err != nil {
			return err
		}
	}
	return nil
}

// SyncRecursive merges every rosinstall file under the workspace and updates
// it, repeating while updates bring in rosinstall files not yet merged.
func (t *Tool) SyncRecursive() error {
	merged := map[string]struct{}{}
	for {
		found, err := FindManifests(t.sourcePath)
		if err != nil {
			return err
		}
		fresh := make([]string, 0, len(found))
		for _, path := range found {
			if _, ok := merged[path]; ok {
				continue
			}
			fresh = append(fresh, path)
		}
		if len(fresh) == 0 {
			return nil
		}

		if err := t.MergeAll(fresh); err != nil {
			return err
		}
		for _, path := range fresh {
			merged[path] = struct{}{}
		}
		if _, err := t.Update(); err != nil {
			return err
		}
	}
}

// FindManifests returns the rosinstall files under root, sorted. Hidden
// files and directories are skipped, which also leaves out the workspace's
// own .rosinstall.
func FindManifests(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !hidden && strings.HasSuffix(d.Name(), ManifestSuffix) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
