package stagepkgs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidPackage  = errors.New("stagepkgs: invalid package name")
	ErrPackageNotFound = errors.New("stagepkgs: package not found")
)

// Fetcher materializes package distributions. Fetch returns the path of the
// raw fetched content, which Unpack then expands into an install path.
type Fetcher interface {
	Fetch(packages []string, dest, base, arch string) (string, error)
	Unpack(archive, install string) error
}

// DirFetcher serves packages from a local directory of pre-extracted trees,
// laid out as <Root>/<base>/<arch>/<package> or <Root>/<package>.
type DirFetcher struct {
	Root string
}

// Fetch copies each package tree into dest/<package> and returns dest.
func (f DirFetcher) Fetch(packages []string, dest, base, arch string) (string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}
	for _, raw := range packages {
		name := strings.TrimSpace(raw)
		if name == "" || strings.ContainsRune(name, os.PathSeparator) || name == "." || name == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPackage, raw)
		}
		src, err := f.resolve(name, base, arch)
		if err != nil {
			return "", err
		}
		log.Debug().Str("package", name).Str("src", src).Str("dest", dest).Msg("stagepkgs fetch")
		target := filepath.Join(dest, name)
		if err := os.RemoveAll(target); err != nil {
			return "", err
		}
		if err := copyDir(src, target); err != nil {
			return "", fmt.Errorf("fetch %s: %w", name, err)
		}
	}
	return dest, nil
}

// Unpack merges every fetched package tree under archive into install.
func (f DirFetcher) Unpack(archive, install string) error {
	entries, err := os.ReadDir(archive)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(install, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		log.Debug().Str("package", entry.Name()).Str("install", install).Msg("stagepkgs unpack")
		if err := copyDir(filepath.Join(archive, entry.Name()), install); err != nil {
			return fmt.Errorf("unpack %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (f DirFetcher) resolve(name, base, arch string) (string, error) {
	candidates := make([]string, 0, 2)
	if base != "" && arch != "" {
		candidates = append(candidates, filepath.Join(f.Root, base, arch, name))
	}
	candidates = append(candidates, filepath.Join(f.Root, name))
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s (base=%s arch=%s)", ErrPackageNotFound, name, base, arch)
}

func copyDir(src string, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.Type()&os.ModeSymlink != 0 {
			return copySymlink(path, target)
		}
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copySymlink(src string, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Symlink(link, dst)
}

func copyFile(src string, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Chmod(perm)
}
