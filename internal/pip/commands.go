package pip

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/danmuck/partkit/internal/toolenv"
	"github.com/rs/zerolog/log"
)

// DownloadOptions tunes Download.
type DownloadOptions struct {
	// Constraints are constraint files, emitted in order.
	Constraints []string
	// Requirements are requirement files, emitted in order.
	Requirements []string
	// SetupPyDir is a local project built from source; pip runs inside it.
	SetupPyDir             string
	ProcessDependencyLinks bool
}

// InstallOptions tunes Install. The zero value installs from the local
// package dir only (--no-index) with dependencies.
type InstallOptions struct {
	Constraints            []string
	Requirements           []string
	SetupPyDir             string
	ProcessDependencyLinks bool
	// UseIndex lets pip reach the package index; false emits --no-index.
	UseIndex        bool
	Upgrade         bool
	NoDeps          bool
	IgnoreInstalled bool
}

// WheelOptions tunes Wheel. The zero value builds from the local package dir
// only (--no-index).
type WheelOptions struct {
	Constraints            []string
	Requirements           []string
	SetupPyDir             string
	ProcessDependencyLinks bool
	UseIndex               bool
}

// Download fetches packages into the local package dir. An empty request
// runs nothing.
func (i *Installer) Download(packages []string, opts DownloadOptions) error {
	return i.download(packages, opts, i.builder)
}

// Install installs packages into the part's user base, then repairs
// shebangs and permissions under the install dir. An empty request runs
// nothing.
func (i *Installer) Install(packages []string, opts InstallOptions) error {
	return i.install(packages, opts, i.builder)
}

// Wheel builds wheels, moves them into the local package dir and returns
// their paths. An empty request runs nothing.
func (i *Installer) Wheel(packages []string, opts WheelOptions) ([]string, error) {
	pkgArgs, dir := packageArgs(packages, opts.Requirements, opts.SetupPyDir)
	if len(pkgArgs) == 0 {
		return nil, nil
	}

	wheelDir, err := os.MkdirTemp(i.partDir, "wheels-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(wheelDir)

	args := []string{"wheel"}
	if !opts.UseIndex {
		args = append(args, "--no-index")
	}
	args = append(args, "--find-links", i.packagesDir, "--wheel-dir", wheelDir)
	args = append(args, commonArgs(opts.Constraints, opts.ProcessDependencyLinks)...)
	args = append(args, pkgArgs...)
	if _, err := i.runChecked(args, dir, i.builder); err != nil {
		return nil, err
	}
	return collectWheels(wheelDir, i.packagesDir)
}

func (i *Installer) download(packages []string, opts DownloadOptions, env toolenv.Source) error {
	pkgArgs, dir := packageArgs(packages, opts.Requirements, opts.SetupPyDir)
	if len(pkgArgs) == 0 {
		return nil
	}
	args := []string{"download", "--disable-pip-version-check", "--dest", i.packagesDir}
	args = append(args, commonArgs(opts.Constraints, opts.ProcessDependencyLinks)...)
	args = append(args, pkgArgs...)
	_, err := i.runChecked(args, dir, env)
	return err
}

func (i *Installer) install(packages []string, opts InstallOptions, env toolenv.Source) error {
	pkgArgs, dir := packageArgs(packages, opts.Requirements, opts.SetupPyDir)
	if len(pkgArgs) == 0 {
		return nil
	}
	args := []string{"install", "--user", "--no-compile", "--find-links", i.packagesDir}
	args = append(args, constraintArgs(opts.Constraints)...)
	if opts.Upgrade {
		args = append(args, "--upgrade")
	}
	if opts.NoDeps {
		args = append(args, "--no-deps")
	}
	if opts.IgnoreInstalled {
		args = append(args, "--ignore-installed")
	}
	if opts.ProcessDependencyLinks {
		args = append(args, "--process-dependency-links")
	}
	if !opts.UseIndex {
		args = append(args, "--no-index")
	}
	args = append(args, pkgArgs...)
	if _, err := i.runChecked(args, dir, env); err != nil {
		return err
	}

	if err := RepairTree(i.installDir); err != nil {
		return fmt.Errorf("%w: repair %s: %w", ErrPip, i.installDir, err)
	}
	return nil
}

func commonArgs(constraints []string, processDependencyLinks bool) []string {
	args := constraintArgs(constraints)
	if processDependencyLinks {
		args = append(args, "--process-dependency-links")
	}
	return args
}

func constraintArgs(constraints []string) []string {
	args := make([]string, 0, 2*len(constraints))
	for _, c := range constraints {
		args = append(args, "--constraint", c)
	}
	return args
}

// packageArgs renders requirement pairs, packages and the source marker. It
// returns no args when there is nothing to act on, and the working dir pip
// must run in.
func packageArgs(packages, requirements []string, setupPyDir string) ([]string, string) {
	args := make([]string, 0, 2*len(requirements)+len(packages)+1)
	for _, r := range requirements {
		args = append(args, "--requirement", r)
	}
	args = append(args, packages...)
	if setupPyDir != "" {
		args = append(args, ".")
	}
	return args, setupPyDir
}

func collectWheels(from, to string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(from, "*.whl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	out := make([]string, 0, len(matches))
	for _, src := range matches {
		dst := filepath.Join(to, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			return nil, err
		}
		log.Debug().Str("wheel", dst).Msg("pip wheel built")
		out = append(out, dst)
	}
	return out, nil
}
