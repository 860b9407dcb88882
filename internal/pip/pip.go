package pip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/partkit/internal/toolenv"
	"github.com/danmuck/partkit/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPythonMajorVersion = "3"
	packagesDirName           = "python-packages"
)

// Config is the part-level context an Installer runs with.
type Config struct {
	PythonMajorVersion string
	PartDir            string
	InstallDir         string
	StageDir           string
	ArchTriplet        string
	// HostRoot anchors host lookups (host interpreter home, host headers);
	// empty means "/".
	HostRoot string

	Runner tools.CommandRunner
	// Ambient snapshots the environment per call; defaults to toolenv.Ambient.
	Ambient func() toolenv.Environment
}

// Installer runs pip with the part's interpreter. Not safe for concurrent use.
type Installer struct {
	partDir     string
	installDir  string
	packagesDir string
	python      string
	builder     toolenv.Builder

	runner  tools.CommandRunner
	ambient func() toolenv.Environment
	state   State
}

// New locates the part interpreter (install dir first, then stage dir) and
// prepares the local package directory.
func New(cfg Config) (*Installer, error) {
	major := strings.TrimSpace(cfg.PythonMajorVersion)
	if major == "" {
		major = DefaultPythonMajorVersion
	}
	builder := toolenv.Builder{
		ToolInstall: cfg.InstallDir,
		InstallDir:  cfg.InstallDir,
		StageDir:    cfg.StageDir,
		ArchTriplet: cfg.ArchTriplet,
		Interpreter: "python" + major,
		HomeVar:     "PYTHONHOME",
		UserBaseVar: "PYTHONUSERBASE",
		HostRoot:    cfg.HostRoot,
	}
	python := builder.InterpreterBinary()
	if python == "" {
		return nil, fmt.Errorf("%w: python%s in %s or %s", ErrMissingPython, major, cfg.InstallDir, cfg.StageDir)
	}

	packagesDir := filepath.Join(cfg.PartDir, packagesDirName)
	if err := os.MkdirAll(packagesDir, 0o755); err != nil {
		return nil, err
	}

	runner := cfg.Runner
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	ambient := cfg.Ambient
	if ambient == nil {
		ambient = toolenv.Ambient
	}
	return &Installer{
		partDir:     cfg.PartDir,
		installDir:  cfg.InstallDir,
		packagesDir: packagesDir,
		python:      python,
		builder:     builder,
		runner:      runner,
		ambient:     ambient,
	}, nil
}

func (i *Installer) State() State { return i.state }

// Python is the interpreter pip runs under.
func (i *Installer) Python() string { return i.python }

// PackagesDir holds downloaded archives and built wheels; install uses it as
// its find-links directory.
func (i *Installer) PackagesDir() string { return i.packagesDir }

// Environment returns the private environment the next pip call would use.
func (i *Installer) Environment() toolenv.Environment {
	return i.builder.Build(i.ambient())
}

// CleanPackages removes every downloaded archive and built wheel.
func (i *Installer) CleanPackages() error {
	log.Debug().Str("dir", i.packagesDir).Msg("pip clean packages")
	return os.RemoveAll(i.packagesDir)
}

func (i *Installer) command(args []string, dir string, env toolenv.Source) tools.Command {
	argv := make([]string, 0, len(args)+2)
	argv = append(argv, "-m", "pip")
	argv = append(argv, args...)
	return tools.Command{
		Name: i.python,
		Args: argv,
		Env:  env.Build(i.ambient()).List(),
		Dir:  dir,
	}
}

func (i *Installer) run(args []string, dir string, env toolenv.Source) (tools.Command, tools.Result) {
	cmd := i.command(args, dir, env)
	log.Debug().Str("cmd", tools.Render(cmd)).Str("dir", dir).Msg("pip exec")
	res := tools.Execute(i.runner, cmd)
	if res.Err != nil {
		log.Debug().
			Str("cmd", tools.Render(cmd)).
			Int32("exit", res.ExitCode).
			Str("stderr", strings.TrimSpace(string(res.Stderr))).
			Msg("pip command failed")
	}
	return cmd, res
}

// runChecked runs pip and converts any failure into a *tools.CommandError.
func (i *Installer) runChecked(args []string, dir string, env toolenv.Source) (string, error) {
	cmd, res := i.run(args, dir, env)
	if res.Err != nil {
		return "", tools.NewCommandError(cmd, res)
	}
	return string(res.Stdout), nil
}
