package wstool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/partkit/internal/stagepkgs"
	"github.com/danmuck/partkit/internal/toolenv"
	"github.com/danmuck/partkit/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	Executable  = "wstool"
	PackageName = "python-wstool"

	alreadyWorkspaceMarker = "already is a workspace"
)

type State int

const (
	StateUninitialized State = iota
	StateInitialized
)

func (s State) String() string {
	if s == StateInitialized {
		return "initialized"
	}
	return "uninitialized"
}

// Config is the part-level context a Tool runs with.
type Config struct {
	// PackageSourcePath is the workspace the sources are fetched into.
	PackageSourcePath string
	// ToolPath is the working directory wstool is installed under.
	ToolPath           string
	TargetArch         string
	ArchTriplet        string
	Base               string
	ParallelBuildCount int

	Fetcher stagepkgs.Fetcher
	Runner  tools.CommandRunner
	// Ambient snapshots the environment per call; defaults to toolenv.Ambient.
	Ambient func() toolenv.Environment
}

// Tool runs a private wstool against one workspace. Not safe for concurrent use.
type Tool struct {
	sourcePath        string
	installPath       string
	stagePackagesPath string
	targetArch        string
	archTriplet       string
	base              string
	jobs              int

	fetcher stagepkgs.Fetcher
	runner  tools.CommandRunner
	ambient func() toolenv.Environment
	state   State
}

func New(cfg Config) *Tool {
	runner := cfg.Runner
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	ambient := cfg.Ambient
	if ambient == nil {
		ambient = toolenv.Ambient
	}
	jobs := cfg.ParallelBuildCount
	if jobs < 1 {
		jobs = 1
	}
	return &Tool{
		sourcePath:        cfg.PackageSourcePath,
		installPath:       filepath.Join(cfg.ToolPath, "install"),
		stagePackagesPath: filepath.Join(cfg.ToolPath, "stage_packages"),
		targetArch:        cfg.TargetArch,
		archTriplet:       cfg.ArchTriplet,
		base:              cfg.Base,
		jobs:              jobs,
		fetcher:           cfg.Fetcher,
		runner:            runner,
		ambient:           ambient,
	}
}

func (t *Tool) State() State { return t.state }

// InstallPath is where the wstool distribution is unpacked.
func (t *Tool) InstallPath() string { return t.installPath }

// Setup installs wstool and initializes the workspace. Initializing an
// existing workspace counts as success.
func (t *Tool) Setup() error {
	if err := os.MkdirAll(t.installPath, 0o755); err != nil {
		return err
	}

	if t.fetcher == nil {
		return fmt.Errorf("%w: no fetcher configured", ErrWstool)
	}
	log.Info().Str("package", PackageName).Msg("installing wstool")
	archive, err := t.fetcher.Fetch([]string{PackageName}, t.stagePackagesPath, t.base, t.targetArch)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %w", ErrWstool, PackageName, err)
	}
	if err := t.fetcher.Unpack(archive, t.installPath); err != nil {
		return fmt.Errorf("%w: unpack %s: %w", ErrWstool, PackageName, err)
	}

	log.Info().Str("workspace", t.sourcePath).Msg("initializing workspace (if necessary)")
	res := t.run("init", t.sourcePath, t.jobsFlag())
	switch tools.Classify(res, tools.Rule{Marker: alreadyWorkspaceMarker, Outcome: tools.OutcomeAlreadyDone}) {
	case tools.OutcomeOK:
	case tools.OutcomeAlreadyDone:
		log.Debug().Str("workspace", t.sourcePath).Msg("workspace already initialized")
	default:
		return &WorkspaceInitializationError{Stderr: strings.TrimSpace(string(res.Stderr))}
	}
	t.state = StateInitialized
	return nil
}

// Merge merges a rosinstall file into the workspace without prompting.
func (t *Tool) Merge(rosinstallFile string) (string, error) {
	res := t.run("merge", rosinstallFile, "--confirm-all", "-t"+t.sourcePath)
	if res.Err != nil {
		return "", &RosinstallMergeError{Path: rosinstallFile, Stderr: strings.TrimSpace(string(res.Stderr))}
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// Update fetches every repository in the workspace. This is the only call
// that touches the network.
func (t *Tool) Update() (string, error) {
	res := t.run("update", t.jobsFlag(), "-t"+t.sourcePath)
	if res.Err != nil {
		return "", &WorkspaceUpdateError{Stderr: strings.TrimSpace(string(res.Stderr))}
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// Environment returns the environment the next wstool call would use.
func (t *Tool) Environment() toolenv.Environment {
	return t.builder().Build(t.ambient())
}

func (t *Tool) builder() toolenv.Builder {
	return toolenv.Builder{
		ToolInstall:  t.installPath,
		ArchTriplet:  t.archTriplet,
		GitExec:      true,
		SitePackages: true,
	}
}

func (t *Tool) jobsFlag() string {
	return fmt.Sprintf("-j%d", t.jobs)
}

func (t *Tool) run(args ...string) tools.Result {
	cmd := tools.Command{
		Name: Executable,
		Args: args,
		Env:  t.Environment().List(),
	}
	log.Debug().Str("cmd", tools.Render(cmd)).Msg("wstool exec")
	res := tools.Execute(t.runner, cmd)
	if res.Err != nil {
		log.Warn().
			Str("cmd", tools.Render(cmd)).
			Int32("exit", res.ExitCode).
			Str("stderr", strings.TrimSpace(string(res.Stderr))).
			Msg("wstool command failed")
	}
	return res
}
