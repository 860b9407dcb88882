package pip

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/partkit/internal/testutil/testlog"
	"github.com/danmuck/partkit/internal/toolenv"
	"github.com/danmuck/partkit/internal/tools"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	stdout   string
	stderr   string
	exitCode int32
	err      error
}

// fakeRunner answers pip calls through respond, or with success when nil.
type fakeRunner struct {
	commands []tools.Command
	respond  func(args []string) runResult
	onRun    func(cmd tools.Command)
}

func (r *fakeRunner) Run(cmd tools.Command) ([]byte, []byte, int32, error) {
	r.commands = append(r.commands, cmd)
	if r.onRun != nil {
		r.onRun(cmd)
	}
	if r.respond == nil {
		return nil, nil, 0, nil
	}
	res := r.respond(pipArgs(cmd))
	return []byte(res.stdout), []byte(res.stderr), res.exitCode, res.err
}

// pipArgs strips the "-m pip" prefix.
func pipArgs(cmd tools.Command) []string {
	if len(cmd.Args) >= 2 && cmd.Args[0] == "-m" && cmd.Args[1] == "pip" {
		return cmd.Args[2:]
	}
	return cmd.Args
}

var errExit = errors.New("exit status 1")

type fixture struct {
	work    string
	partDir string
	install string
	stage   string
	host    string
	python  string
	runner  *fakeRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testlog.Start(t)
	work := t.TempDir()
	f := &fixture{
		work:    work,
		partDir: filepath.Join(work, "part_dir"),
		install: filepath.Join(work, "install_dir"),
		stage:   filepath.Join(work, "stage_dir"),
		host:    filepath.Join(work, "host"),
		runner:  &fakeRunner{},
	}
	f.python = filepath.Join(f.install, "usr", "bin", "python3")
	writeFile(t, f.python, "", 0o755)
	require.NoError(t, os.MkdirAll(f.host, 0o755))
	return f
}

func (f *fixture) installer(t *testing.T) *Installer {
	t.Helper()
	i, err := New(Config{
		PythonMajorVersion: "3",
		PartDir:            f.partDir,
		InstallDir:         f.install,
		StageDir:           f.stage,
		HostRoot:           f.host,
		Runner:             f.runner,
		Ambient: func() toolenv.Environment {
			return toolenv.Environment{"PATH": "/usr/bin", "CPPFLAGS": "-I/opt/include"}
		},
	})
	require.NoError(t, err)
	return i
}

func writeFile(t *testing.T, path, data string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func envOf(cmd tools.Command) toolenv.Environment {
	return toolenv.FromList(cmd.Env)
}

func TestNewRequiresInterpreter(t *testing.T) {
	testlog.Start(t)
	work := t.TempDir()
	_, err := New(Config{PartDir: filepath.Join(work, "part"), InstallDir: filepath.Join(work, "install"), StageDir: filepath.Join(work, "stage")})
	require.ErrorIs(t, err, ErrMissingPython)
}

func TestNewPrefersInstallDirInterpreter(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.stage, "usr", "bin", "python3"), "", 0o755)
	i := f.installer(t)
	require.Equal(t, f.python, i.Python())
	require.DirExists(t, i.PackagesDir())
}

func TestNewUsesStagedInterpreter(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.python))
	staged := filepath.Join(f.stage, "usr", "bin", "python3")
	writeFile(t, staged, "", 0o755)

	i := f.installer(t)
	require.Equal(t, staged, i.Python())
	require.Equal(t, filepath.Join(f.stage, "usr"), i.Environment()["PYTHONHOME"])
}

func TestEnvironment(t *testing.T) {
	f := newFixture(t)
	staged := filepath.Join(f.stage, "usr", "include", "python3.8")
	require.NoError(t, os.MkdirAll(staged, 0o755))

	env := f.installer(t).Environment()
	require.Equal(t, f.install, env["PYTHONUSERBASE"])
	require.Equal(t, filepath.Join(f.install, "usr"), env["PYTHONHOME"])
	require.Contains(t, env["PATH"], filepath.Join(f.install, "usr", "bin"))
	require.True(t, strings.HasPrefix(env["PATH"], "/usr/bin"))
	require.Equal(t, "-I/opt/include -I"+staged, env["CPPFLAGS"])
}

func TestCleanPackages(t *testing.T) {
	f := newFixture(t)
	i := f.installer(t)
	require.DirExists(t, i.PackagesDir())
	require.NoError(t, i.CleanPackages())
	require.NoDirExists(t, i.PackagesDir())
}
