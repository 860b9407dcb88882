package pip

import (
	"path/filepath"
	"testing"

	"github.com/danmuck/partkit/internal/tools"
	"github.com/stretchr/testify/require"
)

const bothInstalled = `[{"name": "wheel", "version": "1.0"}, {"name": "setuptools", "version": "1.0"}]`

func TestSetupWithPipInstalled(t *testing.T) {
	f := newFixture(t)
	f.runner.respond = func(args []string) runResult {
		if len(args) > 0 && args[0] == "list" {
			return runResult{stdout: bothInstalled}
		}
		return runResult{stdout: "Usage: pip <command> [options]"}
	}
	i := f.installer(t)

	require.NoError(t, i.Setup())
	require.Equal(t, StateReady, i.State())

	require.Len(t, f.runner.commands, 2)
	require.Equal(t, []string{"-m", "pip"}, f.runner.commands[0].Args)
	require.Equal(t, f.python, f.runner.commands[0].Name)
	require.Equal(t, filepath.Join(f.install, "usr"), envOf(f.runner.commands[0])["PYTHONHOME"])
	require.Equal(t, []string{"list", "--format=json"}, pipArgs(f.runner.commands[1]))
}

func TestSetupInstallsMissingBuildTooling(t *testing.T) {
	f := newFixture(t)
	f.runner.respond = func(args []string) runResult {
		if len(args) > 0 && args[0] == "list" {
			return runResult{stdout: `[{"name": "wheel", "version": "1.0"}]`}
		}
		return runResult{}
	}
	i := f.installer(t)

	require.NoError(t, i.Setup())
	require.Len(t, f.runner.commands, 4)
	require.Equal(t, "download", pipArgs(f.runner.commands[2])[0])
	require.Contains(t, pipArgs(f.runner.commands[2]), "setuptools")
	require.Equal(t, "install", pipArgs(f.runner.commands[3])[0])
	require.Contains(t, pipArgs(f.runner.commands[3]), "--ignore-installed")
}

func TestSetupWithoutPipInstalled(t *testing.T) {
	f := newFixture(t)
	f.runner.respond = func(args []string) runResult {
		if len(args) == 0 {
			return runResult{stdout: "/usr/bin/python3: No module named pip", exitCode: 1, err: errExit}
		}
		return runResult{stdout: "[]"}
	}
	i := f.installer(t)

	require.NoError(t, i.Setup())
	require.Equal(t, StateReady, i.State())

	partHome := filepath.Join(f.install, "usr")
	hostHome := filepath.Join(f.host, "usr")
	want := []struct {
		command string
		pkg     string
		home    string
	}{
		{"download", "pip", hostHome},
		{"install", "pip", hostHome},
		{"download", "wheel", partHome},
		{"install", "wheel", partHome},
		{"download", "setuptools", partHome},
		{"install", "setuptools", partHome},
	}

	calls := f.runner.commands[1:]
	require.Len(t, calls, len(want))
	for idx, w := range want {
		args := pipArgs(calls[idx])
		require.Equal(t, f.python, calls[idx].Name)
		require.Equal(t, w.command, args[0], "call %d", idx)
		require.Equal(t, w.pkg, args[len(args)-1], "call %d", idx)
		require.Equal(t, w.home, envOf(calls[idx])["PYTHONHOME"], "call %d", idx)
		require.Empty(t, calls[idx].Dir)
		if w.command == "install" {
			require.Contains(t, args, "--ignore-installed")
		}
	}
}

func TestSetupUnexpectedError(t *testing.T) {
	f := newFixture(t)
	f.runner.respond = func(args []string) runResult {
		return runResult{stderr: "no good, very bad", exitCode: 1, err: errExit}
	}
	i := f.installer(t)

	err := i.Setup()
	var cmdErr *tools.CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "no good, very bad", cmdErr.Stderr)
	require.Len(t, f.runner.commands, 1)
	require.Equal(t, StateUnknown, i.State())
}

func TestSetupSelfInstallFailureStops(t *testing.T) {
	f := newFixture(t)
	f.runner.respond = func(args []string) runResult {
		if len(args) == 0 {
			return runResult{stderr: "No module named pip", exitCode: 1, err: errExit}
		}
		if args[0] == "download" {
			return runResult{stderr: "offline", exitCode: 1, err: errExit}
		}
		return runResult{}
	}
	i := f.installer(t)

	require.ErrorIs(t, i.Setup(), tools.ErrCommandFailed)
	require.Len(t, f.runner.commands, 2)
	require.Equal(t, StateUnknown, i.State())
}
