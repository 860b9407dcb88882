package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/partkit/internal/config"
	"github.com/danmuck/partkit/internal/testutil/testlog"
	"github.com/danmuck/partkit/internal/tools"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigInitThenShow(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "partkit.toml")

	if _, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	out, err := runCLI(t, "--config", path, "--json", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("decode show output: %v\n%s", err, out)
	}
	if cfg.Part.Name != "ros-workspace" {
		t.Fatalf("unexpected part name: %q", cfg.Part.Name)
	}
	if cfg.Part.SourceDir != filepath.Join(filepath.Dir(path), "src") {
		t.Fatalf("unexpected source dir: %q", cfg.Part.SourceDir)
	}
}

func TestFlagOverridesConfig(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "partkit.toml")
	if err := config.WriteTemplate(path, "part", false); err != nil {
		t.Fatalf("write template: %v", err)
	}

	out, err := runCLI(t, "--config", path, "-j", "9", "--stage-packages-dir", "/pkgs", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "parallel_build_count = 9") {
		t.Fatalf("jobs override missing:\n%s", out)
	}
	if !strings.Contains(out, `stage_packages_dir = "/pkgs"`) {
		t.Fatalf("stage packages override missing:\n%s", out)
	}
}

func TestInvalidJobsRejected(t *testing.T) {
	testlog.Start(t)
	_, err := runCLI(t, "--jobs=-1", "config", "show")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestWstoolShow(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "deps.rosinstall")
	manifest := "- git:\n    local-name: ros_comm\n    uri: https://github.com/ros/ros_comm.git\n    version: noetic-devel\n"
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	out, err := runCLI(t, "wstool", "show", path)
	if err != nil {
		t.Fatalf("wstool show: %v", err)
	}
	if !strings.Contains(out, "ros_comm") || !strings.Contains(out, "noetic-devel") {
		t.Fatalf("unexpected show output:\n%s", out)
	}
}

func TestWstoolSetupNeedsStagePackages(t *testing.T) {
	testlog.Start(t)
	_, err := runCLI(t, "wstool", "setup")
	if err == nil || !strings.Contains(err.Error(), "stage_packages_dir") {
		t.Fatalf("expected stage packages error, got %v", err)
	}
}

func TestPipEnv(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	python := filepath.Join(dir, "parts", "app", "install", "usr", "bin", "python3")
	if err := os.MkdirAll(filepath.Dir(python), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(python, nil, 0o755); err != nil {
		t.Fatalf("write python: %v", err)
	}
	path := filepath.Join(dir, "partkit.toml")
	if err := os.WriteFile(path, []byte("[part]\nname = \"app\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "--config", path, "pip", "env")
	if err != nil {
		t.Fatalf("pip env: %v", err)
	}
	want := "PYTHONUSERBASE=" + filepath.Join(dir, "parts", "app", "install")
	if !strings.Contains(out, want) {
		t.Fatalf("missing %q in:\n%s", want, out)
	}
}

func TestReportErrorExitCodes(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	cmdErr := &tools.CommandError{Command: tools.Command{Name: "pip"}, ExitCode: 2, Err: errors.New("exit status 2")}
	if code := reportError(&out, cmdErr); code != 2 {
		t.Fatalf("unexpected command exit code: %d", code)
	}
	if !strings.Contains(out.String(), "exit=2") {
		t.Fatalf("command error not reported: %q", out.String())
	}
	wrapped := fmt.Errorf("pip install: %w", cmdErr)
	if code := reportError(&out, wrapped); code != 2 {
		t.Fatalf("unexpected wrapped exit code: %d", code)
	}
	if code := reportError(&out, errors.New("boom")); code != 1 {
		t.Fatalf("unexpected default exit code: %d", code)
	}
}
