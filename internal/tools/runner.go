package tools

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command is one wrapped-tool invocation. Env entries use KEY=VALUE form;
// a nil Env inherits the current process environment.
type Command struct {
	Name string
	Args []string
	Env  []string
	Dir  string
}

// CommandRunner abstracts subprocess execution for tool wrappers.
type CommandRunner interface {
	Run(cmd Command) ([]byte, []byte, int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// tools command-runner implementation backed by os/exec.
func (r ExecRunner) Run(c Command) ([]byte, []byte, int32, error) {
	cmd := exec.Command(resolveExecutable(c.Name, c.Env), c.Args...)
	cmd.Env = c.Env
	cmd.Dir = c.Dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// resolveExecutable looks a bare command name up in the PATH carried by the
// command environment rather than the parent's.
func resolveExecutable(name string, env []string) string {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) || env == nil {
		return name
	}
	path := ""
	for _, entry := range env {
		if strings.HasPrefix(entry, "PATH=") {
			path = strings.TrimPrefix(entry, "PATH=")
		}
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode().Perm()&0o111 != 0 {
			return candidate
		}
	}
	return name
}
