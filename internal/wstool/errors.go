package wstool

import (
	"errors"
	"fmt"
)

var ErrWstool = errors.New("wstool")

// WorkspaceInitializationError reports a failed `wstool init`.
type WorkspaceInitializationError struct {
	Stderr string
}

func (e *WorkspaceInitializationError) Error() string {
	return fmt.Sprintf("error initializing workspace: %s", e.Stderr)
}

func (e *WorkspaceInitializationError) Unwrap() error { return ErrWstool }

// RosinstallMergeError reports a failed `wstool merge` of Path.
type RosinstallMergeError struct {
	Path   string
	Stderr string
}

func (e *RosinstallMergeError) Error() string {
	return fmt.Sprintf("error merging rosinstall file %q into workspace: %s", e.Path, e.Stderr)
}

func (e *RosinstallMergeError) Unwrap() error { return ErrWstool }

// WorkspaceUpdateError reports a failed `wstool update`.
type WorkspaceUpdateError struct {
	Stderr string
}

func (e *WorkspaceUpdateError) Error() string {
	return fmt.Sprintf("error updating workspace: %s", e.Stderr)
}

func (e *WorkspaceUpdateError) Unwrap() error { return ErrWstool }
