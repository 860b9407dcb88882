// Package tools provides the subprocess boundary shared by the wrapped tool packages.
//
// Ownership boundary:
// - command execution helpers
//
// - failure classification over captured output
//
// - command rendering for logs
package tools
