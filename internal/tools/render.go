package tools

import (
	"github.com/kballard/go-shellquote"
)

// Render formats a command line for logs and error messages.
func Render(cmd Command) string {
	argv := make([]string, 0, len(cmd.Args)+1)
	argv = append(argv, cmd.Name)
	argv = append(argv, cmd.Args...)
	return shellquote.Join(argv...)
}
