package main

import (
	"os"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}
