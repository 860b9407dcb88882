package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danmuck/partkit/internal/pip"
	"github.com/danmuck/partkit/internal/wstool"
)

func writeJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func printListing(out io.Writer, listing pip.Listing, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, listing)
	}
	for _, pkg := range listing.Packages() {
		fmt.Fprintf(out, "%s==%s\n", pkg.Name, pkg.Version)
	}
	return nil
}

func printManifest(out io.Writer, entries []wstool.ManifestEntry, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, entries)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tLOCAL NAME\tURI\tVERSION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Kind, e.LocalName, e.URI, e.Version)
	}
	return w.Flush()
}

func printPaths(out io.Writer, paths []string, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, paths)
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}
