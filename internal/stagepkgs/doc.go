// Package stagepkgs defines the fetch/unpack boundary that materializes a
// wrapped tool's binary distribution into a private install tree.
//
// Ownership boundary:
// - fetcher interface consumed by tool wrappers
//
// - local directory-backed fetcher
package stagepkgs
