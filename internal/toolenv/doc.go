// Package toolenv derives the subprocess environment for wrapped tools that
// run out of a private install tree.
//
// Ownership boundary:
// - ambient environment snapshots
//
// - search path, library path and interpreter home derivation
package toolenv
