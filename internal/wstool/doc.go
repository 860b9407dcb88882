// Package wstool wraps the wstool workspace aggregator so a build part can
// pull a rosinstall-described source workspace with a private wstool copy.
//
// Ownership boundary:
// - wstool install and workspace init
//
// - rosinstall merge and workspace update
//
// - rosinstall manifest decoding
package wstool
