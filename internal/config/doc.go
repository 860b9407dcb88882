// Package config loads the partctl TOML file.
//
// Ownership boundary:
// - [part], [wstool] and [pip] decoding onto defaults
//
// - relative directory resolution against the file's directory
//
// - conversion into wstool and pip configs
package config
