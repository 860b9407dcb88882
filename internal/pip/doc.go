// Package pip wraps pip so a build part installs Python dependencies into its
// own install tree with a private interpreter.
//
// Ownership boundary:
// - pip self-install bootstrap
//
// - download, install and wheel argument grammar
//
// - installed package listing
//
// - post-install shebang and permission repair
package pip
