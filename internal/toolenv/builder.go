package toolenv

import (
	"os"
	"path/filepath"
	"sort"
)

// Source derives an environment from an ambient snapshot.
type Source interface {
	Build(ambient Environment) Environment
}

// Builder computes the environment for one wrapped tool. Zero-valued fields
// switch the matching derivation off.
type Builder struct {
	// ToolInstall is the private tool tree supplying bin, lib and helpers.
	ToolInstall string
	InstallDir  string
	StageDir    string
	ArchTriplet string

	// Interpreter is the runtime binary name looked up under usr/bin of the
	// install and stage dirs, e.g. "python3".
	Interpreter string
	// HomeVar receives the usr dir holding Interpreter, e.g. "PYTHONHOME".
	HomeVar string
	// UserBaseVar receives InstallDir, e.g. "PYTHONUSERBASE".
	UserBaseVar string
	// HostRoot anchors the host header probe; empty means "/".
	HostRoot string

	// GitExec redirects git helpers into ToolInstall.
	GitExec bool
	// SitePackages exposes ToolInstall's dist-packages on PYTHONPATH.
	SitePackages bool
}

// Build derives the environment from an ambient snapshot. It never fails and
// never modifies ambient.
func (b Builder) Build(ambient Environment) Environment {
	env := ambient.Clone()

	if b.ToolInstall != "" {
		env.AppendList(PathVar,
			filepath.Join(b.ToolInstall, "usr", "bin"),
			filepath.Join(b.ToolInstall, "bin"),
		)
		if libs := b.libraryPaths(); len(libs) > 0 {
			env.AppendList(LibraryPathVar, libs...)
		}
		if b.GitExec {
			if gitCore := filepath.Join(b.ToolInstall, "usr", "lib", "git-core"); isDir(gitCore) {
				env[GitExecPathVar] = gitCore
			}
		}
		if b.SitePackages {
			matches, _ := filepath.Glob(filepath.Join(b.ToolInstall, "usr", "lib", "python*", "dist-packages"))
			sort.Strings(matches)
			if len(matches) > 0 {
				env.AppendList(PythonPathVar, matches...)
			}
		}
	}

	if b.HomeVar != "" {
		if home := b.InterpreterHome(); home != "" {
			env[b.HomeVar] = home
		}
	}
	if b.UserBaseVar != "" && b.InstallDir != "" {
		env[b.UserBaseVar] = b.InstallDir
	}
	if headers := b.Headers(); headers != "" {
		env.AppendFlags(CPPFlagsVar, "-I"+headers)
	}
	return env
}

// HostBuilder returns a copy whose interpreter home is the host's usr dir.
func (b Builder) HostBuilder() HostBuilder {
	return HostBuilder{Builder: b}
}

// HostBuilder builds an environment that runs the interpreter against the
// host installation instead of the private one.
type HostBuilder struct {
	Builder
}

func (h HostBuilder) Build(ambient Environment) Environment {
	env := h.Builder.Build(ambient)
	if h.HomeVar != "" {
		env[h.HomeVar] = filepath.Join(h.hostRoot(), "usr")
	}
	return env
}

// InterpreterBinary returns the interpreter path, preferring InstallDir over
// StageDir. Empty when neither holds it.
func (b Builder) InterpreterBinary() string {
	if b.Interpreter == "" {
		return ""
	}
	for _, root := range []string{b.InstallDir, b.StageDir} {
		if root == "" {
			continue
		}
		candidate := filepath.Join(root, "usr", "bin", b.Interpreter)
		if exists(candidate) {
			return candidate
		}
	}
	return ""
}

// InterpreterHome returns the usr dir that holds the interpreter.
func (b Builder) InterpreterHome() string {
	binary := b.InterpreterBinary()
	if binary == "" {
		return ""
	}
	return filepath.Dir(filepath.Dir(binary))
}

// Headers returns the first interpreter header dir found in the install dir,
// the stage dir, then the host.
func (b Builder) Headers() string {
	if b.Interpreter == "" {
		return ""
	}
	for _, root := range []string{b.InstallDir, b.StageDir, b.hostRoot()} {
		if root == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(root, "usr", "include", b.Interpreter+"*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}

func (b Builder) libraryPaths() []string {
	candidates := []string{
		filepath.Join(b.ToolInstall, "lib"),
		filepath.Join(b.ToolInstall, "usr", "lib"),
	}
	if b.ArchTriplet != "" {
		candidates = append(candidates,
			filepath.Join(b.ToolInstall, "lib", b.ArchTriplet),
			filepath.Join(b.ToolInstall, "usr", "lib", b.ArchTriplet),
		)
	}
	out := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		if isDir(dir) {
			out = append(out, dir)
		}
	}
	return out
}

func (b Builder) hostRoot() string {
	if b.HostRoot == "" {
		return string(os.PathSeparator)
	}
	return b.HostRoot
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
