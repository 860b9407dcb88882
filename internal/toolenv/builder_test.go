package toolenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	mkdirs(t, filepath.Dir(path))
	if err := os.WriteFile(path, nil, 0o755); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

type layout struct {
	root    string
	tool    string
	install string
	stage   string
	host    string
}

func newLayout(t *testing.T) layout {
	root := t.TempDir()
	l := layout{
		root:    root,
		tool:    filepath.Join(root, "tool", "install"),
		install: filepath.Join(root, "install"),
		stage:   filepath.Join(root, "stage"),
		host:    filepath.Join(root, "host"),
	}
	mkdirs(t, l.tool, l.install, l.stage, l.host)
	return l
}

func (l layout) builder() Builder {
	return Builder{
		ToolInstall: l.tool,
		InstallDir:  l.install,
		StageDir:    l.stage,
		ArchTriplet: "x86_64-linux-gnu",
		Interpreter: "python3",
		HomeVar:     "PYTHONHOME",
		UserBaseVar: "PYTHONUSERBASE",
		HostRoot:    l.host,
	}
}

func TestBuildNeverDropsAmbientEntries(t *testing.T) {
	l := newLayout(t)
	mkdirs(t, filepath.Join(l.tool, "usr", "lib", "x86_64-linux-gnu"))
	sep := string(os.PathListSeparator)

	ambients := []Environment{
		{},
		{"PATH": "/usr/bin" + sep + "/bin"},
		{"PATH": "/usr/bin", "LD_LIBRARY_PATH": "/opt/lib" + sep + "/srv/lib"},
		{"LD_LIBRARY_PATH": "/opt/lib", "CPPFLAGS": "-I/opt/include"},
	}
	builders := []Builder{
		{},
		{ToolInstall: l.tool},
		l.builder(),
		{ToolInstall: l.tool, ArchTriplet: "x86_64-linux-gnu", GitExec: true, SitePackages: true},
	}

	for _, ambient := range ambients {
		for _, b := range builders {
			env := b.Build(ambient)
			for _, key := range []string{PathVar, LibraryPathVar} {
				for _, entry := range filepath.SplitList(ambient[key]) {
					if !containsEntry(env[key], entry) {
						t.Fatalf("%s lost ambient entry %q: %q", key, entry, env[key])
					}
				}
				if !strings.HasPrefix(env[key], ambient[key]) {
					t.Fatalf("%s=%q does not extend %q", key, env[key], ambient[key])
				}
			}
			if flags := ambient[CPPFlagsVar]; flags != "" && !strings.Contains(env[CPPFlagsVar], flags) {
				t.Fatalf("CPPFLAGS lost %q: %q", flags, env[CPPFlagsVar])
			}
		}
	}
}

func TestBuildDoesNotMutateAmbient(t *testing.T) {
	l := newLayout(t)
	ambient := Environment{"PATH": "/usr/bin"}
	_ = l.builder().Build(ambient)
	if len(ambient) != 1 || ambient["PATH"] != "/usr/bin" {
		t.Fatalf("ambient mutated: %v", ambient)
	}
}

func TestBuildAppendsToolPaths(t *testing.T) {
	l := newLayout(t)
	libDir := filepath.Join(l.tool, "usr", "lib", "x86_64-linux-gnu")
	mkdirs(t, libDir)

	env := l.builder().Build(Environment{"PATH": "/usr/bin", "LD_LIBRARY_PATH": "/opt/lib"})

	wantPath := strings.Join([]string{"/usr/bin", filepath.Join(l.tool, "usr", "bin"), filepath.Join(l.tool, "bin")}, string(os.PathListSeparator))
	if env["PATH"] != wantPath {
		t.Fatalf("PATH=%q, want %q", env["PATH"], wantPath)
	}
	wantLib := strings.Join([]string{"/opt/lib", filepath.Join(l.tool, "usr", "lib"), libDir}, string(os.PathListSeparator))
	if env["LD_LIBRARY_PATH"] != wantLib {
		t.Fatalf("LD_LIBRARY_PATH=%q, want %q", env["LD_LIBRARY_PATH"], wantLib)
	}
}

func TestBuildOmitsMissingPaths(t *testing.T) {
	l := newLayout(t)
	b := Builder{ToolInstall: l.tool, GitExec: true, SitePackages: true, Interpreter: "python3", HomeVar: "PYTHONHOME", HostRoot: l.host}

	env := b.Build(Environment{})
	for _, key := range []string{LibraryPathVar, GitExecPathVar, PythonPathVar, "PYTHONHOME", CPPFlagsVar} {
		if _, ok := env[key]; ok {
			t.Fatalf("expected %s to be omitted, got %q", key, env[key])
		}
	}
}

func TestInterpreterHomePrefersInstallDir(t *testing.T) {
	l := newLayout(t)
	touch(t, filepath.Join(l.install, "usr", "bin", "python3"))
	touch(t, filepath.Join(l.stage, "usr", "bin", "python3"))

	env := l.builder().Build(Environment{})
	if env["PYTHONHOME"] != filepath.Join(l.install, "usr") {
		t.Fatalf("PYTHONHOME=%q", env["PYTHONHOME"])
	}
	if env["PYTHONUSERBASE"] != l.install {
		t.Fatalf("PYTHONUSERBASE=%q", env["PYTHONUSERBASE"])
	}
}

func TestInterpreterHomeFallsBackToStageDir(t *testing.T) {
	l := newLayout(t)
	touch(t, filepath.Join(l.stage, "usr", "bin", "python3"))

	b := l.builder()
	if got := b.InterpreterBinary(); got != filepath.Join(l.stage, "usr", "bin", "python3") {
		t.Fatalf("InterpreterBinary=%q", got)
	}
	if env := b.Build(Environment{}); env["PYTHONHOME"] != filepath.Join(l.stage, "usr") {
		t.Fatalf("PYTHONHOME=%q", env["PYTHONHOME"])
	}
}

func TestHeadersSearchOrder(t *testing.T) {
	l := newLayout(t)
	hostHeaders := filepath.Join(l.host, "usr", "include", "python3.8")
	mkdirs(t, hostHeaders)

	b := l.builder()
	if got := b.Headers(); got != hostHeaders {
		t.Fatalf("expected host headers, got %q", got)
	}

	stagedHeaders := filepath.Join(l.stage, "usr", "include", "python3.8")
	mkdirs(t, stagedHeaders)
	if got := b.Headers(); got != stagedHeaders {
		t.Fatalf("expected staged headers, got %q", got)
	}

	installHeaders := filepath.Join(l.install, "usr", "include", "python3.8m")
	mkdirs(t, installHeaders)
	if got := b.Headers(); got != installHeaders {
		t.Fatalf("expected install headers, got %q", got)
	}

	env := b.Build(Environment{"CPPFLAGS": "-I/opt/include"})
	if env["CPPFLAGS"] != "-I/opt/include -I"+installHeaders {
		t.Fatalf("CPPFLAGS=%q", env["CPPFLAGS"])
	}
}

func TestGitExecAndSitePackagesRedirect(t *testing.T) {
	l := newLayout(t)
	gitCore := filepath.Join(l.tool, "usr", "lib", "git-core")
	site := filepath.Join(l.tool, "usr", "lib", "python2.7", "dist-packages")
	mkdirs(t, gitCore, site)

	env := Builder{ToolInstall: l.tool, GitExec: true, SitePackages: true}.Build(Environment{"PYTHONPATH": "/opt/py"})
	if env["GIT_EXEC_PATH"] != gitCore {
		t.Fatalf("GIT_EXEC_PATH=%q", env["GIT_EXEC_PATH"])
	}
	if env["PYTHONPATH"] != "/opt/py"+string(os.PathListSeparator)+site {
		t.Fatalf("PYTHONPATH=%q", env["PYTHONPATH"])
	}
}

func TestHostBuilderPointsHomeAtHost(t *testing.T) {
	l := newLayout(t)
	touch(t, filepath.Join(l.install, "usr", "bin", "python3"))

	env := l.builder().HostBuilder().Build(Environment{})
	if env["PYTHONHOME"] != filepath.Join(l.host, "usr") {
		t.Fatalf("PYTHONHOME=%q", env["PYTHONHOME"])
	}
}

func containsEntry(list, entry string) bool {
	for _, e := range filepath.SplitList(list) {
		if e == entry {
			return true
		}
	}
	return false
}
