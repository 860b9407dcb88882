package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the build-part context shared by every wrapped tool.
type Config struct {
	Part   PartConfig
	Wstool WstoolConfig
	Pip    PipConfig
}

type PartConfig struct {
	Name               string
	SourceDir          string
	PartDir            string
	InstallDir         string
	StageDir           string
	TargetArch         string
	ArchTriplet        string
	Base               string
	ParallelBuildCount int
	// StagePackagesDir holds pre-extracted package trees for the fetcher.
	StagePackagesDir string
}

type WstoolConfig struct {
	ToolDir string
}

type PipConfig struct {
	PythonMajorVersion string
	HostRoot           string
}

type fileConfig struct {
	Part   filePart   `toml:"part"`
	Wstool fileWstool `toml:"wstool"`
	Pip    filePip    `toml:"pip"`
}

type filePart struct {
	Name               string `toml:"name"`
	SourceDir          string `toml:"source_dir"`
	PartDir            string `toml:"part_dir"`
	InstallDir         string `toml:"install_dir"`
	StageDir           string `toml:"stage_dir"`
	TargetArch         string `toml:"target_arch"`
	ArchTriplet        string `toml:"arch_triplet"`
	Base               string `toml:"base"`
	ParallelBuildCount int    `toml:"parallel_build_count"`
	StagePackagesDir   string `toml:"stage_packages_dir"`
}

type fileWstool struct {
	ToolDir string `toml:"tool_dir"`
}

type filePip struct {
	PythonMajorVersion string `toml:"python_major_version"`
	HostRoot           string `toml:"host_root"`
}

// Default returns the config used when no file is given. Directories are
// relative to the working directory.
func Default() Config {
	return Config{
		Part: PartConfig{
			Name:               "part",
			SourceDir:          "src",
			PartDir:            filepath.Join("parts", "part"),
			InstallDir:         filepath.Join("parts", "part", "install"),
			StageDir:           "stage",
			TargetArch:         runtime.GOARCH,
			ArchTriplet:        ArchTriplet(runtime.GOARCH),
			Base:               "ubuntu",
			ParallelBuildCount: runtime.NumCPU(),
		},
		Wstool: WstoolConfig{ToolDir: filepath.Join("parts", "part", "wstool")},
		Pip:    PipConfig{PythonMajorVersion: "3", HostRoot: "/"},
	}
}

// Load decodes path onto Default. Only keys present in the file override
// defaults; relative directories resolve against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load partkit config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %s", ErrInvalidConfig, undecoded[0])
	}

	partDirSet := meta.IsDefined("part", "part_dir")
	if meta.IsDefined("part", "name") {
		cfg.Part.Name = strings.TrimSpace(raw.Part.Name)
		if !partDirSet {
			cfg.Part.PartDir = filepath.Join("parts", cfg.Part.Name)
		}
	}
	if partDirSet {
		cfg.Part.PartDir = strings.TrimSpace(raw.Part.PartDir)
	}
	// Install and wstool dirs follow the part dir unless set explicitly.
	cfg.Part.InstallDir = filepath.Join(cfg.Part.PartDir, "install")
	cfg.Wstool.ToolDir = filepath.Join(cfg.Part.PartDir, "wstool")

	if meta.IsDefined("part", "source_dir") {
		cfg.Part.SourceDir = strings.TrimSpace(raw.Part.SourceDir)
	}
	if meta.IsDefined("part", "install_dir") {
		cfg.Part.InstallDir = strings.TrimSpace(raw.Part.InstallDir)
	}
	if meta.IsDefined("part", "stage_dir") {
		cfg.Part.StageDir = strings.TrimSpace(raw.Part.StageDir)
	}
	if meta.IsDefined("part", "target_arch") {
		cfg.Part.TargetArch = strings.TrimSpace(raw.Part.TargetArch)
		cfg.Part.ArchTriplet = ArchTriplet(cfg.Part.TargetArch)
	}
	if meta.IsDefined("part", "arch_triplet") {
		cfg.Part.ArchTriplet = strings.TrimSpace(raw.Part.ArchTriplet)
	}
	if meta.IsDefined("part", "base") {
		cfg.Part.Base = strings.TrimSpace(raw.Part.Base)
	}
	if meta.IsDefined("part", "parallel_build_count") {
		cfg.Part.ParallelBuildCount = raw.Part.ParallelBuildCount
	}
	if meta.IsDefined("part", "stage_packages_dir") {
		cfg.Part.StagePackagesDir = strings.TrimSpace(raw.Part.StagePackagesDir)
	}
	if meta.IsDefined("wstool", "tool_dir") {
		cfg.Wstool.ToolDir = strings.TrimSpace(raw.Wstool.ToolDir)
	}
	if meta.IsDefined("pip", "python_major_version") {
		cfg.Pip.PythonMajorVersion = strings.TrimSpace(raw.Pip.PythonMajorVersion)
	}
	if meta.IsDefined("pip", "host_root") {
		cfg.Pip.HostRoot = strings.TrimSpace(raw.Pip.HostRoot)
	}

	cfg.resolve(filepath.Dir(path))
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve(base string) {
	for _, p := range []*string{
		&c.Part.SourceDir,
		&c.Part.PartDir,
		&c.Part.InstallDir,
		&c.Part.StageDir,
		&c.Part.StagePackagesDir,
		&c.Wstool.ToolDir,
		&c.Pip.HostRoot,
	} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(base, *p)
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Part.Name) == "" {
		return fmt.Errorf("%w: part.name is required", ErrInvalidConfig)
	}
	required := []struct {
		key   string
		value string
	}{
		{"part.source_dir", cfg.Part.SourceDir},
		{"part.part_dir", cfg.Part.PartDir},
		{"part.install_dir", cfg.Part.InstallDir},
		{"part.stage_dir", cfg.Part.StageDir},
		{"wstool.tool_dir", cfg.Wstool.ToolDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, r.key)
		}
	}
	if cfg.Part.ParallelBuildCount < 1 {
		return fmt.Errorf("%w: part.parallel_build_count must be >= 1, got %d", ErrInvalidConfig, cfg.Part.ParallelBuildCount)
	}
	major := strings.TrimSpace(cfg.Pip.PythonMajorVersion)
	if major == "" || strings.Trim(major, "0123456789") != "" {
		return fmt.Errorf("%w: pip.python_major_version must be numeric, got %q", ErrInvalidConfig, cfg.Pip.PythonMajorVersion)
	}
	return nil
}

// WriteTOML encodes cfg in the file layout Load reads.
func (c Config) WriteTOML(w io.Writer) error {
	raw := fileConfig{
		Part: filePart{
			Name:               c.Part.Name,
			SourceDir:          c.Part.SourceDir,
			PartDir:            c.Part.PartDir,
			InstallDir:         c.Part.InstallDir,
			StageDir:           c.Part.StageDir,
			TargetArch:         c.Part.TargetArch,
			ArchTriplet:        c.Part.ArchTriplet,
			Base:               c.Part.Base,
			ParallelBuildCount: c.Part.ParallelBuildCount,
			StagePackagesDir:   c.Part.StagePackagesDir,
		},
		Wstool: fileWstool{ToolDir: c.Wstool.ToolDir},
		Pip: filePip{
			PythonMajorVersion: c.Pip.PythonMajorVersion,
			HostRoot:           c.Pip.HostRoot,
		},
	}
	return toml.NewEncoder(w).Encode(raw)
}

var archTriplets = map[string]string{
	"amd64":   "x86_64-linux-gnu",
	"arm64":   "aarch64-linux-gnu",
	"armhf":   "arm-linux-gnueabihf",
	"arm":     "arm-linux-gnueabihf",
	"i386":    "i386-linux-gnu",
	"386":     "i386-linux-gnu",
	"ppc64el": "powerpc64le-linux-gnu",
	"ppc64le": "powerpc64le-linux-gnu",
	"s390x":   "s390x-linux-gnu",
}

// ArchTriplet maps a Debian or Go architecture name to its multiarch
// triplet; unknown names map to "".
func ArchTriplet(arch string) string {
	return archTriplets[strings.ToLower(strings.TrimSpace(arch))]
}
