package config

import (
	"github.com/danmuck/partkit/internal/pip"
	"github.com/danmuck/partkit/internal/stagepkgs"
	"github.com/danmuck/partkit/internal/tools"
	"github.com/danmuck/partkit/internal/wstool"
)

// Fetcher serves stage packages from part.stage_packages_dir.
func (c Config) Fetcher() stagepkgs.DirFetcher {
	return stagepkgs.DirFetcher{Root: c.Part.StagePackagesDir}
}

func (c Config) WstoolConfig(fetcher stagepkgs.Fetcher, runner tools.CommandRunner) wstool.Config {
	return wstool.Config{
		PackageSourcePath:  c.Part.SourceDir,
		ToolPath:           c.Wstool.ToolDir,
		TargetArch:         c.Part.TargetArch,
		ArchTriplet:        c.Part.ArchTriplet,
		Base:               c.Part.Base,
		ParallelBuildCount: c.Part.ParallelBuildCount,
		Fetcher:            fetcher,
		Runner:             runner,
	}
}

func (c Config) PipConfig(runner tools.CommandRunner) pip.Config {
	return pip.Config{
		PythonMajorVersion: c.Pip.PythonMajorVersion,
		PartDir:            c.Part.PartDir,
		InstallDir:         c.Part.InstallDir,
		StageDir:           c.Part.StageDir,
		ArchTriplet:        c.Part.ArchTriplet,
		HostRoot:           c.Pip.HostRoot,
		Runner:             runner,
	}
}
