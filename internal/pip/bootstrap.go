package pip

import (
	"github.com/danmuck/partkit/internal/toolenv"
	"github.com/danmuck/partkit/internal/tools"
	"github.com/rs/zerolog/log"
)

const missingPipMarker = "no module named pip"

// bootstrapPackages are installed into the part right after pip itself.
var bootstrapPackages = []string{"wheel", "setuptools"}

type State int

const (
	StateUnknown State = iota
	StateChecking
	StateSelfInstalling
	StateReady
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateSelfInstalling:
		return "self-installing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Setup makes sure pip and its build tooling live in the part. A part
// without pip gets one installed by the host's pip; failures other than a
// missing pip module are returned unchanged.
func (i *Installer) Setup() error {
	i.state = StateChecking
	cmd, res := i.run(nil, "", i.builder)
	switch tools.Classify(res, tools.Rule{Marker: missingPipMarker, Outcome: tools.OutcomeMissing}) {
	case tools.OutcomeOK:
		if err := i.ensureBootstrapPackages(); err != nil {
			i.state = StateUnknown
			return err
		}
	case tools.OutcomeMissing:
		i.state = StateSelfInstalling
		if err := i.selfInstall(); err != nil {
			i.state = StateUnknown
			return err
		}
	default:
		i.state = StateUnknown
		return tools.NewCommandError(cmd, res)
	}
	i.state = StateReady
	log.Debug().Str("python", i.python).Msg("pip ready")
	return nil
}

func (i *Installer) selfInstall() error {
	log.Info().Str("python", i.python).Msg("fetching and installing pip with the host pip")
	if err := i.bootstrap("pip", i.builder.HostBuilder()); err != nil {
		return err
	}
	for _, pkg := range bootstrapPackages {
		log.Info().Str("package", pkg).Msg("fetching and installing pip build tooling")
		if err := i.bootstrap(pkg, i.builder); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) ensureBootstrapPackages() error {
	installed, err := i.List(false)
	if err != nil {
		return err
	}
	for _, pkg := range bootstrapPackages {
		if _, ok := installed[pkg]; ok {
			continue
		}
		log.Info().Str("package", pkg).Msg("installing missing pip build tooling")
		if err := i.bootstrap(pkg, i.builder); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) bootstrap(pkg string, env toolenv.Source) error {
	packages := []string{pkg}
	if err := i.download(packages, DownloadOptions{}, env); err != nil {
		return err
	}
	return i.install(packages, InstallOptions{IgnoreInstalled: true}, env)
}
