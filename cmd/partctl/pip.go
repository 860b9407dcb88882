package main

import (
	"fmt"

	"github.com/danmuck/partkit/internal/pip"
	"github.com/danmuck/partkit/internal/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sourceFlags are the package-source options download, install and wheel
// share.
type sourceFlags struct {
	constraints            []string
	requirements           []string
	setupPyDir             string
	processDependencyLinks bool
}

func (s *sourceFlags) bind(flags *pflag.FlagSet) {
	flags.StringArrayVar(&s.constraints, "constraint", nil, "constraint file (repeatable, kept in order)")
	flags.StringArrayVarP(&s.requirements, "requirement", "r", nil, "requirement file (repeatable, kept in order)")
	flags.StringVar(&s.setupPyDir, "setup-py-dir", "", "local project directory to build from source")
	flags.BoolVar(&s.processDependencyLinks, "process-dependency-links", false, "let pip follow dependency links")
}

func newPipCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pip",
		Short: "Run pip against the part's private python",
	}
	cmd.AddCommand(
		newPipSetupCmd(opts),
		newPipDownloadCmd(opts),
		newPipInstallCmd(opts),
		newPipWheelCmd(opts),
		newPipListCmd(opts),
		newPipCleanCmd(opts),
		newPipEnvCmd(opts),
	)
	return cmd
}

func newInstaller(opts *cliOptions) (*pip.Installer, error) {
	return pip.New(opts.cfg.PipConfig(tools.ExecRunner{}))
}

func newPipSetupCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Make sure pip, wheel and setuptools exist in the private python",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			if err := installer.Setup(); err != nil {
				return err
			}
			log.Info().Str("python", installer.Python()).Str("state", installer.State().String()).Msg("pip ready")
			return nil
		},
	}
}

func newPipDownloadCmd(opts *cliOptions) *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "download [package]...",
		Short: "Download packages into the part's package dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			return installer.Download(args, pip.DownloadOptions{
				Constraints:            src.constraints,
				Requirements:           src.requirements,
				SetupPyDir:             src.setupPyDir,
				ProcessDependencyLinks: src.processDependencyLinks,
			})
		},
	}
	src.bind(cmd.Flags())
	return cmd
}

func newPipInstallCmd(opts *cliOptions) *cobra.Command {
	var (
		src             sourceFlags
		useIndex        bool
		upgrade         bool
		noDeps          bool
		ignoreInstalled bool
	)
	cmd := &cobra.Command{
		Use:   "install [package]...",
		Short: "Install packages into the part's install dir and repair scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			return installer.Install(args, pip.InstallOptions{
				Constraints:            src.constraints,
				Requirements:           src.requirements,
				SetupPyDir:             src.setupPyDir,
				ProcessDependencyLinks: src.processDependencyLinks,
				UseIndex:               useIndex,
				Upgrade:                upgrade,
				NoDeps:                 noDeps,
				IgnoreInstalled:        ignoreInstalled,
			})
		},
	}
	src.bind(cmd.Flags())
	cmd.Flags().BoolVar(&useIndex, "use-index", false, "allow the package index (default: local package dir only)")
	cmd.Flags().BoolVarP(&upgrade, "upgrade", "U", false, "upgrade packages already installed")
	cmd.Flags().BoolVar(&noDeps, "no-deps", false, "skip package dependencies")
	cmd.Flags().BoolVar(&ignoreInstalled, "ignore-installed", false, "reinstall over existing packages")
	return cmd
}

func newPipWheelCmd(opts *cliOptions) *cobra.Command {
	var (
		src      sourceFlags
		useIndex bool
	)
	cmd := &cobra.Command{
		Use:   "wheel [package]...",
		Short: "Build wheels into the part's package dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			wheels, err := installer.Wheel(args, pip.WheelOptions{
				Constraints:            src.constraints,
				Requirements:           src.requirements,
				SetupPyDir:             src.setupPyDir,
				ProcessDependencyLinks: src.processDependencyLinks,
				UseIndex:               useIndex,
			})
			if err != nil {
				return err
			}
			return printPaths(cmd.OutOrStdout(), wheels, opts.jsonOutput)
		},
	}
	src.bind(cmd.Flags())
	cmd.Flags().BoolVar(&useIndex, "use-index", false, "allow the package index (default: local package dir only)")
	return cmd
}

func newPipListCmd(opts *cliOptions) *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages installed in the part",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			listing, err := installer.List(user)
			if err != nil {
				return err
			}
			return printListing(cmd.OutOrStdout(), listing, opts.jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "only packages in the part's user site")
	return cmd
}

func newPipCleanCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded archives and built wheels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			return installer.CleanPackages()
		},
	}
}

func newPipEnvCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the environment pip runs with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			installer, err := newInstaller(opts)
			if err != nil {
				return err
			}
			env := installer.Environment()
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), env)
			}
			for _, kv := range env.List() {
				fmt.Fprintln(cmd.OutOrStdout(), kv)
			}
			return nil
		},
	}
}
