package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/partkit/internal/config"
	"github.com/danmuck/partkit/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliOptions struct {
	configPath       string
	logLevel         string
	jsonOutput       bool
	stagePackagesDir string
	jobs             int
	cfg              config.Config
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{}

	root := &cobra.Command{
		Use:           "partctl",
		Short:         "Drive private wstool and pip installs for a build part",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.ConfigureRuntime()
			if err := applyLogLevel(opts.logLevel); err != nil {
				return err
			}
			return loadConfig(cmd, &opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "partkit TOML config (defaults apply when unset)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (trace|debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().StringVar(&opts.stagePackagesDir, "stage-packages-dir", "", "directory of pre-extracted stage packages")
	root.PersistentFlags().IntVarP(&opts.jobs, "jobs", "j", 0, "parallel build count override")

	root.AddCommand(
		newWstoolCmd(&opts),
		newPipCmd(&opts),
		newConfigCmd(&opts),
	)

	return root
}

func applyLogLevel(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	level, ok := logging.ParseLevel(raw)
	if !ok {
		return fmt.Errorf("unknown log level: %s", raw)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

func loadConfig(cmd *cobra.Command, opts *cliOptions) error {
	cfg := config.Default()
	if path := strings.TrimSpace(opts.configPath); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Debug().Str("path", path).Msg("loaded partkit config")
	}

	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "stage-packages-dir":
			cfg.Part.StagePackagesDir = opts.stagePackagesDir
		case "jobs":
			cfg.Part.ParallelBuildCount = opts.jobs
		}
	})
	if err := config.Validate(cfg); err != nil {
		return err
	}
	opts.cfg = cfg
	return nil
}
