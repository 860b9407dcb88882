package main

import (
	"github.com/danmuck/partkit/internal/config"
	"github.com/danmuck/partkit/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write, check and print partkit config",
	}
	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(opts),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		kind  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a config template",
		Args:  cobra.ExactArgs(1),
		// Writing a template must not require a loadable config.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logging.ConfigureRuntime()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], kind, force); err != nil {
				return err
			}
			log.Info().Str("kind", kind).Str("path", args[0]).Msg("wrote config template")
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "part", "template kind: part|pip")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Validate the config and print the effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), opts.cfg)
			}
			return opts.cfg.WriteTOML(cmd.OutOrStdout())
		},
	}
}
