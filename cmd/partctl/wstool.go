package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/partkit/internal/tools"
	"github.com/danmuck/partkit/internal/wstool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newWstoolCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wstool",
		Short: "Manage the part's rosinstall workspace",
	}
	cmd.AddCommand(
		newWstoolSetupCmd(opts),
		newWstoolMergeCmd(opts),
		newWstoolUpdateCmd(opts),
		newWstoolSyncCmd(opts),
		newWstoolShowCmd(opts),
	)
	return cmd
}

func newWorkspaceTool(opts *cliOptions) *wstool.Tool {
	return wstool.New(opts.cfg.WstoolConfig(opts.cfg.Fetcher(), tools.ExecRunner{}))
}

func newWstoolSetupCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Install a private wstool and initialize the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.cfg.Part.StagePackagesDir) == "" {
				return fmt.Errorf("part.stage_packages_dir (or --stage-packages-dir) is required for wstool setup")
			}
			if err := newWorkspaceTool(opts).Setup(); err != nil {
				return err
			}
			log.Info().Str("source", opts.cfg.Part.SourceDir).Msg("wstool workspace ready")
			return nil
		},
	}
}

func newWstoolMergeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <rosinstall>...",
		Short: "Merge rosinstall files into the workspace, in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkspaceTool(opts).MergeAll(args)
		},
	}
}

func newWstoolUpdateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch every source the workspace references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := newWorkspaceTool(opts).Update()
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}

func newWstoolSyncCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge and update until no new rosinstall file appears in the sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newWorkspaceTool(opts).SyncRecursive()
		},
	}
}

func newWstoolShowCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <rosinstall>",
		Short: "Print the sources a rosinstall file declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := wstool.ReadManifest(args[0])
			if err != nil {
				return err
			}
			return printManifest(cmd.OutOrStdout(), entries, opts.jsonOutput)
		},
	}
}
