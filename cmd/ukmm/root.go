package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GingerAvalanche/ukmm/internal/version"
	"github.com/GingerAvalanche/ukmm/pkg/deploy"
	"github.com/GingerAvalanche/ukmm/pkg/filesystem"
	"github.com/GingerAvalanche/ukmm/pkg/logging"
	"github.com/GingerAvalanche/ukmm/pkg/mods"
	"github.com/GingerAvalanche/ukmm/pkg/settings"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:     "ukmm",
		Version: version.Version,
		Short:   "Manage and deploy merged Breath of the Wild mods",
		Long: `ukmm keeps a merged staging tree of your installed mods and tracks the
work the deployed game directory is owed in a pending log, so an
interrupted deployment picks up where it left off.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default is the XDG config dir)")

	rootCmd.AddCommand(newDeployCmd(&configPath))
	rootCmd.AddCommand(newApplyCmd(&configPath))
	rootCmd.AddCommand(newPendingCmd(&configPath))
	rootCmd.AddCommand(newResetCmd(&configPath))

	return rootCmd
}

// openManager wires settings, the mod registry, and the deployment
// manager for a command invocation.
func openManager(configPath string) (*deploy.Manager, error) {
	if configPath == "" {
		configPath = settings.DefaultPath()
	}
	s, err := settings.Load(configPath)
	if err != nil {
		return nil, err
	}
	fs := filesystem.NewOS()
	m, err := mods.NewManager(fs, s.ModsDir())
	if err != nil {
		return nil, err
	}
	return deploy.NewManager(fs, s, m), nil
}

func newDeployCmd(configPath *string) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Apply the pending log to the deployed game directory",
		Long: `Deploy executes everything the pending log says the output directory is
owed, using the configured method (copy, hardlink, or symlink), then
clears the log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.deploy")
			mgr, err := openManager(*configPath)
			if err != nil {
				return err
			}
			if reset {
				if err := mgr.ResetPending(); err != nil {
					return err
				}
			}
			owed := mgr.PendingLen()
			if err := mgr.Deploy(); err != nil {
				return err
			}
			logger.Info().Int("files", owed).Msg("deployed")
			fmt.Fprintf(cmd.OutOrStdout(), "Deployed %d file(s)\n", owed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Recompute the pending log from the staging tree before deploying")
	return cmd
}

func newApplyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Fold the enabled mods' manifests into the pending log",
		Long: `Apply takes the union of every enabled mod's manifest, queues its files
as pending copies, and cleans up orphans no enabled mod still claims.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *configPath == "" {
				*configPath = settings.DefaultPath()
			}
			s, err := settings.Load(*configPath)
			if err != nil {
				return err
			}
			fs := filesystem.NewOS()
			registry, err := mods.NewManager(fs, s.ModsDir())
			if err != nil {
				return err
			}
			mgr := deploy.NewManager(fs, s, registry)
			if err := mgr.Apply(registry.TotalManifest()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) now pending\n", mgr.PendingLen())
			return nil
		},
	}
}

func newPendingCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show what the deployed directory is owed",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(*configPath)
			if err != nil {
				return err
			}
			if !mgr.Pending() {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing pending")
				return nil
			}
			report := mgr.Report()
			out := cmd.OutOrStdout()
			for _, group := range []struct {
				label string
				paths []string
			}{
				{"Content copies", report.ContentCopies},
				{"DLC copies", report.AocCopies},
				{"Content deletes", report.ContentDeletes},
				{"DLC deletes", report.AocDeletes},
			} {
				if len(group.paths) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s:\n", group.label)
				for _, p := range group.paths {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}
			return nil
		},
	}
}

func newResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Recompute the pending log from the staging tree",
		Long: `Reset throws away the checkpointed pending log and rebuilds it by
comparing the merged staging tree against the deployed directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(*configPath)
			if err != nil {
				return err
			}
			if err := mgr.ResetPending(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) now pending\n", mgr.PendingLen())
			return nil
		},
	}
}
