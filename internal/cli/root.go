package cli

import (
	"io"

	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths     config.Paths
	cfg       config.Config
	cfgErr    error
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meshbuilder",
		Short: "Build Your Solace Agent Mesh",
		Long: "meshbuilder discovers the enterprise platforms a company runs, lays them out as a mesh, " +
			"and drafts Solace agents that connect them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// A broken file still yields defaults; commands that need it check cfgErr.
			cfg, cfgErr = config.Load(paths.Config)

			lc := cfg.Logging
			if logLevel != "" {
				lc.Level = logLevel
			}
			log, logCloser, err = logging.NewFromConfig(lc)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.meshbuilder/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newMeshCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
