package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show meshbuilder status and configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n\n", version.Info())

			fmt.Fprintf(w, "Config:  %s", paths.Config)
			if _, err := os.Stat(paths.Config); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprint(w, " (not found, using defaults)")
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Data:    %s\n", paths.Data)
			fmt.Fprintf(w, "Reports: %s\n\n", paths.Reports)

			if cfgErr != nil {
				fmt.Fprintf(w, "Config error: %v\n", cfgErr)
				return nil
			}

			fmt.Fprintf(w, "Server:  %s env=%s static=%s\n",
				resolveListen(cfg.Server), cfg.Server.Env, cfg.Server.StaticDir)
			fmt.Fprintf(w, "Cache:   store=%s ttl=%dm\n", cfg.Cache.Store, cfg.Cache.TTLMinutes)
			fmt.Fprintf(w, "Mesh:    autoSeed=%v seedDelay=%dms\n\n", cfg.Mesh.AutoSeedEnabled(), cfg.Mesh.SeedDelayMs)

			tw := table.NewWriter()
			tw.SetOutputMirror(w)
			tw.AppendHeader(table.Row{"Provider", "Model", "Endpoint", "Key"})
			for _, p := range []struct {
				name string
				cfg  config.ProviderConfig
			}{
				{"Perplexity", cfg.Providers.Perplexity},
				{"OpenAI", cfg.Providers.OpenAI},
			} {
				key := "missing"
				if p.cfg.Configured() {
					key = "set"
				}
				tw.AppendRow(table.Row{p.name, p.cfg.Model, p.cfg.BaseURL, key})
			}
			tw.Render()

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(w, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(w, "  - %s\n", issue)
				}
			}
			return nil
		},
	}
}

func resolveListen(s config.ServerConfig) string {
	return fmt.Sprintf("%s:%d", s.ListenHost(), s.Port)
}
