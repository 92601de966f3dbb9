package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/gateway"
	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		bind      string
		staticDir string
		noRestart bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and mesh session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if staticDir != "" {
				cfg.Server.StaticDir = staticDir
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if !cfg.Server.Production() && !noRestart {
				go autorestart.RestartOnChange()
				log.Debug().Msg("restarting on binary change")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !cfg.Providers.Perplexity.Configured() {
				log.Warn().Msg("PERPLEXITY_API_KEY is not set, discovery will fall back or fail")
			}
			log.Info().Strs("providers", a.registry.List()).Str("cache", cfg.Cache.Store).Msg("providers ready")

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := gateway.New(cfg, a.svc, log, gateway.WithHooks(a.hooks))
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (lan, loopback, custom)")
	cmd.Flags().StringVar(&staticDir, "static", "", "serve the built client from this directory")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "do not restart when the binary changes (development only)")

	return cmd
}
