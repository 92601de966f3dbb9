package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/soyeahso/meshbuilder/internal/session"
	"github.com/spf13/cobra"
)

func newMeshCmd() *cobra.Command {
	var (
		seed       bool
		connect    []string
		priorities string
		out        string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mesh <company>",
		Short: "Build a mesh headlessly and write the analysis report",
		Long: "Discovers the company's platforms, confirms all of them, seeds the opening agents, " +
			"requests any --connect combinations, and writes the Markdown report.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			ctrl := session.NewController(a.svc, session.Options{
				AutoSeed:         seed,
				MessagesPerAgent: a.cfg.Mesh.MessagesPerAgent,
				Hooks:            a.hooks,
			}, log)
			defer ctrl.Close()

			if err := ctrl.Search(ctx, strings.Join(args, " ")); err != nil {
				return err
			}
			if priorities != "" {
				ctrl.Dispatch(session.SetPriorities{Text: priorities})
			}
			if err := ctrl.Confirm(ctx); err != nil {
				return err
			}
			// Seeds run first so that explicit combinations are not
			// regenerated by the seeding pass.
			ctrl.Wait()

			for _, combo := range connect {
				names := strings.Split(combo, "+")
				if _, err := ctrl.RequestAgent(ctx, names, session.RequestOptions{}); err != nil {
					return fmt.Errorf("--connect %q: %w", combo, err)
				}
			}
			ctrl.Wait()

			v := ctrl.Snapshot()
			renderMesh(cmd.OutOrStdout(), v)

			path := out
			if path == "" {
				if err := paths.EnsureDirs(); err != nil {
					return err
				}
				path = paths.Report(session.ReportFileName(v.State.Company))
			}
			if err := os.WriteFile(path, []byte(session.Report(v.State, v.Metrics)), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "generate balanced opening agents after confirming")
	cmd.Flags().StringArrayVar(&connect, "connect", nil, `extra combination to generate, e.g. "SAP+Salesforce" (repeatable)`)
	cmd.Flags().StringVar(&priorities, "priorities", "", "override the discovered priority statement")
	cmd.Flags().StringVarP(&out, "out", "o", "", "report path (default ~/.meshbuilder/reports/<company>.md)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "give up on outstanding generations after this long")
	return cmd
}

func renderMesh(w io.Writer, v session.View) {
	s := v.State
	fmt.Fprintf(w, "%s\n\n", session.ReportTitle(s.Company))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Agent", "Connects", "ROI", "Kind"})
	for _, a := range s.ResolvedAgents() {
		kind := "generated"
		if a.Vendor {
			kind = "vendor"
		}
		tw.AppendRow(table.Row{a.AgentName, strings.Join(a.Solutions, " + "), a.ROIEstimate, kind})
	}
	tw.Render()

	if s.Error != "" {
		fmt.Fprintf(w, "Last error: %s\n", s.Error)
	}

	m := v.Metrics
	fmt.Fprintf(w, "\nAgents: %d  Platforms: %d  Events/year: %s  Mesh score: %d\n",
		m.TotalAgents, m.UniquePlatforms, m.FormattedMessages, m.MeshScore)
	if len(m.ValueLevers) > 0 {
		fmt.Fprintf(w, "Value levers: %s\n", strings.Join(m.ValueLevers, ", "))
	}
}
