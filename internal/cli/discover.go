package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/service"
	"github.com/spf13/cobra"
)

func newDiscoverCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "discover <company>",
		Short: "Discover the platforms, priorities and context of a company",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := a.svc.Discover(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), d)
			}
			renderDiscovery(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw discovery as JSON")
	return cmd
}

func renderDiscovery(w io.Writer, d *domain.Discovery) {
	fmt.Fprintf(w, "Company: %s\n\n", d.Company)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Platform", "Logo"})
	for i, s := range d.Solutions {
		logo := ""
		if s.LogoURL != nil {
			logo = *s.LogoURL
		}
		tw.AppendRow(table.Row{i + 1, s.Name, logo})
	}
	tw.Render()

	if service.IsFallback(d.Solutions) {
		fmt.Fprintln(w, "(showing the default platform list, the provider could not be reached)")
	}

	fmt.Fprintln(w, "\nPriorities:")
	switch {
	case d.Priorities.Error != "":
		fmt.Fprintf(w, "  unavailable: %s\n", d.Priorities.Error)
	case len(d.Priorities.Priorities) == 0:
		fmt.Fprintln(w, "  none found")
	}
	for _, p := range d.Priorities.Priorities {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	if d.Priorities.Summary != "" {
		fmt.Fprintf(w, "  %s\n", d.Priorities.Summary)
	}

	if d.Context.Error != "" {
		fmt.Fprintf(w, "\nContext unavailable: %s\n", d.Context.Error)
		return
	}
	if len(d.Context.SynergyInsights) > 0 {
		fmt.Fprintln(w, "\nSynergy insights:")
		for _, s := range d.Context.SynergyInsights {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(d.Context.IndustryComparisons) > 0 {
		fmt.Fprintln(w, "\nIndustry comparisons:")
		for _, s := range d.Context.IndustryComparisons {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(d.Context.PriorityHeatmap) > 0 {
		fmt.Fprintln(w)
		hm := table.NewWriter()
		hm.SetOutputMirror(w)
		hm.AppendHeader(table.Row{"Pair", "Value", "Rationale"})
		for _, e := range d.Context.PriorityHeatmap {
			hm.AppendRow(table.Row{e.Pair, e.Value, e.Rationale})
		}
		hm.Render()
	}
}
