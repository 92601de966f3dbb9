package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soyeahso/meshbuilder/internal/service"
	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	var (
		priorities string
		company    string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "agent <solution> <solution> [solution]",
		Short: "Draft an agent concept connecting two or three platforms",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			concept, err := a.svc.GenerateAgent(ctx, service.AgentRequest{
				Solutions:  args,
				Priorities: priorities,
				Company:    company,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), concept)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", concept.AgentName)
			fmt.Fprintf(w, "  Connects: %s\n", strings.Join(concept.Solutions, " + "))
			fmt.Fprintf(w, "  ROI:      %s\n\n", concept.ROIEstimate)
			fmt.Fprintf(w, "%s\n\n", concept.Description)
			if concept.Context != "" {
				fmt.Fprintf(w, "Context:\n%s\n\n", concept.Context)
			}
			fmt.Fprintf(w, "Prompt:\n%s\n", concept.DraftPrompt)
			return nil
		},
	}

	cmd.Flags().StringVar(&priorities, "priorities", "", "customer priorities to steer the concept")
	cmd.Flags().StringVar(&company, "company", "", "company the concept is recorded under")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the concept as JSON")
	return cmd
}
