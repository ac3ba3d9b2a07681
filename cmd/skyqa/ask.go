package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := a.questionContext(cmd.Context())
			defer cancel()

			question := strings.Join(args, " ")
			trace, err := a.service.Explain(ctx, question)
			if err != nil {
				return fmt.Errorf("failed to answer %q: %w", question, err)
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintf(out, "Objekt: %s\n", trace.Object)
				fmt.Fprintf(out, "Kontext: %s\n", trace.Context)
				fmt.Fprintf(out, "Ergebnis: %s\n", trace.Outcome)
				fmt.Fprintf(out, "Score: %.2f\n", trace.Answer.Score)
			}
			fmt.Fprintln(out, "Antwort:", trace.Answer.Text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the resolved object and context")
	return cmd
}
