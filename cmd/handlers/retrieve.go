package handlers

import (
	"fmt"
	"strings"

	"insightcast/internal/core"

	"github.com/spf13/cobra"
)

// NewRetrieveCmd creates the retrieve command
func NewRetrieveCmd() *cobra.Command {
	var (
		deep   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve <selection>",
		Short: "Find indexed passages related to a selection",
		Long: `Embed the selection, search the vector store and print the related passages.

The default fast path reranks the candidate pool and keeps the best matches.
--deep returns the larger pool in vector order, the same context the insight
and podcast commands send to Gemini.

Examples:
  insightcast retrieve "transformer attention scales quadratically"
  insightcast retrieve --deep --json "gradient clipping"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			selection := strings.Join(args, " ")
			var sections []core.Section
			title := "Related sections"
			if deep {
				sections = a.retrieval.Deep(cmd.Context(), selection)
				title = "Deep context"
			} else {
				sections = a.retrieval.Fast(cmd.Context(), selection)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]any{"retrieved_sections": sections})
			}
			renderSections(out, title, sections)
			fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("%d section(s)", len(sections))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&deep, "deep", false, "Return the deep context pool without reranking")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of formatted text")

	return cmd
}
