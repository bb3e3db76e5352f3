package handlers

import (
	"strings"

	"insightcast/internal/core"
	"insightcast/internal/tui"

	"github.com/spf13/cobra"
)

// NewInsightsCmd creates the insights command
func NewInsightsCmd() *cobra.Command {
	var (
		asJSON bool
		browse bool
	)

	cmd := &cobra.Command{
		Use:   "insights <selection>",
		Short: "Generate contradictions, enhancements and connections for a selection",
		Long: `Retrieve the deep context for a selection and ask Gemini, once per category,
for passages that contradict, enhance or connect to it. Each category holds at
most five sections; a category whose generation fails is returned empty.

Examples:
  insightcast insights "batch normalization stabilizes training"
  insightcast insights --json "batch normalization stabilizes training"
  insightcast insights --browse "batch normalization stabilizes training"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			selection := strings.Join(args, " ")
			set := a.insights.GenerateInsights(cmd.Context(), selection)

			out := cmd.OutOrStdout()
			if browse {
				return tui.Browse(selection, set)
			}
			if asJSON {
				return printJSON(out, set)
			}
			for _, c := range core.Categories() {
				renderSections(out, strings.ToUpper(string(c[:1]))+string(c[1:]), set.Get(c))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of formatted text")
	cmd.Flags().BoolVar(&browse, "browse", false, "Open the results in an interactive browser")

	return cmd
}
