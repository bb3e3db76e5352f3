package handlers

import (
	"fmt"
	"strings"

	"insightcast/internal/core"

	"github.com/spf13/cobra"
)

// NewPodcastCmd creates the podcast command
func NewPodcastCmd() *cobra.Command {
	var (
		persona string
		audio   bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "podcast <selection>",
		Short: "Write persona podcast scripts for a selection",
		Long: `Retrieve the deep context for a selection and write a Host/Analyst podcast
script for every persona, or for one persona with --persona.

Personas:
  debater       opposing viewpoints and nuance
  investigator  evidence and assumptions
  fundamentals  builds from basic concepts up to the selection
  connections   analogies across domains

--audio renders the script with the configured TTS provider and prints the
path of the mp3 file. It requires --persona.

Examples:
  insightcast podcast "sparse attention"
  insightcast podcast --persona debater --audio "sparse attention"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p core.Persona
			if persona != "" {
				parsed, err := core.ParsePersona(persona)
				if err != nil {
					return err
				}
				p = parsed
			} else if audio {
				return fmt.Errorf("--audio requires --persona")
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			selection := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if p == "" {
				set := a.podcasts.GeneratePersonaPodcasts(cmd.Context(), selection)
				if asJSON {
					return printJSON(out, set)
				}
				for _, each := range core.Personas() {
					renderConversation(out, each, set[each])
				}
				return nil
			}

			conv := a.podcasts.GeneratePersonaPodcast(cmd.Context(), selection, p)
			var audioPath string
			if audio {
				audioPath, err = a.synthesizer().Synthesize(cmd.Context(), conv)
				if err != nil {
					return fmt.Errorf("podcast generation failed: %w", err)
				}
			}

			if asJSON {
				result := map[string]any{string(p): conv}
				if audioPath != "" {
					result["audio_path"] = audioPath
				}
				return printJSON(out, result)
			}
			renderConversation(out, p, conv)
			if audioPath != "" {
				fmt.Fprintln(out, labelStyle.Render("Audio written to "+audioPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&persona, "persona", "", "Generate a single persona (debater, investigator, fundamentals, connections)")
	cmd.Flags().BoolVar(&audio, "audio", false, "Render the script to an mp3 file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of formatted text")

	return cmd
}
