package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"insightcast/internal/indexing"
	"insightcast/internal/logger"

	"github.com/spf13/cobra"
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "index <sections.json>...",
		Short: "Embed parsed document sections into the vector store",
		Long: `Index the JSON output of the document parser. Each file holds a list of
sections with document_name, page_number, section_title, full_path, content
and bounding_box. Re-indexing a document replaces its previous entries.

The document name defaults to the first section's document_name, or the file
name without its .json extension.

Examples:
  insightcast index parsed/attention.json
  insightcast index --source attention.pdf parsed/attention.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if source != "" && len(args) > 1 {
				return fmt.Errorf("--source can only be used with a single file")
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				sections, err := indexing.LoadParsedSections(path)
				if err != nil {
					logger.Error("Failed to load sections", err, "path", path)
					failed++
					continue
				}

				name := source
				if name == "" {
					name = sourceName(path, sections)
				}

				n, err := a.indexer.IndexDocument(cmd.Context(), name, sections)
				if err != nil {
					logger.Error("Failed to index document", err, "document", name)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s %s %s\n", titleStyle.Render("✓"), name, labelStyle.Render(fmt.Sprintf("(%d sections)", n)))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed to index", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Document name to index under")

	return cmd
}

func sourceName(path string, sections []indexing.ParsedSection) string {
	if len(sections) > 0 && sections[0].DocumentName != "" {
		return sections[0].DocumentName
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document_name>",
		Short: "Remove every indexed section of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("could not delete %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+args[0])
			return nil
		},
	}
}
