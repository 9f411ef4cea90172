package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lingo-build/lingo/pkg/pipeline"
)

// treeCommand creates the tree command for showing the dependency graph.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format   string
		detailed bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the resolved dependency graph",
		Long: `Tree resolves the dependencies of the current project and prints them as an
indented tree, or renders the graph as DOT, SVG, PNG or PDF.`,
		Example: `  lingo tree
  lingo tree --format svg -o deps.svg
  lingo tree --format dot --detailed | dot -Tpng > deps.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			p, err := c.openProject()
			if err != nil {
				return err
			}
			data, err := p.runner.Tree(cmd.Context(), p.cfg, format, detailed)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := c.Out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(c.Out, "Rendered dependency graph")
			printFile(c.Out, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.DefaultFormat, "output format: "+strings.Join(formats(), ", "))
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include depth, source and checksum in graph labels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func formats() []string {
	return []string{pipeline.FormatText, pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF}
}
