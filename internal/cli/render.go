package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw a timeline as a text chart",
	Long: `Load an interchange JSON document and draw it as a text chart ordered
by valid time, with anomaly markers unless highlighting is disabled.`,
	Example: `  tritime render --input example_timeline.json
  tritime render --input events.json --no-highlight --output chart.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		noHighlight, _ := cmd.Flags().GetBool("no-highlight")

		t, err := codec.LoadFile(input)
		if err != nil {
			return err
		}

		var report *anomaly.Report
		if !noHighlight {
			report, err = newClassifier().Classify(cmd.Context(), t)
			if err != nil {
				return err
			}
		}

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		r := render.NewRenderer(w, render.WithHighlighting(!noHighlight))
		if err := r.Render(t, report); err != nil {
			return err
		}

		if start, end, serr := t.TimeSpan(); serr == nil {
			fmt.Fprintf(w, "\nSpan: %s\n", render.Span(start, end))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("input", "i", "", "Input timeline document (JSON)")
	renderCmd.Flags().StringP("output", "o", "", "Write the chart to a file instead of stdout")
	renderCmd.Flags().Bool("no-highlight", false, "Disable anomaly highlighting")
	_ = renderCmd.MarkFlagRequired("input")
}
