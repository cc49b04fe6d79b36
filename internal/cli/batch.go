package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify every timeline document in a directory",
	Long: `Walk a directory of interchange JSON documents, classify each on a
bounded worker pool, and print a per-file summary. Individual file
failures are reported but do not abort the run.`,
	Example: `  tritime batch --dir ./timelines
  tritime batch --dir ./timelines --workers 8 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		workers, _ := cmd.Flags().GetInt("workers")
		format, _ := cmd.Flags().GetString("format")

		if workers <= 0 {
			workers = cfg.Workers
		}

		runner := batch.NewRunner(newClassifier(), batch.WithWorkers(workers))
		summary, err := runner.Run(cmd.Context(), dir)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		case "text":
			w := cmd.OutOrStdout()
			for _, res := range summary.Results {
				if res.Err != nil {
					fmt.Fprintf(w, "FAIL %s: %v\n", res.Path, res.Err)
					continue
				}
				fmt.Fprintf(w, "ok   %s: timeline %q, %d anomalies\n",
					res.Path, res.Timeline, res.Report.Total)
			}
			fmt.Fprintf(w, "%d files, %d failed, %d anomalies in %s\n",
				summary.Files, summary.Failed, summary.TotalAnomalies, summary.Elapsed.Round(time.Millisecond))
			return nil
		default:
			return fmt.Errorf("unknown format %q: use text or json", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("dir", "d", "", "Directory of timeline documents")
	batchCmd.Flags().Int("workers", 0, "Worker pool size (defaults to config)")
	batchCmd.Flags().String("format", "text", "Output format: text, json")
	_ = batchCmd.MarkFlagRequired("dir")
}
