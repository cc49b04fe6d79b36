package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/adapters/publish"
	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/domain/anomaly"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a timeline document",
	Long: `Load an interchange JSON document, run the anomaly classifier, and
print the report. Exits non-zero when the document is malformed.`,
	Example: `  tritime analyze --input example_timeline.json
  tritime analyze --input events.json --format json
  TRITIME_PUBLISH_ENABLED=true tritime analyze --input events.json --publish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")
		doPublish, _ := cmd.Flags().GetBool("publish")

		t, err := codec.LoadFile(input)
		if err != nil {
			return err
		}

		report, err := newClassifier().Classify(cmd.Context(), t)
		if err != nil {
			return err
		}

		if doPublish {
			pubCfg := publish.DefaultConfig()
			pubCfg.URL = cfg.NATSURL
			pub, err := publish.NewPublisher(pubCfg)
			if err != nil {
				return err
			}
			defer pub.Close()
			if err := pub.PublishAnalyzed(cmd.Context(), codec.ToDocument(t), report); err != nil {
				return err
			}
		}

		switch format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "text":
			printReport(cmd.OutOrStdout(), report)
			return nil
		default:
			return fmt.Errorf("unknown format %q: use text or json", format)
		}
	},
}

func printReport(w io.Writer, report *anomaly.Report) {
	fmt.Fprintf(w, "Timeline: %s\n", report.Timeline)
	fmt.Fprintf(w, "Detected %d anomalies\n", report.Total)
	if report.Total == 0 {
		return
	}

	fmt.Fprint(w, "By severity:")
	for _, sev := range []anomaly.Severity{anomaly.SeverityCritical, anomaly.SeverityHigh, anomaly.SeverityMedium, anomaly.SeverityLow} {
		if n := report.CountsBySeverity[sev]; n > 0 {
			fmt.Fprintf(w, " %s=%d", sev, n)
		}
	}
	fmt.Fprintln(w)

	for _, a := range report.Anomalies {
		fmt.Fprintf(w, "  %s: %s (severity: %s)\n",
			strings.ToUpper(string(a.Type)), a.Description, a.Severity)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("input", "i", "", "Input timeline document (JSON)")
	analyzeCmd.Flags().String("format", "text", "Output format: text, json")
	analyzeCmd.Flags().Bool("publish", false, "Forward the classified timeline to NATS")
	_ = analyzeCmd.MarkFlagRequired("input")
}
