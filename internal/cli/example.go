package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/codec"
	"github.com/lextri/tritime/internal/seeder"
)

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Generate an example timeline",
	Long: `Generate a timeline of well-behaved points followed by one seeded
anomaly of each kind, and write it as an interchange JSON document.`,
	Example: `  tritime example --output example_timeline.json
  tritime example --points 10 --name "Checkout Events" --output checkout.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		name, _ := cmd.Flags().GetString("name")
		points, _ := cmd.Flags().GetInt("points")
		seed, _ := cmd.Flags().GetInt64("seed")

		gen := seeder.NewGenerator(
			seeder.WithNormalPoints(points),
			seeder.WithSeed(seed),
		)
		t, err := gen.ExampleTimeline(name)
		if err != nil {
			return err
		}
		if err := codec.SaveFile(t, output); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "timeline %q with %d points written to %s\n",
			t.Name(), t.PointCount(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)

	exampleCmd.Flags().StringP("output", "o", "example_timeline.json", "Output file path")
	exampleCmd.Flags().String("name", "Example Timeline", "Timeline display name")
	exampleCmd.Flags().Int("points", 5, "Number of well-behaved points before the seeded anomalies")
	exampleCmd.Flags().Int64("seed", 0, "Seed for generated payload attributes")
}
