package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/codec"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Verify a document survives encode/decode unchanged",
	Long: `Load an interchange JSON document, re-encode it, decode the result,
and verify the two timelines are equal under the interchange contract.
Optionally write the re-encoded document.`,
	Example: `  tritime roundtrip --input example_timeline.json
  tritime roundtrip --input events.json --output normalized.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")

		original, err := codec.LoadFile(input)
		if err != nil {
			return err
		}

		encoded, err := codec.Marshal(original)
		if err != nil {
			return err
		}
		decoded, err := codec.Unmarshal(encoded)
		if err != nil {
			return err
		}

		if !codec.Equal(original, decoded) {
			return fmt.Errorf("round trip mismatch for timeline %q", original.Name())
		}

		if output != "" {
			if err := codec.SaveFile(decoded, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "normalized document written to %s\n", output)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "round trip ok: timeline %q, %d points\n",
			original.Name(), original.PointCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roundtripCmd)

	roundtripCmd.Flags().StringP("input", "i", "", "Input timeline document (JSON)")
	roundtripCmd.Flags().StringP("output", "o", "", "Write the normalized document to a file")
	_ = roundtripCmd.MarkFlagRequired("input")
}
