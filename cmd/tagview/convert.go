package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alevsk/tagview/internal/converter"
)

var convertCmd = &cobra.Command{
	Use:   "convert [text|-]",
	Short: "Convert bracket emphasis into explicit prompt weights",
	Long: `Convert a prompt written with {emphasis} and [de-emphasis] brackets into the
explicit (token:weight) syntax. The prompt is read from stdin when it is "-" or omitted.

Examples:
  tagview convert "1girl, {{smile}}, [hat]"
  echo "{masterpiece}" | tagview convert`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 0 || args[0] == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = strings.TrimRight(string(b), "\r\n")
		} else {
			text = args[0]
		}

		fmt.Fprintln(cmd.OutOrStdout(), converter.Convert(text))
		return nil
	},
}
