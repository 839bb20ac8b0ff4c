package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var previewFlags genFlags

var previewCmd = &cobra.Command{
	Use:   "preview <schema-file>",
	Short: "Print a small sample of generated rows as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		_, s, err := readSchema(args[0])
		if err != nil {
			return err
		}
		cfg, err := previewFlags.exportConfig(cmd, a.cfg)
		if err != nil {
			return err
		}

		// --rows turns the preview into a full generation of that size.
		generate := a.engine.Preview
		if cmd.Flags().Changed("rows") {
			generate = a.engine.Generate
		}
		res, err := generate(cmd.Context(), s, cfg)
		if err != nil {
			printError(err)
			return fmt.Errorf("preview failed")
		}
		printWarnings(res.Metadata)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Dataset)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewFlags.register(previewCmd, false)
}
