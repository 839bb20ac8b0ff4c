package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateFlags genFlags

var validateCmd = &cobra.Command{
	Use:   "validate <schema-file>",
	Short: "Check a schema without generating data",
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
		cfg, err := validateFlags.exportConfig(cmd, a.cfg)
		if err != nil {
			return err
		}

		res := a.engine.Check(s, cfg, cfg.RowCount)

		ids := make([]string, 0, len(res.Issues))
		for id := range res.Issues {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		names := make(map[string]string, len(s))
		for _, f := range s {
			names[f.ID] = f.Name
		}
		for _, id := range ids {
			label := names[id]
			if label == "" {
				label = id
			}
			for _, msg := range res.Issues[id] {
				color.Yellow("⚠️  %s: %s", label, msg)
			}
		}

		if res.Err != nil {
			printError(res.Err)
			return fmt.Errorf("schema is not valid")
		}
		color.Green("✅ Schema is valid (%d fields)", len(s))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateFlags.register(validateCmd, false)
}
