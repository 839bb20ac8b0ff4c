package cmd

import (
	"fmt"
	"strings"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var typesCategory string

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the available field types and their options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category := ""
		for _, def := range registry.Default().Types() {
			if typesCategory != "" && !strings.EqualFold(def.Category, typesCategory) {
				continue
			}
			if def.Category != category {
				category = def.Category
				fmt.Println()
				color.New(color.FgCyan, color.Bold).Println(category)
			}
			color.New(color.FgGreen).Printf("  %-20s", def.Name)
			fmt.Printf(" %s\n", def.Description)
			for _, opt := range def.Options {
				fmt.Printf("  %-20s   %s=%v (%s)\n", "", opt.Name, opt.Default, opt.Kind)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	typesCmd.Flags().StringVar(&typesCategory, "category", "", "Only show types in this category")
}
