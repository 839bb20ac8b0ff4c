package cmd

import (
	"fmt"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/Rana718/seedforge/internal/database"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initProvider string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a seedforge config in the current directory",
	Long:  `Write ` + config.FileName + ` with default settings and create the export and schema directories.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !database.Supported(initProvider) {
			return fmt.Errorf("unsupported database provider: %s", initProvider)
		}
		if err := config.InitializeProject(initProvider); err != nil {
			return err
		}
		color.Green("✅ Created %s", config.FileName)
		color.Cyan("💡 Next: write a schema file and run `seedforge preview schema.yaml`")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initProvider, "db", "postgresql", "Database provider for the seed command (postgresql, mysql, sqlite)")
}
