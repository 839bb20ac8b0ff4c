package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rana718/seedforge/internal/repository"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	schemaSaveName string
	schemaSaveID   string
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Manage saved schemas",
}

// withRepo opens the configured repository for the duration of fn.
func withRepo(ctx context.Context, fn func(repository.SchemaRepository) error) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	repo, closeRepo, err := repository.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	return fn(repo)
}

var schemasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd.Context(), func(repo repository.SchemaRepository) error {
			list, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				color.Yellow("No saved schemas")
				return nil
			}
			for _, s := range list {
				color.New(color.FgGreen).Printf("%s", s.ID)
				fmt.Printf("  %-24s %2d fields  updated %s\n", s.Name, len(s.Fields), s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var schemasShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved schema as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd.Context(), func(repo repository.SchemaRepository) error {
			s, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(schemaDocument{Name: s.Name, Fields: s.Fields})
		})
	},
}

var schemasSaveCmd = &cobra.Command{
	Use:   "save <schema-file>",
	Short: "Save a schema file to the configured storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, fields, err := readSchema(args[0])
		if err != nil {
			return err
		}
		if schemaSaveName != "" {
			name = schemaSaveName
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}

		return withRepo(cmd.Context(), func(repo repository.SchemaRepository) error {
			saved := &types.SavedSchema{ID: schemaSaveID, Name: name, Fields: fields}
			if err := repo.Save(cmd.Context(), saved); err != nil {
				return err
			}
			color.Green("✅ Saved %s as %s", saved.Name, saved.ID)
			return nil
		})
	},
}

var schemasDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd.Context(), func(repo repository.SchemaRepository) error {
			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			color.Green("🗑️  Deleted %s", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	schemasCmd.AddCommand(schemasListCmd, schemasShowCmd, schemasSaveCmd, schemasDeleteCmd)
	schemasSaveCmd.Flags().StringVar(&schemaSaveName, "name", "", "Schema name (default: name in the file, then the file name)")
	schemasSaveCmd.Flags().StringVar(&schemaSaveID, "id", "", "Replace the saved schema with this id")
}
