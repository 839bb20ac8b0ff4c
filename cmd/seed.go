package cmd

import (
	"fmt"

	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/seeder"
	"github.com/fatih/color"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
	"github.com/spf13/cobra"
)

var (
	seedFlags    genFlags
	seedTable    string
	seedBatch    int
	seedTruncate bool
	seedCreate   bool
	seedNoTx     bool
)

var seedCmd = &cobra.Command{
	Use:   "seed <schema-file>",
	Short: "Generate a dataset and insert it into a database table",
	Long: `Generate rows for a schema and insert them into a table of the database
named by the configured url_env. Rows are written in batches inside a
single transaction unless --no-tx is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		name, s, err := readSchema(args[0])
		if err != nil {
			return err
		}
		cfg, err := seedFlags.exportConfig(cmd, a.cfg)
		if err != nil {
			return err
		}

		table := seedTable
		if table == "" {
			base := name
			if base == "" {
				base = a.cfg.DatasetName
			}
			table = inflection.Plural(strcase.ToSnake(base))
		}

		res, err := a.engine.Generate(cmd.Context(), s, cfg)
		if err != nil {
			printError(err)
			return fmt.Errorf("generation failed")
		}
		printWarnings(res.Metadata)

		dbURL, err := a.cfg.GetDatabaseURL()
		if err != nil {
			return err
		}
		db, err := database.Open(cmd.Context(), a.cfg.Database.Provider, dbURL)
		if err != nil {
			return err
		}
		defer db.Close()

		color.Cyan("🌱 Seeding %d rows into %s", res.Dataset.Len(), table)
		sink := seeder.NewSeeder(db, a.cfg.Database.Provider, a.logger)
		out, err := sink.Seed(cmd.Context(), res.Dataset, seeder.SinkConfig{
			Table:         table,
			Batch:         seedBatch,
			Truncate:      seedTruncate,
			CreateTable:   seedCreate,
			NoTransaction: seedNoTx,
		})
		if err != nil {
			return err
		}

		if out.Created {
			color.Green("✅ Created table %s", out.Table)
		}
		if out.Truncated {
			color.Yellow("🧹 Truncated %s", out.Table)
		}
		color.Green("✅ Inserted %d rows in %d batches", out.Rows, out.Batches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedFlags.register(seedCmd, false)
	seedCmd.Flags().StringVar(&seedTable, "table", "", "Target table (default: plural snake_case of the schema name)")
	seedCmd.Flags().IntVar(&seedBatch, "batch", 500, "Rows per INSERT statement")
	seedCmd.Flags().BoolVar(&seedTruncate, "truncate", false, "Delete existing rows first")
	seedCmd.Flags().BoolVar(&seedCreate, "create", false, "Create the table if it does not exist")
	seedCmd.Flags().BoolVar(&seedNoTx, "no-tx", false, "Do not wrap the inserts in a transaction")
}
