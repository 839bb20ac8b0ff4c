package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
	Version  = "0.4.0"
)

func showBanner() {
	green := color.New(color.FgGreen, color.Bold)
	for _, line := range []string{
		"╔══════════════════════════════════════════╗",
		"║   seedforge · test data, on demand       ║",
		"╚══════════════════════════════════════════╝",
	} {
		green.Println(line)
	}
	color.New(color.FgCyan, color.Bold).Print("  Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "seedforge",
	Short: "Generate realistic test datasets from a field schema",
	Long: `
seedforge turns an ordered list of typed fields into synthetic rows and
exports them as CSV, JSON, SQL INSERT statements or an Excel workbook.

Features:
- Dozens of field types backed by realistic value providers
- Deterministic output from a seed
- Reference fields that reuse values from other columns
- Optional AI enhancement for free-text columns
- Direct seeding into PostgreSQL, MySQL or SQLite`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("seedforge version %s\n", Version)
			os.Exit(0)
		}
		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("seedforge.config")
	}

	viper.SetEnvPrefix("SEEDFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			color.Yellow("⚠️  could not read config: %v", err)
		}
	}
}
