package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/Rana718/seedforge/internal/engine"
	"github.com/Rana718/seedforge/internal/logger"
	"github.com/Rana718/seedforge/internal/metrics"
	"github.com/Rana718/seedforge/internal/overlay"
	"github.com/Rana718/seedforge/internal/schema"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// app bundles what most commands need after config has been read.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	engine  *engine.Engine
}

func loadApp(withMetrics bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var m *metrics.Metrics
	if withMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.NewWithRegistry(reg, log)
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(m),
		engine.WithPreviewRows(cfg.PreviewRows),
		engine.WithMaxRows(cfg.MaxRows),
		engine.WithOverlayTimeout(cfg.Overlay.Timeout),
	}
	if cfg.OverlayEnabled() {
		client := overlay.NewHTTPClient(cfg.Overlay.URL, cfg.OverlayAPIKey(), cfg.Overlay.Timeout, log, m)
		opts = append(opts, engine.WithOverlay(client))
	}

	return &app{cfg: cfg, logger: log, metrics: m, engine: engine.New(opts...)}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// schemaDocument is the on-disk form of a schema: either this document or
// a bare list of fields.
type schemaDocument struct {
	Name   string       `yaml:"name"`
	Fields types.Schema `yaml:"fields"`
}

// readSchema loads a YAML or JSON schema file; "-" reads stdin. Missing
// field ids are filled in.
func readSchema(path string) (string, types.Schema, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	name, s, err := parseSchema(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return name, s, nil
}

func parseSchema(data []byte) (string, types.Schema, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", nil, err
	}
	if len(node.Content) == 0 {
		return "", types.Schema{}, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var fields types.Schema
		if err := root.Decode(&fields); err != nil {
			return "", nil, err
		}
		return "", schema.EnsureIDs(fields), nil
	case yaml.MappingNode:
		var doc schemaDocument
		if err := root.Decode(&doc); err != nil {
			return "", nil, err
		}
		return strings.TrimSpace(doc.Name), schema.EnsureIDs(doc.Fields), nil
	}
	return "", nil, fmt.Errorf("expected a list of fields or a document with fields")
}

// genFlags are the export settings shared by preview, export and seed.
type genFlags struct {
	rows     int
	format   string
	seed     string
	header   bool
	bom      bool
	crlf     bool
	prompt   string
	provider string
	model    string
	name     string
	table    string
}

func (f *genFlags) register(cmd *cobra.Command, withFormat bool) {
	flags := cmd.Flags()
	flags.IntVarP(&f.rows, "rows", "n", 100, "Number of rows to generate")
	flags.StringVar(&f.seed, "seed", "", "Seed for reproducible output")
	flags.StringVar(&f.prompt, "prompt", "", "Enhancement instruction for AI Generated fields")
	flags.StringVar(&f.provider, "provider", "", "Enhancement provider hint")
	flags.StringVar(&f.model, "model", "", "Enhancement model hint")
	if withFormat {
		flags.StringVarP(&f.format, "format", "F", "csv", "Export format (csv, json, sql, xlsx)")
		flags.BoolVar(&f.header, "header", true, "Include a CSV header line")
		flags.BoolVar(&f.bom, "bom", false, "Prefix CSV output with a byte order mark")
		flags.BoolVar(&f.crlf, "crlf", false, "Use Windows line endings in CSV output")
		flags.StringVar(&f.name, "name", "", "Dataset name used for the file name and sheet")
		flags.StringVar(&f.table, "table", "", "Table name for SQL statements")
	}
}

func (f *genFlags) exportConfig(cmd *cobra.Command, cfg *config.Config) (types.ExportConfig, error) {
	out := types.ExportConfig{
		RowCount:          f.rows,
		IncludeHeader:     f.header,
		IncludeBOM:        f.bom,
		LineEnding:        types.LineEndingLF,
		EnhancementPrompt: f.prompt,
		UseSeed:           cmd.Flags().Changed("seed"),
		Seed:              f.seed,
		Provider:          firstNonEmpty(f.provider, cfg.Overlay.Provider),
		Model:             firstNonEmpty(f.model, cfg.Overlay.Model),
		DatasetName:       firstNonEmpty(f.name, cfg.DatasetName),
		TableName:         f.table,
	}
	if f.crlf {
		out.LineEnding = types.LineEndingCRLF
	}
	if f.format != "" {
		format, ok := types.ParseFormat(f.format)
		if !ok {
			return out, fmt.Errorf("unsupported format %q (use csv, json, sql or xlsx)", f.format)
		}
		out.Format = format
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func printWarnings(meta types.GenerationMetadata) {
	warn := color.New(color.FgYellow)
	for _, w := range meta.Warnings {
		warn.Fprintf(os.Stderr, "⚠️  %s\n", w)
	}
}

// printError renders a generation failure with its kind and fields.
func printError(err error) {
	var ge *types.Error
	if errors.As(err, &ge) {
		color.New(color.FgRed).Fprintf(os.Stderr, "❌ %s (%s)\n", ge.Message, ge.Kind)
		for _, f := range ge.Fields {
			fmt.Fprintf(os.Stderr, "   - %s\n", f)
		}
		return
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "❌ %v\n", err)
}
