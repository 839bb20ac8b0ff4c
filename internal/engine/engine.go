package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/export"
	"github.com/Rana718/seedforge/internal/metrics"
	"github.com/Rana718/seedforge/internal/overlay"
	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/schema"
	"github.com/Rana718/seedforge/internal/seeder"
	"github.com/Rana718/seedforge/internal/types"
	"go.uber.org/zap"
)

// Stage names, in execution order.
const (
	StageValidating = "validating"
	StageBaseline   = "generating-baseline"
	StageReferences = "resolving-references"
	StageOverlay    = "applying-overlay"
	StageMetadata   = "assembling-metadata"
	StageEncoding   = "encoding"
)

// Engine runs generation requests. It holds configuration only; every call
// works on its own rows, so one Engine can serve concurrent requests.
type Engine struct {
	registry       *registry.Registry
	overlay        overlay.Overlay
	logger         *zap.Logger
	metrics        *metrics.Metrics
	previewRows    int
	maxRows        int
	now            func() time.Time
	overlayTimeout time.Duration
}

// Result is a generated dataset plus what happened while producing it.
type Result struct {
	Dataset  types.Dataset            `json:"data"`
	Metadata types.GenerationMetadata `json:"metadata"`
}

// ExportResult adds the encoded artifact to a Result.
type ExportResult struct {
	Result
	Artifact *export.Artifact `json:"-"`
}

func New(opts ...Option) *Engine {
	e := &Engine{
		registry:    registry.Default(),
		logger:      zap.NewNop(),
		previewRows: DefaultPreviewRows,
		maxRows:     DefaultMaxRows,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) MaxRows() int     { return e.maxRows }
func (e *Engine) PreviewRows() int { return e.previewRows }

// HasOverlay reports whether an enhancement capability is installed.
func (e *Engine) HasOverlay() bool { return e.overlay != nil }

// Preview generates PreviewRows rows and never encodes. Zero rows is a
// valid preview.
func (e *Engine) Preview(ctx context.Context, s types.Schema, cfg types.ExportConfig) (*Result, error) {
	res, err := e.run(ctx, "preview", s, cfg, e.previewRows, false)
	e.metrics.RecordGeneration("preview", rowsOf(res), warningsOf(res), err)
	return res, err
}

// Generate produces cfg.RowCount rows without encoding them.
func (e *Engine) Generate(ctx context.Context, s types.Schema, cfg types.ExportConfig) (*Result, error) {
	res, err := e.run(ctx, "generate", s, cfg, cfg.RowCount, true)
	e.metrics.RecordGeneration("generate", rowsOf(res), warningsOf(res), err)
	return res, err
}

// Export generates cfg.RowCount rows and runs exactly one encoder.
func (e *Engine) Export(ctx context.Context, s types.Schema, cfg types.ExportConfig) (*ExportResult, error) {
	out, err := e.export(ctx, s, cfg)
	var res *Result
	if out != nil {
		res = &out.Result
	}
	e.metrics.RecordGeneration("export", rowsOf(res), warningsOf(res), err)
	return out, err
}

func (e *Engine) export(ctx context.Context, s types.Schema, cfg types.ExportConfig) (*ExportResult, error) {
	if !export.Supported(cfg.Format) {
		return nil, types.NewError(types.KindUnsupportedFormat, fmt.Sprintf("unsupported export format %q", cfg.Format))
	}
	res, err := e.run(ctx, "export", s, cfg, cfg.RowCount, true)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	artifact, err := export.Encode(cfg.Format, res.Dataset, export.OptionsFrom(cfg, e.now()))
	res.Metadata.Timings.Encoding = time.Since(start)
	res.Metadata.Timings.Total += res.Metadata.Timings.Encoding
	e.metrics.RecordStage(StageEncoding, res.Metadata.Timings.Encoding)
	if err != nil {
		e.logger.Error("encoding failed", zap.String("format", string(cfg.Format)), zap.Error(err))
		return nil, err
	}
	e.metrics.RecordExport(string(cfg.Format), len(artifact.Data))
	e.logger.Info("dataset exported",
		zap.String("artifact", artifact.Name),
		zap.Int("bytes", len(artifact.Data)),
		zap.Int("rows", res.Dataset.Len()))
	return &ExportResult{Result: *res, Artifact: artifact}, nil
}

// CheckResult is the outcome of Check. Err is the gate failure, if any;
// Issues are advisory and never block generation.
type CheckResult struct {
	Err    error
	Issues map[string][]string
}

// Check runs validation without generating anything. A rowCount of zero
// skips the row count gate, as a preview would.
func (e *Engine) Check(s types.Schema, cfg types.ExportConfig, rowCount int) CheckResult {
	return CheckResult{
		Err:    e.validate(s, cfg, rowCount, rowCount != 0),
		Issues: schema.FieldIssuesWith(e.registry, s, e.now()),
	}
}

func (e *Engine) validate(s types.Schema, cfg types.ExportConfig, n int, checkCount bool) error {
	if err := schema.ValidateWith(e.registry, s); err != nil {
		return err
	}
	if err := schema.ValidateExportConfig(cfg, schema.HasAIFields(s)); err != nil {
		return err
	}
	if checkCount || n < 0 || n > e.maxRows {
		if err := schema.ValidateRowCount(n, e.maxRows); err != nil {
			return err
		}
	}
	if _, err := seeder.ReferenceOrder(s); err != nil {
		return err
	}
	return nil
}

func (e *Engine) run(ctx context.Context, op string, s types.Schema, cfg types.ExportConfig, n int, checkCount bool) (*Result, error) {
	started := time.Now()
	now := e.now()
	meta := types.GenerationMetadata{Warnings: []string{}}
	log := e.logger.With(zap.String("operation", op), zap.Int("rows", n))

	stage := time.Now()
	if err := e.validate(s, cfg, n, checkCount); err != nil {
		log.Debug("request rejected", zap.Error(err))
		return nil, err
	}
	meta.Timings.Validation = e.lap(StageValidating, &stage)

	seed, seeded := cfg.SeedValue(), cfg.UseSeed
	rows, err := seeder.GenerateRows(ctx, s, n, seed, seeded, now)
	if err != nil {
		return nil, err
	}
	meta.Timings.Baseline = e.lap(StageBaseline, &stage)

	deferred := seeder.AIDependentReferences(s)
	warnings, err := seeder.ResolveReferencesWhere(s, rows, seed, seeded, func(f types.FieldDefinition) bool {
		return !deferred[f.Name]
	})
	if err != nil {
		return nil, err
	}
	meta.Warnings = append(meta.Warnings, warnings...)
	meta.Timings.References = e.lap(StageReferences, &stage)

	applied, overlayDeterministic, err := e.applyOverlay(ctx, s, cfg, rows, &meta)
	if err != nil {
		log.Warn("overlay failed", zap.Error(err))
		return nil, err
	}
	meta.Timings.Overlay = e.lap(StageOverlay, &stage)

	if len(deferred) > 0 {
		warnings, err := seeder.ResolveReferencesWhere(s, rows, seed, seeded, func(f types.FieldDefinition) bool {
			return deferred[f.Name]
		})
		if err != nil {
			return nil, err
		}
		meta.Warnings = append(meta.Warnings, warnings...)
		if !applied && len(rows) > 0 {
			for _, f := range s {
				if deferred[f.Name] {
					meta.Warn(fmt.Sprintf("reference field %q copies AI Generated values that were not produced; values left empty", f.Name))
				}
			}
		}
		meta.Timings.References += e.lap(StageReferences, &stage)
	}

	meta.Deterministic = seeded && (!applied || overlayDeterministic)
	if seeded && applied && !overlayDeterministic {
		meta.Warn("AI-generated values are not reproducible with the seed")
	}
	ds := types.Dataset{Fields: fieldNames(s), Rows: rows}
	e.lap(StageMetadata, &stage)
	meta.Timings.Total = time.Since(started)

	log.Info("dataset generated",
		zap.Bool("deterministic", meta.Deterministic),
		zap.Int("warnings", len(meta.Warnings)),
		zap.Duration("took", meta.Timings.Total))
	return &Result{Dataset: ds, Metadata: meta}, nil
}

// applyOverlay calls the enhancement capability when the schema has AI
// fields. It reports whether collaborator values were merged and whether
// the collaborator vouched for their determinism.
func (e *Engine) applyOverlay(ctx context.Context, s types.Schema, cfg types.ExportConfig, rows []types.GeneratedRow, meta *types.GenerationMetadata) (bool, bool, error) {
	aiFields := schema.AIFields(s)
	if len(aiFields) == 0 {
		if cfg.ApplyAIEnhancement() {
			meta.Warn("enhancement instruction ignored: schema has no AI Generated fields")
		}
		return false, false, nil
	}
	if len(rows) == 0 {
		return false, false, nil
	}

	allAI := len(aiFields) == len(s)
	fail := func(cause error) (bool, bool, error) {
		if allAI {
			return false, false, types.WrapError(types.KindOverlayFailed, types.ErrOverlayFailed.Message, cause)
		}
		meta.Warn(fmt.Sprintf("AI enhancement unavailable (%v); AI fields left empty: %s", cause, strings.Join(aiFields, ", ")))
		return false, false, nil
	}

	if e.overlay == nil {
		return fail(errors.New("no enhancement provider configured"))
	}

	callCtx := ctx
	if e.overlayTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.overlayTimeout)
		defer cancel()
	}

	resp, err := e.overlay.Enhance(callCtx, e.request(s, cfg, aiFields, rows))
	if err != nil {
		if ctx.Err() != nil {
			return false, false, ctx.Err()
		}
		return fail(err)
	}
	if resp == nil || len(resp.Rows) == 0 {
		return fail(errors.New("enhancement returned no rows"))
	}

	for _, w := range overlay.Merge(rows, aiFields, resp) {
		meta.Warn(w)
	}
	return true, resp.Deterministic, nil
}

func (e *Engine) request(s types.Schema, cfg types.ExportConfig, aiFields []string, rows []types.GeneratedRow) overlay.Request {
	now := e.now()
	fields := make([]overlay.FieldDescriptor, len(s))
	for i, f := range s {
		d := overlay.FieldDescriptor{Name: f.Name, Type: f.Type, Options: f.Options}
		if opts, _ := e.registry.Decode(f, now); opts != nil {
			if ai, ok := opts.(types.AIOptions); ok {
				d.Hint = ai.Hint
			}
		}
		fields[i] = d
	}

	baseline := make([]map[string]any, len(rows))
	for i, row := range rows {
		copied := make(map[string]any, len(row))
		for k, v := range row {
			copied[k] = v
		}
		baseline[i] = copied
	}
	return overlay.Request{
		Fields:      fields,
		AIFields:    aiFields,
		RowCount:    len(rows),
		Instruction: strings.TrimSpace(cfg.EnhancementPrompt),
		Seed:        cfg.SeedValue(),
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Baseline:    baseline,
	}
}

func (e *Engine) lap(name string, mark *time.Time) time.Duration {
	d := time.Since(*mark)
	*mark = time.Now()
	e.metrics.RecordStage(name, d)
	return d
}

// fieldNames lists column names in schema order. A repeated name keeps
// only its first position.
func fieldNames(s types.Schema) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, f := range s {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f.Name)
	}
	return out
}

func rowsOf(r *Result) int {
	if r == nil {
		return 0
	}
	return r.Dataset.Len()
}

func warningsOf(r *Result) int {
	if r == nil {
		return 0
	}
	return len(r.Metadata.Warnings)
}
