package engine

import (
	"time"

	"github.com/Rana718/seedforge/internal/metrics"
	"github.com/Rana718/seedforge/internal/overlay"
	"go.uber.org/zap"
)

const (
	DefaultPreviewRows = 10
	DefaultMaxRows     = 10000
)

type Option func(*Engine)

// WithOverlay installs the AI enhancement capability. Passing nil leaves
// the engine without one.
func WithOverlay(o overlay.Overlay) Option {
	return func(e *Engine) { e.overlay = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithPreviewRows(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.previewRows = n
		}
	}
}

func WithMaxRows(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRows = n
		}
	}
}

// WithClock replaces time.Now, which anchors relative dates and artifact names.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithOverlayTimeout bounds each enhancement call. Zero means only the
// caller's context applies.
func WithOverlayTimeout(d time.Duration) Option {
	return func(e *Engine) { e.overlayTimeout = d }
}
