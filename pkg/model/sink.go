package model

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// LimitedMessage is the text of every guard diagnostic.
const LimitedMessage = "this model has been intentionally limited in capability; " +
	"the requested method has no effect and will be ignored"

// Diagnostic reports a guarded call that had no effect.
type Diagnostic struct {
	Entity  string
	Method  string
	Message string
}

// Sink receives guard diagnostics. Warn must not block.
type Sink interface {
	Warn(d Diagnostic)
}

// SlogSink writes each diagnostic as one WARN record.
type SlogSink struct {
	Logger *slog.Logger
}

// Warn implements Sink.
func (s SlogSink) Warn(d Diagnostic) {
	if s.Logger == nil {
		return
	}
	s.Logger.LogAttrs(context.Background(), slog.LevelWarn, d.Message,
		slog.String("entity", d.Entity),
		slog.String("method", d.Method),
	)
}

// Recorder keeps diagnostics in memory. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Warn implements Sink.
func (r *Recorder) Warn(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Diagnostics returns a copy of everything recorded.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.diags)
}

// Reset discards recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}

// multiSink fans a diagnostic out to several sinks.
type multiSink []Sink

func (m multiSink) Warn(d Diagnostic) {
	for _, s := range m {
		s.Warn(d)
	}
}
