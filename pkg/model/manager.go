package model

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/genseries/pkg/dialect"
	"github.com/leapstack-labs/genseries/pkg/query"
	"github.com/leapstack-labs/genseries/pkg/series"
)

// Backend executes queries for one dialect. adapter.Adapter satisfies it.
type Backend interface {
	query.Executor
	Dialect() *dialect.Dialect
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for debug output. Unless WithSink is also
// given, guard diagnostics are written to it at WARN.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithSink routes guard diagnostics to s.
func WithSink(s Sink) Option {
	return func(m *Manager) { m.sink = s }
}

// WithDialect renders for d instead of the backend's dialect. It allows a
// Manager without a backend to compile SQL.
func WithDialect(d *dialect.Dialect) Option {
	return func(m *Manager) { m.dialect = d }
}

// Sinks combines several sinks into one.
func Sinks(sinks ...Sink) Sink { return multiSink(sinks) }

// Manager is the query entry point of a phantom entity.
type Manager struct {
	phantom Phantom
	exec    query.Executor
	dialect *dialect.Dialect
	logger  *slog.Logger
	sink    Sink
}

// New creates the manager of p. b may be nil when only SQL is needed, in
// which case WithDialect must be given.
func New(p Phantom, b Backend, opts ...Option) *Manager {
	m := &Manager{
		phantom: p,
		logger:  slog.New(slog.DiscardHandler),
	}
	if b != nil {
		m.exec = b
		m.dialect = b.Dialect()
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sink == nil {
		m.sink = SlogSink{Logger: m.logger}
	}
	return m
}

// Phantom returns the managed entity.
func (m *Manager) Phantom() Phantom { return m.phantom }

// GenerateSeries normalizes raw for the entity's kind, compiles it, and
// returns a fully capable query set over the series.
func (m *Manager) GenerateSeries(raw any) (*query.QuerySet, error) {
	if m.dialect == nil {
		return nil, fmt.Errorf("%s: no dialect configured", m.phantom.Name)
	}
	p, err := series.Normalize(raw, m.phantom.Kind)
	if err != nil {
		return nil, err
	}
	rel, err := series.Compile(p)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("generated series",
		slog.String("entity", m.phantom.Name),
		slog.String("params", p.String()),
	)
	return query.New(m.exec, m.dialect, rel, query.WithLogger(m.logger)), nil
}
