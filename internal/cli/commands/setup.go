package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/genseries/internal/config"
	"github.com/leapstack-labs/genseries/pkg/adapter"
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
	"github.com/leapstack-labs/genseries/pkg/model"
)

// runtimeKey stores the loaded config and logger in the command context.
type runtimeKey struct{}

type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

// WithRuntime attaches the loaded configuration and logger to ctx.
func WithRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, runtimeKey{}, runtime{cfg: cfg, logger: logger})
}

// CommandContext holds the shared dependencies of a command.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
}

// NewCommandContext reads the runtime stored by the root command. Commands
// run without it (in tests, for example) get the defaults and a discard
// logger.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cc := &CommandContext{Out: cmd.OutOrStdout()}
	if ctx := cmd.Context(); ctx != nil {
		if rt, ok := ctx.Value(runtimeKey{}).(runtime); ok {
			cc.Cfg, cc.Logger = rt.cfg, rt.logger
		}
	}
	if cc.Cfg == nil {
		target := &config.Target{Type: config.DefaultTargetType}
		config.ApplyTargetDefaults(target)
		cc.Cfg = &config.Config{Target: target, LogLevel: config.DefaultLogLevel, Output: config.DefaultOutput}
	}
	if cc.Logger == nil {
		cc.Logger = slog.New(slog.DiscardHandler)
	}
	return cc
}

// Dialect returns the dialect of the configured target.
func (cc *CommandContext) Dialect() (*dialect.Dialect, error) {
	d, ok := dialect.Get(strings.ToLower(cc.Cfg.Target.Type))
	if !ok {
		return nil, fmt.Errorf("no dialect registered for target type %q", cc.Cfg.Target.Type)
	}
	return d, nil
}

// Open connects to the configured target. The caller closes the adapter.
func (cc *CommandContext) Open(ctx context.Context) (adapter.Adapter, error) {
	adp, err := adapter.Open(ctx, cc.Cfg.Target.AdapterConfig(), cc.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cc.Cfg.Target.Type, err)
	}
	return adp, nil
}

// Manager returns the manager of a phantom series entity of kind. With a
// nil backend it only renders SQL.
func (cc *CommandContext) Manager(kind core.Kind, b model.Backend) (*model.Manager, error) {
	opts := []model.Option{model.WithLogger(cc.Logger)}
	if b == nil {
		d, err := cc.Dialect()
		if err != nil {
			return nil, err
		}
		opts = append(opts, model.WithDialect(d))
	}
	return model.New(model.Phantom{Name: "Series", Kind: kind}, b, opts...), nil
}

// kindFlag parses the --kind value shared by several commands.
func kindFlag(value string) (core.Kind, error) {
	if value == "" {
		return core.KindInvalid, fmt.Errorf("--kind is required (one of %s)", kindNames())
	}
	kind, err := core.ParseKind(value)
	if err != nil {
		return core.KindInvalid, fmt.Errorf("%w (one of %s)", err, kindNames())
	}
	return kind, nil
}

func kindNames() string {
	names := make([]string, 0, len(core.Kinds()))
	for _, k := range core.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

func completeKinds(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return strings.Split(kindNames(), ", "), cobra.ShellCompDirectiveNoFileComp
}
