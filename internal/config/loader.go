package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names, in lookup order.
const (
	FileName    = "genseries.yaml"
	FileNameAlt = "genseries.yml"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: GENSERIES_TARGET__HOST sets target.host.
const EnvPrefix = "GENSERIES_"

// maxUpwardSearchLevels limits how far up the directory tree the config
// file is searched for.
const maxUpwardSearchLevels = 10

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"type":      "target.type",
	"database":  "target.database",
	"host":      "target.host",
	"port":      "target.port",
	"user":      "target.user",
	"password":  "target.password",
	"schema":    "target.schema",
	"log-level": "log_level",
	"output":    "output",
}

// findConfigFile returns the config file in dir, or "".
func findConfigFile(dir string) string {
	for _, name := range []string{FileName, FileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindConfigUpward searches startDir and its parents for a config file.
func FindConfigUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if path := findConfigFile(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// An explicit cfgFile must exist; otherwise the file is searched for from
// the working directory upward. Only flags the user changed are applied.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"target.type": DefaultTargetType,
		"log_level":   DefaultLogLevel,
		"output":      DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = FindConfigUpward(cwd)
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: GENSERIES_TARGET__HOST -> target.host
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile
	cfg.Output = strings.ToLower(cfg.Output)
	if cfg.Target == nil {
		cfg.Target = &Target{Type: DefaultTargetType}
	}

	ApplyTargetDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the variable's value. Unset variables
// are left as written.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands ${VAR} references in credential fields.
func expandTargetEnvVars(t *Target) {
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
}

// BindFlags registers the flags Load understands on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("type", "", "Target database type (duckdb|postgres)")
	fs.String("database", "", "Database name, or DuckDB file path (empty for in-memory)")
	fs.String("host", "", "Database host")
	fs.Int("port", 0, "Database port")
	fs.String("user", "", "Database user")
	fs.String("password", "", "Database password")
	fs.String("schema", "", "Default schema")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
	fs.StringP("output", "o", "", "Output format (table|json|csv)")
}
