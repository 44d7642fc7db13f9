package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names double as configuration keys and, upper-cased with dashes
// turned into underscores and a NATFLOW_ prefix, as environment variables.
const (
	KeyRules         = "rules"
	KeyFlows         = "flows"
	KeyOut           = "out"
	KeyProvider      = "provider"
	KeyDB            = "db"
	KeyWorkers       = "workers"
	KeyKeepGoing     = "keep-going"
	KeyLogLevel      = "log-level"
	KeyLogFile       = "log-file"
	KeyLogMaxSize    = "log-max-size"
	KeyLogMaxBackups = "log-max-backups"
	KeyLogMaxAge     = "log-max-age"
	KeyLogCompress   = "log-compress"
)

const envPrefix = "NATFLOW"

type Config struct {
	RulesPath string
	FlowsPath string
	OutPath   string
	Provider  string
	DB        string
	Workers   int
	KeepGoing bool
	Log       LogConfig
}

type LogConfig struct {
	Level string
	File  string
	// Rotation settings for File, in megabytes and days.
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Default file names, relative to the working directory.
const (
	DefaultRulesPath = "nat.txt"
	DefaultFlowsPath = "flow.txt"
	DefaultOutPath   = "output.txt"
)

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyRules, DefaultRulesPath, "Rule source: text or YAML file (for 'text' and 'yaml' providers)")
	fs.String(KeyFlows, DefaultFlowsPath, "Flow endpoint file, one HOST:PORT per line")
	fs.String(KeyOut, DefaultOutPath, "Output report file")
	fs.String(KeyProvider, "text", "Rule provider type: 'text', 'yaml' or 'mariadb'")
	fs.String(KeyDB, "", "Database connection string (for 'mariadb' provider)")
	fs.IntP(KeyWorkers, "w", runtime.NumCPU(), "Number of concurrent resolver workers")
	fs.Bool(KeyKeepGoing, false, "Skip malformed flow lines instead of stopping at the first one")
	fs.String(KeyLogLevel, "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.String(KeyLogFile, "", "Log file path (default: stderr)")
	fs.Int(KeyLogMaxSize, 100, "Maximum log file size in megabytes before rotation")
	fs.Int(KeyLogMaxBackups, 3, "Maximum number of rotated log files to keep")
	fs.Int(KeyLogMaxAge, 28, "Maximum days to keep rotated log files")
	fs.Bool(KeyLogCompress, false, "Compress rotated log files")
}

// Load resolves the configuration from, in order of precedence: flags set on
// the command line, NATFLOW_* environment variables, the config file, and
// flag defaults. If file is empty, natflow.{yaml,json,toml} is looked up in
// the working directory, $HOME/.natflow and /etc/natflow; a missing file is
// not an error.
func Load(flags *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("natflow")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.natflow/")
		v.AddConfigPath("/etc/natflow/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		RulesPath: v.GetString(KeyRules),
		FlowsPath: v.GetString(KeyFlows),
		OutPath:   v.GetString(KeyOut),
		Provider:  v.GetString(KeyProvider),
		DB:        v.GetString(KeyDB),
		Workers:   v.GetInt(KeyWorkers),
		KeepGoing: v.GetBool(KeyKeepGoing),
		Log: LogConfig{
			Level:      v.GetString(KeyLogLevel),
			File:       v.GetString(KeyLogFile),
			MaxSize:    v.GetInt(KeyLogMaxSize),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAge:     v.GetInt(KeyLogMaxAge),
			Compress:   v.GetBool(KeyLogCompress),
		},
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
