package cli

import (
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "MCPI"

// Settings are the runtime knobs read from the environment.
type Settings struct {
	LogLevel  slog.Level
	LogFormat string
	Progress  bool
}

// loadEnvFile loads inv.EnvFile into the process environment. Variables
// that are already set are not overridden.
func loadEnvFile(inv CLIInvocation) error {
	if strings.TrimSpace(inv.EnvFile) == "" {
		return nil
	}
	if err := godotenv.Load(inv.EnvFile); err != nil {
		if !inv.EnvFileExplicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return configErrorf("loading env file %q: %v", inv.EnvFile, err)
	}
	return nil
}

// loadSettings reads MCPI_* variables through viper. An explicit --progress
// flag overrides MCPI_PROGRESS.
func loadSettings(inv CLIInvocation) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("progress", false)
	if inv.ProgressSet {
		v.Set("progress", inv.Progress)
	}

	level, err := parseLevel(v.GetString("log.level"))
	if err != nil {
		return Settings{}, err
	}
	format := strings.ToLower(strings.TrimSpace(v.GetString("log.format")))
	switch format {
	case "text", "json":
	default:
		return Settings{}, configErrorf("invalid %s_LOG_FORMAT %q (expected text|json)", envPrefix, format)
	}

	return Settings{
		LogLevel:  level,
		LogFormat: format,
		Progress:  v.GetBool("progress"),
	}, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, configErrorf("invalid %s_LOG_LEVEL %q (expected debug|info|warn|error)", envPrefix, raw)
	}
}
