package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults for the capture and transcription subprocesses. The capture
// command gets the artifact path appended; the transcriber command gets the
// audio path and model appended and must print the transcript on stdout.
var (
	DefaultCaptureCommand    = []string{"pw-record", "--channels", "1", "--rate", "16000", "--format", "s16"}
	DefaultTranscribeCommand = []string{"whisper-transcribe"}
)

const (
	DefaultModel          = "base.en"
	DefaultArtifactMaxAge = 10 * time.Minute

	// Bounded wait for the session record when stop races a fresh start.
	DefaultPIDPollInterval = 20 * time.Millisecond
	DefaultPIDPollAttempts = 10
)

type Config struct {
	RuntimeDir        string
	SocketPath        string
	Model             string
	UseClipboard      bool
	CaptureCommand    []string
	TranscribeCommand []string
	ArtifactMaxAge    time.Duration
	PIDPollInterval   time.Duration
	PIDPollAttempts   int
}

type fileConfig struct {
	RuntimeDir        string   `toml:"runtime_dir"`
	SocketPath        string   `toml:"socket_path"`
	Model             string   `toml:"model"`
	UseClipboard      *bool    `toml:"use_clipboard"`
	CaptureCommand    []string `toml:"capture_command"`
	TranscribeCommand []string `toml:"transcribe_command"`
	ArtifactMaxAge    string   `toml:"artifact_max_age"`
}

// Load resolves the effective configuration. Precedence, lowest to highest:
// built-in defaults, config.toml, the running daemon's settings file, then
// environment variables. Command-line flags are applied by the CLI layer on
// top of all of these.
func Load() (*Config, error) {
	cfg := &Config{
		RuntimeDir:        defaultRuntimeDir(),
		Model:             DefaultModel,
		CaptureCommand:    DefaultCaptureCommand,
		TranscribeCommand: DefaultTranscribeCommand,
		ArtifactMaxAge:    DefaultArtifactMaxAge,
		PIDPollInterval:   DefaultPIDPollInterval,
		PIDPollAttempts:   DefaultPIDPollAttempts,
	}

	var fileSocket string
	if configPath := configFilePath(); configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
		applyFileConfig(cfg, &fc)
		fileSocket = fc.SocketPath
	}

	cfg.SocketPath = filepath.Join(cfg.RuntimeDir, "whisp-away-daemon.sock")
	if fileSocket != "" {
		cfg.SocketPath = fileSocket
	}

	// A running daemon advertises its settings so stop/toggle use the same
	// model and socket the daemon loaded.
	if ds := readDaemonSettings(cfg.DaemonSettingsPath()); ds != nil {
		if ds.SocketPath != "" {
			cfg.SocketPath = ds.SocketPath
		}
		if ds.Model != "" {
			cfg.Model = ds.Model
		}
		if ds.UseClipboard != nil {
			cfg.UseClipboard = *ds.UseClipboard
		}
	}

	applyEnvOverrides(cfg)

	if err := os.MkdirAll(cfg.RuntimeDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating runtime dir: %w", err)
	}

	return cfg, nil
}

// LockPath is the well-known path of the recording lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.RuntimeDir, "whisp-away-recording.lock")
}

// DaemonSettingsPath is where a running daemon publishes its settings.
func (c *Config) DaemonSettingsPath() string {
	return filepath.Join(c.RuntimeDir, "whisp-away-daemon.json")
}

func applyFileConfig(cfg *Config, fc *fileConfig) {
	if fc.RuntimeDir != "" {
		cfg.RuntimeDir = expandTilde(fc.RuntimeDir)
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.UseClipboard != nil {
		cfg.UseClipboard = *fc.UseClipboard
	}
	if len(fc.CaptureCommand) > 0 {
		cfg.CaptureCommand = fc.CaptureCommand
	}
	if len(fc.TranscribeCommand) > 0 {
		cfg.TranscribeCommand = fc.TranscribeCommand
	}
	if fc.ArtifactMaxAge != "" {
		if d, err := time.ParseDuration(fc.ArtifactMaxAge); err == nil && d > 0 {
			cfg.ArtifactMaxAge = d
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WA_SOCKET"); v != "" {
		cfg.SocketPath = v
	}
	if v := os.Getenv("WA_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("WA_USE_CLIPBOARD"); v != "" {
		cfg.UseClipboard = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("WA_RUNTIME_DIR"); v != "" {
		cfg.RuntimeDir = expandTilde(v)
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "whisp-away")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "whisp-away")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultRuntimeDir() string {
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "whisp-away")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("whisp-away-%d", os.Getuid()))
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
