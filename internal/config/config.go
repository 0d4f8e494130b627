package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Output holds subtitle export defaults.
type Output struct {
	Format string `toml:"format"`
}

// FFmpeg holds binary locations and cutting parallelism.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	Concurrency int    `toml:"concurrency"`
}

// Server holds HTTP API settings.
type Server struct {
	Bind                string `toml:"bind"`
	MaxBodyBytes        int64  `toml:"max_body_bytes"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

// Logging holds log level and encoding.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for recut.
type Config struct {
	Output  Output  `toml:"output"`
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output: Output{Format: "srt"},
		FFmpeg: FFmpeg{Concurrency: 4},
		Server: Server{
			Bind:                "127.0.0.1:7650",
			MaxBodyBytes:        4 << 20,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
		},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recut/config.toml")
}

// Load locates, parses and validates a configuration file. A missing file is
// not an error: defaults are returned and exists is false.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	c := Default()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}

	return &c, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("recut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)

	if p := strings.TrimSpace(c.FFmpeg.FFmpegPath); p != "" {
		if expanded, err := expandPath(p); err == nil {
			c.FFmpeg.FFmpegPath = expanded
		}
	}
	if p := strings.TrimSpace(c.FFmpeg.FFprobePath); p != "" {
		if expanded, err := expandPath(p); err == nil {
			c.FFmpeg.FFprobePath = expanded
		}
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "srt", "vtt", "ass":
	default:
		return fmt.Errorf("output.format: unsupported value %q (use srt, vtt or ass)", c.Output.Format)
	}
	if c.FFmpeg.Concurrency < 1 {
		return fmt.Errorf("ffmpeg.concurrency: must be at least 1, got %d", c.FFmpeg.Concurrency)
	}
	if c.Server.Bind == "" {
		return errors.New("server.bind: must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes: must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return errors.New("server timeouts: must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// ReadTimeout is the server read timeout as a Duration.
func (s Server) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout is the server write timeout as a Duration.
func (s Server) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
