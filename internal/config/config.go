// Package config loads and persists speech2text settings.
//
// Settings live in a TOML file under the user's config directory. Values
// missing from the file fall back to environment variables, then defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/speech2text/internal/lang"
	"github.com/alnah/speech2text/internal/logging"
	"github.com/alnah/speech2text/internal/transcribe"
)

// Config keys, as written in config.toml.
const (
	KeyModel          = "model"
	KeyLanguage       = "language"
	KeyResponseFormat = "response_format"
	KeyOutputDir      = "output_dir"
	KeyMaxRetries     = "max_retries"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyFFmpegPath     = "ffmpeg_path"
	KeyFFprobePath    = "ffprobe_path"
	KeyOpenAIBaseURL  = "openai_base_url"
)

// Environment variable fallbacks.
const (
	EnvModel          = "SPEECH2TEXT_MODEL"
	EnvLanguage       = "SPEECH2TEXT_LANGUAGE"
	EnvResponseFormat = "SPEECH2TEXT_RESPONSE_FORMAT"
	EnvOutputDir      = "SPEECH2TEXT_OUTPUT_DIR"
	EnvMaxRetries     = "SPEECH2TEXT_MAX_RETRIES"
	EnvLogLevel       = "SPEECH2TEXT_LOG_LEVEL"
	EnvLogFormat      = "SPEECH2TEXT_LOG_FORMAT"
	EnvFFmpegPath     = "FFMPEG_PATH"
	EnvFFprobePath    = "FFPROBE_PATH"
	EnvOpenAIBaseURL  = "OPENAI_BASE_URL"
)

const fileName = "config.toml"

// ErrUnknownKey indicates a key that is not a recognized setting.
var ErrUnknownKey = errors.New("unknown config key")

// keys lists every setting in display order, with its env fallback.
var keys = []struct {
	key string
	env string
}{
	{KeyModel, EnvModel},
	{KeyLanguage, EnvLanguage},
	{KeyResponseFormat, EnvResponseFormat},
	{KeyOutputDir, EnvOutputDir},
	{KeyMaxRetries, EnvMaxRetries},
	{KeyLogLevel, EnvLogLevel},
	{KeyLogFormat, EnvLogFormat},
	{KeyFFmpegPath, EnvFFmpegPath},
	{KeyFFprobePath, EnvFFprobePath},
	{KeyOpenAIBaseURL, EnvOpenAIBaseURL},
}

// Config holds resolved settings.
type Config struct {
	Model          string
	Language       string
	ResponseFormat string
	OutputDir      string
	MaxRetries     int
	LogLevel       string
	LogFormat      string
	FFmpegPath     string
	FFprobePath    string
	OpenAIBaseURL  string
}

// fileConfig mirrors config.toml. Empty strings and a nil MaxRetries mean unset.
type fileConfig struct {
	Model          string `toml:"model,omitempty"`
	Language       string `toml:"language,omitempty"`
	ResponseFormat string `toml:"response_format,omitempty"`
	OutputDir      string `toml:"output_dir,omitempty"`
	MaxRetries     *int   `toml:"max_retries,omitempty"`
	LogLevel       string `toml:"log_level,omitempty"`
	LogFormat      string `toml:"log_format,omitempty"`
	FFmpegPath     string `toml:"ffmpeg_path,omitempty"`
	FFprobePath    string `toml:"ffprobe_path,omitempty"`
	OpenAIBaseURL  string `toml:"openai_base_url,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Model:          transcribe.DefaultModel,
		ResponseFormat: string(transcribe.DefaultFormat),
		MaxRetries:     transcribe.DefaultMaxRetries,
		LogLevel:       "info",
		LogFormat:      logging.FormatAuto,
	}
}

// Keys returns every supported key in display order.
func Keys() []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.key
	}
	return out
}

// IsValidKey reports whether key names a supported setting.
func IsValidKey(key string) bool {
	return EnvFor(key) != ""
}

// EnvFor returns the environment variable backing key, or "" for unknown keys.
func EnvFor(key string) string {
	for _, k := range keys {
		if k.key == key {
			return k.env
		}
	}
	return ""
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/speech2text.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "speech2text"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "speech2text"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks, then defaults.
// A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	p, err := Path()
	if err != nil {
		return cfg, err
	}
	fc, err := readFile(p)
	if err != nil {
		return cfg, err
	}

	values := fc.values()
	for _, k := range keys {
		v, ok := values[k.key]
		if !ok {
			v = strings.TrimSpace(os.Getenv(k.env))
		}
		if v == "" {
			continue
		}
		if err := cfg.set(k.key, v); err != nil {
			if !ok {
				return cfg, fmt.Errorf("%s: %w", k.env, err)
			}
			return cfg, fmt.Errorf("%s: %s: %w", p, k.key, err)
		}
	}

	return cfg, nil
}

// set assigns a raw string value to the field named by key.
func (c *Config) set(key, value string) error {
	switch key {
	case KeyModel:
		c.Model = value
	case KeyLanguage:
		c.Language = value
	case KeyResponseFormat:
		c.ResponseFormat = value
	case KeyOutputDir:
		c.OutputDir = ExpandPath(value)
	case KeyMaxRetries:
		n, err := parseRetries(value)
		if err != nil {
			return err
		}
		c.MaxRetries = n
	case KeyLogLevel:
		c.LogLevel = value
	case KeyLogFormat:
		c.LogFormat = value
	case KeyFFmpegPath:
		c.FFmpegPath = ExpandPath(value)
	case KeyFFprobePath:
		c.FFprobePath = ExpandPath(value)
	case KeyOpenAIBaseURL:
		c.OpenAIBaseURL = value
	default:
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return nil
}

// Validate checks every value that has a closed set of accepted forms.
func (c Config) Validate() error {
	if err := lang.Validate(c.Language); err != nil {
		return err
	}
	if _, err := transcribe.ParseResponseFormat(c.ResponseFormat); err != nil {
		return err
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%s must not be negative", KeyMaxRetries)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	return nil
}

// ValidateValue checks value against the rules for key without touching the file.
// Output directories are created if missing and probed for writability.
func ValidateValue(key, value string) error {
	switch key {
	case KeyLanguage:
		return lang.Validate(value)
	case KeyResponseFormat:
		_, err := transcribe.ParseResponseFormat(value)
		return err
	case KeyMaxRetries:
		_, err := parseRetries(value)
		return err
	case KeyLogLevel:
		_, err := logging.ParseLevel(value)
		return err
	case KeyLogFormat:
		_, err := logging.ParseFormat(value)
		return err
	case KeyOutputDir:
		return EnsureOutputDir(ExpandPath(value))
	case KeyModel, KeyFFmpegPath, KeyFFprobePath, KeyOpenAIBaseURL:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
		return nil
	default:
		return fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
}

func parseRetries(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", KeyMaxRetries, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative: %d", KeyMaxRetries, n)
	}
	return n, nil
}

// readFile decodes the TOML config file. A missing file yields an empty config.
func readFile(p string) (fileConfig, error) {
	var fc fileConfig

	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", p, err)
	}
	return fc, nil
}

// values returns the keys explicitly set in the file.
func (fc fileConfig) values() map[string]string {
	out := make(map[string]string)
	put := func(key, v string) {
		if v != "" {
			out[key] = v
		}
	}
	put(KeyModel, fc.Model)
	put(KeyLanguage, fc.Language)
	put(KeyResponseFormat, fc.ResponseFormat)
	put(KeyOutputDir, fc.OutputDir)
	if fc.MaxRetries != nil {
		out[KeyMaxRetries] = strconv.Itoa(*fc.MaxRetries)
	}
	put(KeyLogLevel, fc.LogLevel)
	put(KeyLogFormat, fc.LogFormat)
	put(KeyFFmpegPath, fc.FFmpegPath)
	put(KeyFFprobePath, fc.FFprobePath)
	put(KeyOpenAIBaseURL, fc.OpenAIBaseURL)
	return out
}

func (fc *fileConfig) set(key, value string) error {
	switch key {
	case KeyModel:
		fc.Model = value
	case KeyLanguage:
		fc.Language = value
	case KeyResponseFormat:
		fc.ResponseFormat = value
	case KeyOutputDir:
		fc.OutputDir = value
	case KeyMaxRetries:
		n, err := parseRetries(value)
		if err != nil {
			return err
		}
		fc.MaxRetries = &n
	case KeyLogLevel:
		fc.LogLevel = value
	case KeyLogFormat:
		fc.LogFormat = value
	case KeyFFmpegPath:
		fc.FFmpegPath = value
	case KeyFFprobePath:
		fc.FFprobePath = value
	case KeyOpenAIBaseURL:
		fc.OpenAIBaseURL = value
	default:
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return nil
}

// Save writes a single key to the config file, keeping the other keys.
// Creates the config directory and file if they don't exist.
func Save(key, value string) error {
	p, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	fc, err := readFile(p)
	if err != nil {
		return err
	}
	if err := fc.set(key, value); err != nil {
		return err
	}

	data, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// #nosec G306 -- config file with standard permissions
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key isn't set in the file.
func Get(key string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	data, err := List()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns the values set in the config file.
func List() (map[string]string, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	fc, err := readFile(p)
	if err != nil {
		return nil, err
	}
	return fc.values(), nil
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
//
// All paths are cleaned using filepath.Clean.
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir checks that d is a usable output directory,
// creating it if missing.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%s cannot be empty", KeyOutputDir)
	}

	info, err := os.Stat(d)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", d)
	}

	f, err := os.CreateTemp(d, ".speech2text-write-test-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
