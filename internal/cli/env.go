package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/config"
	"github.com/alnah/speech2text/internal/ffmpeg"
	"github.com/alnah/speech2text/internal/pipeline"
	"github.com/alnah/speech2text/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	ToolchainFactory   ToolchainFactory
	TranscriberFactory TranscriberFactory
	PipelineFactory    PipelineFactory
}

// ConfigLoader loads configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Toolchain locates ffmpeg and ffprobe and reports their versions.
type Toolchain interface {
	Resolve(ctx context.Context) (string, error)
	ResolveProbe(ctx context.Context) (string, error)
	Version(ctx context.Context, binaryPath string) (string, error)
	Check(ctx context.Context, ffmpegPath string) bool
}

// ToolchainFactory creates a Toolchain honoring configured binary paths.
type ToolchainFactory interface {
	NewToolchain(cfg config.Config, logger *slog.Logger) Toolchain
}

// TranscriberFactory creates transcribers for audio-to-text conversion.
type TranscriberFactory interface {
	NewTranscriber(apiKey string, cfg config.Config, logger *slog.Logger) transcribe.Transcriber
}

// Runner is the pipeline surface used by commands.
type Runner interface {
	Run(ctx context.Context, input string, opts transcribe.Options) (pipeline.Result, error)
	Plan(ctx context.Context, input string) (pipeline.Preview, error)
}

// PipelineFactory wires a Runner from a toolchain and a transcriber.
// The transcriber may be nil for commands that never call Run.
type PipelineFactory interface {
	NewPipeline(tc Toolchain, t transcribe.Transcriber, logger *slog.Logger) Runner
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithToolchainFactory sets the toolchain factory.
func WithToolchainFactory(f ToolchainFactory) EnvOption {
	return func(e *Env) {
		e.ToolchainFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// WithPipelineFactory sets the pipeline factory.
func WithPipelineFactory(f PipelineFactory) EnvOption {
	return func(e *Env) {
		e.PipelineFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		ConfigLoader:       defaultConfigLoader{},
		ToolchainFactory:   defaultToolchainFactory{},
		TranscriberFactory: defaultTranscriberFactory{},
		PipelineFactory:    defaultPipelineFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// toolchain pairs a Resolver with a VersionChecker.
type toolchain struct {
	*ffmpeg.Resolver
	*ffmpeg.VersionChecker
}

type defaultToolchainFactory struct{}

func (defaultToolchainFactory) NewToolchain(cfg config.Config, logger *slog.Logger) Toolchain {
	return toolchain{
		Resolver: ffmpeg.NewResolver(
			ffmpeg.WithFFmpegPath(cfg.FFmpegPath),
			ffmpeg.WithFFprobePath(cfg.FFprobePath),
		),
		VersionChecker: ffmpeg.NewVersionChecker(ffmpeg.WithVersionLogger(logger)),
	}
}

type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string, cfg config.Config, logger *slog.Logger) transcribe.Transcriber {
	client := transcribe.NewClient(apiKey, cfg.OpenAIBaseURL)
	return transcribe.NewOpenAITranscriber(client,
		transcribe.WithMaxRetries(cfg.MaxRetries),
		transcribe.WithLogger(logger),
	)
}

type defaultPipelineFactory struct{}

func (defaultPipelineFactory) NewPipeline(tc Toolchain, t transcribe.Transcriber, logger *slog.Logger) Runner {
	conv := audio.NewConverter(tc, audio.WithConverterLogger(logger))
	seg := audio.NewSegmenter(tc, audio.WithSegmenterLogger(logger))
	return pipeline.New(conv, seg, t, pipeline.WithLogger(logger))
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = defaultConfigLoader{}
	_ Toolchain          = toolchain{}
	_ ToolchainFactory   = defaultToolchainFactory{}
	_ TranscriberFactory = defaultTranscriberFactory{}
	_ PipelineFactory    = defaultPipelineFactory{}
	_ Runner             = (*pipeline.Pipeline)(nil)
)
