package cli

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alnah/speech2text/internal/config"
	"github.com/alnah/speech2text/internal/pipeline"
	"github.com/alnah/speech2text/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Default(), nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock Toolchain
// ---------------------------------------------------------------------------

type mockToolchain struct {
	ResolveFunc      func(ctx context.Context) (string, error)
	ResolveProbeFunc func(ctx context.Context) (string, error)
	VersionFunc      func(ctx context.Context, binaryPath string) (string, error)

	mu           sync.Mutex
	resolveCalls int
	checkCalls   int
}

func (m *mockToolchain) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockToolchain) ResolveProbe(ctx context.Context) (string, error) {
	if m.ResolveProbeFunc != nil {
		return m.ResolveProbeFunc(ctx)
	}
	return "/usr/bin/ffprobe", nil
}

func (m *mockToolchain) Version(ctx context.Context, binaryPath string) (string, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc(ctx, binaryPath)
	}
	return "7.1", nil
}

func (m *mockToolchain) Check(_ context.Context, _ string) bool {
	m.mu.Lock()
	m.checkCalls++
	m.mu.Unlock()
	return true
}

func (m *mockToolchain) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

func (m *mockToolchain) CheckCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkCalls
}

// ---------------------------------------------------------------------------
// Mock ToolchainFactory
// ---------------------------------------------------------------------------

type mockToolchainFactory struct {
	toolchain *mockToolchain

	mu      sync.Mutex
	lastCfg config.Config
}

func (m *mockToolchainFactory) NewToolchain(cfg config.Config, _ *slog.Logger) Toolchain {
	m.mu.Lock()
	m.lastCfg = cfg
	m.mu.Unlock()

	if m.toolchain == nil {
		m.toolchain = &mockToolchain{}
	}
	return m.toolchain
}

func (m *mockToolchainFactory) LastConfig() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCfg
}

// ---------------------------------------------------------------------------
// Mock Transcriber
// ---------------------------------------------------------------------------

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string, opts transcribe.Options) (string, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, opts)
	}
	return "", nil
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	transcriber *mockTranscriber

	mu         sync.Mutex
	calls      int
	lastAPIKey string
	lastCfg    config.Config
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey string, cfg config.Config, _ *slog.Logger) transcribe.Transcriber {
	m.mu.Lock()
	m.calls++
	m.lastAPIKey = apiKey
	m.lastCfg = cfg
	m.mu.Unlock()

	if m.transcriber == nil {
		m.transcriber = &mockTranscriber{}
	}
	return m.transcriber
}

func (m *mockTranscriberFactory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockTranscriberFactory) LastAPIKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAPIKey
}

func (m *mockTranscriberFactory) LastConfig() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCfg
}

// ---------------------------------------------------------------------------
// Mock Runner
// ---------------------------------------------------------------------------

type mockRunner struct {
	RunFunc  func(ctx context.Context, input string, opts transcribe.Options) (pipeline.Result, error)
	PlanFunc func(ctx context.Context, input string) (pipeline.Preview, error)

	mu       sync.Mutex
	runCalls int
	lastOpts transcribe.Options
}

func (m *mockRunner) Run(ctx context.Context, input string, opts transcribe.Options) (pipeline.Result, error) {
	m.mu.Lock()
	m.runCalls++
	m.lastOpts = opts
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, input, opts)
	}
	return pipeline.Result{Text: "transcript", Chunks: 1}, nil
}

func (m *mockRunner) Plan(ctx context.Context, input string) (pipeline.Preview, error) {
	if m.PlanFunc != nil {
		return m.PlanFunc(ctx, input)
	}
	return pipeline.Preview{}, nil
}

func (m *mockRunner) RunCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCalls
}

func (m *mockRunner) LastOptions() transcribe.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}

// ---------------------------------------------------------------------------
// Mock PipelineFactory
// ---------------------------------------------------------------------------

type mockPipelineFactory struct {
	runner *mockRunner

	mu              sync.Mutex
	calls           int
	lastTranscriber transcribe.Transcriber
}

func (m *mockPipelineFactory) NewPipeline(_ Toolchain, t transcribe.Transcriber, _ *slog.Logger) Runner {
	m.mu.Lock()
	m.calls++
	m.lastTranscriber = t
	m.mu.Unlock()

	if m.runner == nil {
		m.runner = &mockRunner{}
	}
	return m.runner
}

func (m *mockPipelineFactory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Compile-time interface verification.
var (
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ Toolchain              = (*mockToolchain)(nil)
	_ ToolchainFactory       = (*mockToolchainFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ Runner                 = (*mockRunner)(nil)
	_ PipelineFactory        = (*mockPipelineFactory)(nil)
)
