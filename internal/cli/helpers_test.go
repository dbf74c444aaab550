package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/alnah/speech2text/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	toolchain    *mockToolchain
	toolchains   *mockToolchainFactory
	transcriber  *mockTranscriber
	transcribers *mockTranscriberFactory
	runner       *mockRunner
	pipelines    *mockPipelineFactory
}

func newTestMocks() *testMocks {
	tc := &mockToolchain{}
	tr := &mockTranscriber{}
	r := &mockRunner{}
	return &testMocks{
		configLoader: &mockConfigLoader{},
		toolchain:    tc,
		toolchains:   &mockToolchainFactory{toolchain: tc},
		transcriber:  tr,
		transcribers: &mockTranscriberFactory{transcriber: tr},
		runner:       r,
		pipelines:    &mockPipelineFactory{runner: r},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnv creates an Env with all dependencies mocked.
// Returns the Env, the mocks for assertions, and the stdout and stderr buffers.
func testEnv() (*Env, *testMocks, *syncBuffer, *syncBuffer) {
	m := newTestMocks()
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Env{
		Stdout:             stdout,
		Stderr:             stderr,
		Getenv:             defaultTestEnv,
		ConfigLoader:       m.configLoader,
		ToolchainFactory:   m.toolchains,
		TranscriberFactory: m.transcribers,
		PipelineFactory:    m.pipelines,
	}
	return env, m, stdout, stderr
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns a fake OpenAI key and nothing else.
func defaultTestEnv(key string) string {
	if key == EnvOpenAIAPIKey {
		return "sk-test-1234567890"
	}
	return ""
}

// withConfig returns a loader that yields cfg.
func withConfig(cfg config.Config) *mockConfigLoader {
	return &mockConfigLoader{
		LoadFunc: func() (config.Config, error) {
			return cfg, nil
		},
	}
}

// createTestAudioFile creates a temporary media file for testing.
// The file is automatically cleaned up after the test.
func createTestAudioFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake audio content"), 0644); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

// createCmd creates a cobra.Command carrying ctx, as run functions expect.
func createCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}
