package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/ffmpeg"
)

// Compile-time checks that mocks satisfy the exported interfaces.
var (
	_ audio.CommandRunner   = (*mockCommandRunner)(nil)
	_ audio.ToolLocator     = (*mockLocator)(nil)
	_ audio.TempDirCreator  = (*mockTempDirCreator)(nil)
	_ audio.TempFileCreator = (*mockTempFileCreator)(nil)
	_ audio.FileRemover     = (*mockFileRemover)(nil)
	_ audio.FileStatter     = (*mockFileStatter)(nil)
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

type mockCommandRunner struct {
	mu      sync.Mutex
	runFunc func(ctx context.Context, path string, args []string) (ffmpeg.Result, error)
	calls   []mockCall
}

type mockCall struct {
	path    string
	args    []string
	timeout time.Duration
}

func (m *mockCommandRunner) Run(ctx context.Context, path string, args []string, timeout time.Duration) (ffmpeg.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockCall{path: path, args: args, timeout: timeout})
	m.mu.Unlock()
	if m.runFunc != nil {
		return m.runFunc(ctx, path, args)
	}
	return ffmpeg.Result{}, nil
}

func (m *mockCommandRunner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockLocator struct {
	ffmpegPath  string
	ffprobePath string
	err         error
	probeErr    error
}

func (m *mockLocator) Resolve(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.ffmpegPath, nil
}

func (m *mockLocator) ResolveProbe(ctx context.Context) (string, error) {
	if m.probeErr != nil {
		return "", m.probeErr
	}
	return m.ffprobePath, nil
}

// okLocator resolves both binaries to fixed paths.
func okLocator() *mockLocator {
	return &mockLocator{ffmpegPath: "/usr/bin/ffmpeg", ffprobePath: "/usr/bin/ffprobe"}
}

// missingLocator fails like a host without ffmpeg.
func missingLocator() *mockLocator {
	return &mockLocator{
		err:      ffmpeg.ErrNotFound,
		probeErr: ffmpeg.ErrNotFound,
	}
}

// mockTempDirCreator creates real directories under root so cleanup is observable.
type mockTempDirCreator struct {
	root    string
	err     error
	created []string
}

func (m *mockTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	d, err := os.MkdirTemp(m.root, pattern)
	if err != nil {
		return "", err
	}
	m.created = append(m.created, d)
	return d, nil
}

type mockTempFileCreator struct {
	name  string
	err   error
	calls int
}

func (m *mockTempFileCreator) CreateTemp(dir, pattern string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.name, nil
}

type mockFileRemover struct {
	removed    []string
	removedAll []string
}

func (m *mockFileRemover) Remove(name string) error {
	m.removed = append(m.removed, name)
	return nil
}

func (m *mockFileRemover) RemoveAll(path string) error {
	m.removedAll = append(m.removedAll, path)
	return nil
}

// mockFileStatter reports the listed paths as regular files of the given sizes.
type mockFileStatter struct {
	sizes map[string]int64
	dirs  map[string]bool
	err   error
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.dirs[name] {
		return &mockFileInfo{name: name, isDir: true}, nil
	}
	size, ok := m.sizes[name]
	if !ok {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}
	return &mockFileInfo{name: name, size: size}, nil
}

// existing returns a statter where each given path exists with size 1024.
func existing(paths ...string) *mockFileStatter {
	sizes := make(map[string]int64, len(paths))
	for _, p := range paths {
		sizes[p] = 1024
	}
	return &mockFileStatter{sizes: sizes}
}

type mockFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (m *mockFileInfo) Name() string       { return filepath.Base(m.name) }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return 0644 }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// writeTempFile creates a file of the given size under t.TempDir().
func writeTempFile(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
	return path
}

func contains(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

// writeChunks returns a run function that writes the named files into the
// directory of the output pattern (the last argument).
func writeChunks(names ...string) func(ctx context.Context, path string, args []string) (ffmpeg.Result, error) {
	return func(ctx context.Context, path string, args []string) (ffmpeg.Result, error) {
		dir := filepath.Dir(args[len(args)-1])
		for _, n := range names {
			if err := os.WriteFile(filepath.Join(dir, n), []byte("mp3"), 0600); err != nil {
				return ffmpeg.Result{}, err
			}
		}
		return ffmpeg.Result{}, nil
	}
}

// exitWith returns a run function failing like a non-zero ffmpeg exit.
func exitWith(code int, stderr string) func(ctx context.Context, path string, args []string) (ffmpeg.Result, error) {
	return func(ctx context.Context, path string, args []string) (ffmpeg.Result, error) {
		return ffmpeg.Result{ExitCode: code, Stderr: stderr}, &ffmpeg.ExitError{Tool: "ffmpeg", Code: code, Stderr: stderr}
	}
}

// timeoutRun returns a run function failing like a killed subprocess.
func timeoutRun() func(ctx context.Context, path string, args []string) (ffmpeg.Result, error) {
	return func(ctx context.Context, path string, args []string) (ffmpeg.Result, error) {
		return ffmpeg.Result{}, errors.Join(ffmpeg.ErrTimeout, context.DeadlineExceeded)
	}
}
