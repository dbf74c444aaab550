package pipeline_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/ffmpeg"
	"github.com/alnah/speech2text/internal/pipeline"
	"github.com/alnah/speech2text/internal/transcribe"
)

const (
	kib = 1024
	mib = 1024 * kib
)

// ---------------------------------------------------------------------------
// fakeFFmpeg - a command runner that acts on the real filesystem
// ---------------------------------------------------------------------------

// fakeFFmpeg mimics ffmpeg and ffprobe closely enough for the pipeline:
// transcodes write the output file, segmenting writes chunk files, and
// probes report a fixed duration.
type fakeFFmpeg struct {
	mu sync.Mutex

	duration      float64 // seconds reported by ffprobe
	transcodeSize int64   // bytes written by a transcode
	chunks        int     // chunk files written by a segment run; 0 derives from duration
	transcodeErr  error
	segmentErr    error

	calls [][]string
}

func (f *fakeFFmpeg) Run(ctx context.Context, path string, args []string, _ time.Duration) (ffmpeg.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{path}, args...))
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ffmpeg.Result{}, err
	}

	switch {
	case path == "ffprobe":
		return ffmpeg.Result{Stdout: fmt.Sprintf(`{"format":{"duration":"%.3f"}}`, f.duration)}, nil
	case slices.Contains(args, "segment"):
		if f.segmentErr != nil {
			return ffmpeg.Result{}, f.segmentErr
		}
		return ffmpeg.Result{}, f.writeChunks(args)
	default:
		if f.transcodeErr != nil {
			return ffmpeg.Result{}, f.transcodeErr
		}
		out := args[len(args)-1]
		return ffmpeg.Result{}, writeSized(out, f.transcodeSize)
	}
}

func (f *fakeFFmpeg) writeChunks(args []string) error {
	dir := filepath.Dir(args[len(args)-1])
	n := f.chunks
	if n == 0 {
		i := slices.Index(args, "-segment_time")
		secs, err := strconv.Atoi(args[i+1])
		if err != nil {
			return err
		}
		n = max(1, int((f.duration+float64(secs)-1)/float64(secs)))
	}
	for i := range n {
		p := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i))
		if err := os.WriteFile(p, []byte("chunk"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeFFmpeg) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFFmpeg) segmentCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if slices.Contains(c, "segment") {
			return c
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Locator and temp creators rooted in a test directory
// ---------------------------------------------------------------------------

type fakeLocator struct {
	err error
}

func (l fakeLocator) Resolve(context.Context) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return "ffmpeg", nil
}

func (l fakeLocator) ResolveProbe(context.Context) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return "ffprobe", nil
}

// scratchRoot keeps every temp file and directory a run creates under root,
// so tests can assert that nothing is left behind.
type scratchRoot struct {
	root string
}

func (s scratchRoot) MkdirTemp(_, pattern string) (string, error) {
	return os.MkdirTemp(s.root, pattern)
}

func (s scratchRoot) CreateTemp(_, pattern string) (string, error) {
	f, err := os.CreateTemp(s.root, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	return name, f.Close()
}

// ---------------------------------------------------------------------------
// mockTranscriber
// ---------------------------------------------------------------------------

type mockTranscriber struct {
	mu        sync.Mutex
	calls     []string
	failAt    int // zero-based call index that fails; -1 never
	failErr   error
	onCall    func(n int)
	lastOpts  transcribe.Options
	responses []string
}

func newMockTranscriber(responses ...string) *mockTranscriber {
	return &mockTranscriber{failAt: -1, responses: responses}
}

func (m *mockTranscriber) Transcribe(_ context.Context, audioPath string, opts transcribe.Options) (string, error) {
	m.mu.Lock()
	n := len(m.calls)
	m.calls = append(m.calls, audioPath)
	m.lastOpts = opts
	m.mu.Unlock()

	if m.onCall != nil {
		m.onCall(n)
	}
	if n == m.failAt {
		return "", m.failErr
	}
	if n < len(m.responses) {
		return m.responses[n], nil
	}
	return fmt.Sprintf("Part %d", n+1), nil
}

func (m *mockTranscriber) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	scratch string
	inputs  string
	ffmpeg  *fakeFFmpeg
	tr      *mockTranscriber
	p       *pipeline.Pipeline
}

func newHarness(t *testing.T, locErr error, opts ...pipeline.Option) *harness {
	t.Helper()
	h := &harness{
		scratch: t.TempDir(),
		inputs:  t.TempDir(),
		ffmpeg:  &fakeFFmpeg{duration: 120, transcodeSize: 2 * kib},
		tr:      newMockTranscriber(),
	}
	loc := fakeLocator{err: locErr}
	root := scratchRoot{root: h.scratch}
	conv := audio.NewConverter(loc,
		audio.WithConverterRunner(h.ffmpeg),
		audio.WithTempFileCreator(root),
	)
	seg := audio.NewSegmenter(loc,
		audio.WithSegmenterRunner(h.ffmpeg),
		audio.WithTempDirCreator(root),
	)
	opts = append([]pipeline.Option{pipeline.WithIDGenerator(func() string { return "run-1" })}, opts...)
	h.p = pipeline.New(conv, seg, h.tr, opts...)
	return h
}

// input creates a file of size bytes (sparse) in the inputs directory.
func (h *harness) input(t *testing.T, name string, size int64) string {
	t.Helper()
	p := filepath.Join(h.inputs, name)
	if err := writeSized(p, size); err != nil {
		t.Fatalf("create input: %v", err)
	}
	return p
}

// assertScratchEmpty fails if the run left anything in the scratch root.
func (h *harness) assertScratchEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.scratch)
	if err != nil {
		t.Fatalf("read scratch root: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("scratch root not empty after run: %v", names)
	}
}

func writeSized(path string, size int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
