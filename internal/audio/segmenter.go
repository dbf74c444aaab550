package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/alnah/speech2text/internal/ffmpeg"
	"github.com/alnah/speech2text/internal/format"
)

// segmentTimeout bounds a single ffmpeg segment run.
const segmentTimeout = 600 * time.Second

// Scratch directory and chunk naming.
const (
	scratchDirPrefix  = "speech2text_split_"
	chunkNameTemplate = "chunk_%03d.mp3"
	chunkGlob         = "chunk_*.mp3"
)

// chunkNamePattern matches segment muxer output and captures the index.
// The index widens past three digits from chunk_1000.mp3 on.
var chunkNamePattern = regexp.MustCompile(`^chunk_(\d+)\.mp3$`)

// Chunk is one segment file produced by the Segmenter.
type Chunk struct {
	Path      string        // Absolute path to the chunk file.
	Index     int           // Zero-based position in the source audio.
	StartTime time.Duration // Nominal start offset, Index * segment length.
}

// Name returns the chunk file name, e.g. "chunk_001.mp3".
func (c Chunk) Name() string {
	return filepath.Base(c.Path)
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d (%s) @ %s", c.Index, c.Name(), format.Duration(c.StartTime))
}

// ChunkName returns the file name the segmenter gives the chunk at index.
func ChunkName(index int) string {
	return fmt.Sprintf(chunkNameTemplate, index)
}

// SegmentSet is the scratch directory holding the chunks of one split,
// with chunks in segment index order.
type SegmentSet struct {
	Dir    string
	Chunks []Chunk

	// owner is set only by Segment; a set without one owns nothing on disk.
	owner fileRemover
}

// Cleanup removes the scratch directory created by Segment and everything in it.
// It is a no-op for sets Segment did not return, and safe to call twice.
func (s SegmentSet) Cleanup() error {
	if s.Dir == "" || s.owner == nil {
		return nil
	}
	return s.owner.RemoveAll(s.Dir)
}

// Segmenter splits audio into fixed-length mp3 chunks with ffmpeg's segment muxer.
type Segmenter struct {
	locator toolLocator
	cmd     commandRunner
	tempDir tempDirCreator
	files   fileRemover
	logger  *slog.Logger
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithSegmenterRunner sets the command runner for Segmenter.
func WithSegmenterRunner(r commandRunner) SegmenterOption {
	return func(s *Segmenter) {
		s.cmd = r
	}
}

// WithTempDirCreator sets the temp directory creator for Segmenter.
func WithTempDirCreator(t tempDirCreator) SegmenterOption {
	return func(s *Segmenter) {
		s.tempDir = t
	}
}

// WithSegmenterFileRemover sets the file remover for Segmenter.
func WithSegmenterFileRemover(f fileRemover) SegmenterOption {
	return func(s *Segmenter) {
		s.files = f
	}
}

// WithSegmenterLogger sets the logger for Segmenter.
func WithSegmenterLogger(l *slog.Logger) SegmenterOption {
	return func(s *Segmenter) {
		s.logger = l
	}
}

// NewSegmenter creates a Segmenter that finds ffmpeg through locator.
func NewSegmenter(locator toolLocator, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		locator: locator,
		cmd:     ffmpeg.NewExecutor(),
		tempDir: osTempDirCreator{},
		files:   osFileRemover{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment splits path into chunks of plan.SegmentSeconds inside a fresh scratch directory.
//
// The caller owns the returned SegmentSet and must call Cleanup. On error no
// directory is left behind. The number of chunks is whatever the encoder
// wrote, which may differ from plan.Segments.
func (s *Segmenter) Segment(ctx context.Context, path string, plan ChunkPlan) (SegmentSet, error) {
	ffmpegPath, err := s.locator.Resolve(ctx)
	if err != nil {
		return SegmentSet{}, err
	}

	dir, err := s.tempDir.MkdirTemp("", scratchDirPrefix+"*")
	if err != nil {
		return SegmentSet{}, fmt.Errorf("create scratch directory: %w", err)
	}

	s.logger.Debug("segmenting", "input", path, "dir", dir, "plan", plan.String())
	if _, err := s.cmd.Run(ctx, ffmpegPath, segmentArgs(path, dir, plan.SegmentSeconds), segmentTimeout); err != nil {
		_ = s.files.RemoveAll(dir) // best-effort cleanup; original error takes precedence
		return SegmentSet{}, classifyRunError(ErrSegmentingFailed, "segment "+path, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, chunkGlob))
	if err != nil {
		_ = s.files.RemoveAll(dir)
		return SegmentSet{}, fmt.Errorf("list chunks in %s: %w", dir, err)
	}
	paths := sortChunkPaths(matches)
	if len(paths) == 0 {
		_ = s.files.RemoveAll(dir)
		return SegmentSet{}, fmt.Errorf("%w: %s", ErrNoOutput, dir)
	}

	if len(paths) != plan.Segments {
		s.logger.Debug("segment count differs from plan",
			"planned", plan.Segments, "produced", len(paths))
	}

	chunks := make([]Chunk, len(paths))
	for i, p := range paths {
		chunks[i] = Chunk{
			Path:      p,
			Index:     i,
			StartTime: time.Duration(i) * plan.SegmentDuration(),
		}
	}
	return SegmentSet{Dir: dir, Chunks: chunks, owner: s.files}, nil
}

// sortChunkPaths keeps the paths named like segment muxer output and orders
// them by their numeric index. A lexical sort would put chunk_1000 before chunk_101.
func sortChunkPaths(matches []string) []string {
	type indexed struct {
		path  string
		index int
	}
	var found []indexed
	for _, p := range matches {
		m := chunkNamePattern.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, indexed{path: p, index: n})
	}
	slices.SortFunc(found, func(a, b indexed) int { return a.index - b.index })

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths
}

// segmentArgs returns the segment muxer arguments writing dir/chunk_NNN.mp3.
func segmentArgs(input, dir string, segmentSeconds int) []string {
	args := []string{
		"-i", input,
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
	}
	args = append(args, mp3EncodingArgs()...)
	return append(args, "-y", filepath.Join(dir, chunkNameTemplate))
}
