// Package pipeline turns one media file into one transcript.
//
// A run normalizes the input to an acceptable audio file, splits it when it
// exceeds the upload ceiling, transcribes the chunks in order and joins the
// results. Every temporary file or directory the run creates is released
// before Run returns, whether it succeeds or fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/format"
	"github.com/alnah/speech2text/internal/transcribe"
)

// Result is the outcome of a successful run.
type Result struct {
	// Text is the chunk transcripts joined with a newline, in chunk order.
	Text string

	RunID     string
	Chunks    int
	Plan      audio.ChunkPlan // zero when the audio was not split
	Converted bool            // a temporary transcode was produced
	Elapsed   time.Duration
}

// Pipeline orchestrates conversion, splitting and transcription.
type Pipeline struct {
	converter   mediaConverter
	segmenter   mediaSegmenter
	transcriber transcribe.Transcriber
	files       fileRemover
	maxChunk    int64
	newID       func() string
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxChunkSize overrides the upload ceiling in bytes. Non-positive values are ignored.
func WithMaxChunkSize(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxChunk = n
		}
	}
}

// WithLogger sets the logger. Each run adds its run ID.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithFileRemover sets the remover for transcoded intermediates.
func WithFileRemover(f fileRemover) Option {
	return func(p *Pipeline) {
		p.files = f
	}
}

// WithIDGenerator sets the run ID source.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		p.newID = fn
	}
}

// New creates a Pipeline from its three collaborators.
func New(conv mediaConverter, seg mediaSegmenter, t transcribe.Transcriber, opts ...Option) *Pipeline {
	p := &Pipeline{
		converter:   conv,
		segmenter:   seg,
		transcriber: t,
		files:       osFileRemover{},
		maxChunk:    audio.MaxChunkSize,
		newID:       uuid.NewString,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run transcribes input and returns the joined transcript.
//
// The encoder is located before anything is created, so a missing ffmpeg
// fails without side effects. The first chunk failure aborts the run and no
// partial transcript is returned. Cleanup failures are logged and never
// replace the run's own error.
func (p *Pipeline) Run(ctx context.Context, input string, opts transcribe.Options) (Result, error) {
	start := time.Now()
	res := Result{RunID: p.newID()}
	logger := p.logger.With("run", res.RunID)

	media, err := audio.Stat(input)
	if err != nil {
		return Result{}, err
	}
	if _, err := p.converter.LocateEncoder(ctx); err != nil {
		return Result{}, err
	}
	logger.Info("starting transcription",
		"input", media.Name(), "size", format.Size(media.Size), "kind", media.Kind())

	var rl releaseList
	defer func() { _ = rl.drain(logger) }()

	conv, err := p.convert(ctx, input, &rl)
	if err != nil {
		return Result{}, err
	}
	res.Converted = conv.Produced

	chunks, plan, err := p.split(ctx, conv.Path, &rl, logger)
	if err != nil {
		return Result{}, err
	}
	res.Plan = plan
	res.Chunks = len(chunks)

	texts, err := transcribe.TranscribeAll(ctx, chunks, p.transcriber, opts, func(done, total int) {
		logger.Info("chunk transcribed", "done", done, "total", total)
	})
	if err != nil {
		return Result{}, err
	}

	res.Text = strings.Join(texts, "\n")
	res.Elapsed = time.Since(start)
	logger.Info("transcription complete",
		"chunks", format.Plural(res.Chunks, "chunk"), "elapsed", format.DurationHuman(res.Elapsed))
	return res, nil
}

// convert transcodes input when needed and registers the intermediate for release.
func (p *Pipeline) convert(ctx context.Context, input string, rl *releaseList) (audio.Conversion, error) {
	conv, err := p.converter.Transcode(ctx, input, "")
	if err != nil {
		return audio.Conversion{}, err
	}
	if conv.Produced {
		rl.add("transcoded file "+conv.Path, func() error {
			if err := p.files.Remove(conv.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		})
	}
	return conv, nil
}

// split returns the chunks to transcribe. Audio within the ceiling is a
// single chunk and is never handed to the segmenter.
func (p *Pipeline) split(
	ctx context.Context,
	path string,
	rl *releaseList,
	logger *slog.Logger,
) ([]audio.Chunk, audio.ChunkPlan, error) {
	media, err := audio.Stat(path)
	if err != nil {
		return nil, audio.ChunkPlan{}, err
	}
	if media.Size <= p.maxChunk {
		return []audio.Chunk{{Path: path}}, audio.ChunkPlan{}, nil
	}

	duration, err := p.converter.ProbeDuration(ctx, path)
	if err != nil {
		return nil, audio.ChunkPlan{}, err
	}
	plan := audio.Plan(media.Size, p.maxChunk, duration.Seconds())
	logger.Info("splitting audio",
		"size", format.Size(media.Size), "duration", format.Duration(duration), "plan", plan.String())

	set, err := p.segmenter.Segment(ctx, path, plan)
	if err != nil {
		return nil, audio.ChunkPlan{}, err
	}
	rl.add("scratch directory "+set.Dir, set.Cleanup)

	if len(set.Chunks) == 0 {
		return nil, audio.ChunkPlan{}, fmt.Errorf("%w: %s", audio.ErrNoOutput, set.Dir)
	}
	return set.Chunks, plan, nil
}
