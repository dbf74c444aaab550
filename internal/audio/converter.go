package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/alnah/speech2text/internal/ffmpeg"
)

// Subprocess budgets.
const (
	transcodeTimeout = 300 * time.Second
	probeTimeout     = 30 * time.Second
)

// transcodePattern names temp files created when Transcode is given no output path.
const transcodePattern = "speech2text-*.mp3"

// Conversion tells the caller which file to use and whether it owns it.
// When Produced is true, Path is a temporary file the caller must remove.
// When false, Path is the caller's original input and must never be deleted.
type Conversion struct {
	Path     string
	Produced bool
}

// Converter normalizes media into an API-acceptable mp3 and probes durations.
type Converter struct {
	locator toolLocator
	cmd     commandRunner
	temp    tempFileCreator
	statter fileStatter
	files   fileRemover
	logger  *slog.Logger
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithConverterRunner sets the command runner for Converter.
func WithConverterRunner(r commandRunner) ConverterOption {
	return func(c *Converter) {
		c.cmd = r
	}
}

// WithTempFileCreator sets the temp file creator used when no output path is given.
func WithTempFileCreator(t tempFileCreator) ConverterOption {
	return func(c *Converter) {
		c.temp = t
	}
}

// WithConverterFileStatter sets the file statter for Converter.
func WithConverterFileStatter(s fileStatter) ConverterOption {
	return func(c *Converter) {
		c.statter = s
	}
}

// WithConverterFileRemover sets the file remover for Converter.
func WithConverterFileRemover(f fileRemover) ConverterOption {
	return func(c *Converter) {
		c.files = f
	}
}

// WithConverterLogger sets the logger for Converter.
func WithConverterLogger(l *slog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = l
	}
}

// NewConverter creates a Converter that finds its binaries through locator.
func NewConverter(locator toolLocator, opts ...ConverterOption) *Converter {
	c := &Converter{
		locator: locator,
		cmd:     ffmpeg.NewExecutor(),
		temp:    osTempFileCreator{},
		statter: osFileStatter{},
		files:   osFileRemover{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocateEncoder returns the path of the ffmpeg binary without running it.
func (c *Converter) LocateEncoder(ctx context.Context) (string, error) {
	return c.locator.Resolve(ctx)
}

// Transcode converts input into a VBR mp3 at output.
//
// Directly acceptable inputs are returned unchanged and no subprocess runs.
// An empty output reserves a temp file. On any failure the partial output
// is removed before returning.
func (c *Converter) Transcode(ctx context.Context, input, output string) (Conversion, error) {
	if _, err := statWith(c.statter, input); err != nil {
		return Conversion{}, err
	}
	if Classify(input) == DirectlyAcceptable {
		return Conversion{Path: input}, nil
	}

	ffmpegPath, err := c.locator.Resolve(ctx)
	if err != nil {
		return Conversion{}, err
	}

	if output == "" {
		output, err = c.temp.CreateTemp("", transcodePattern)
		if err != nil {
			return Conversion{}, fmt.Errorf("create temp file: %w", err)
		}
	}

	c.logger.Debug("transcoding", "input", input, "output", output)
	if _, err := c.cmd.Run(ctx, ffmpegPath, transcodeArgs(input, output), transcodeTimeout); err != nil {
		_ = c.files.Remove(output) // best-effort cleanup; original error takes precedence
		return Conversion{}, classifyRunError(ErrEncodingFailed, "transcode "+input, err)
	}

	return Conversion{Path: output, Produced: true}, nil
}

// transcodeArgs returns the encoder arguments: drop video, VBR mp3 quality 2, overwrite.
func transcodeArgs(input, output string) []string {
	args := []string{"-i", input}
	args = append(args, mp3EncodingArgs()...)
	return append(args, "-y", output)
}

// mp3EncodingArgs is the fixed encoding policy shared by transcoding and segmenting.
func mp3EncodingArgs() []string {
	return []string{
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
	}
}

// probeOutput is the subset of "ffprobe -print_format json -show_format" we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration asks ffprobe for the container duration of path.
func (c *Converter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	probePath, err := c.locator.ResolveProbe(ctx)
	if err != nil {
		return 0, err
	}

	args := []string{"-v", "quiet", "-print_format", "json", "-show_format", path}
	res, err := c.cmd.Run(ctx, probePath, args, probeTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	seconds, err := parseProbeDuration([]byte(res.Stdout))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// parseProbeDuration extracts format.duration in seconds from ffprobe JSON.
func parseProbeDuration(data []byte) (float64, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, errors.New("no duration in ffprobe output")
	}
	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid duration %q", out.Format.Duration)
	}
	if seconds > maxMediaSeconds {
		return 0, fmt.Errorf("duration %q exceeds %d seconds", out.Format.Duration, maxMediaSeconds)
	}
	return seconds, nil
}

// classifyRunError maps an Executor error onto the package taxonomy.
// Exit failures wrap sentinel and keep the *ffmpeg.ExitError reachable.
// Timeouts and cancellation keep their own identity.
func classifyRunError(sentinel error, op string, err error) error {
	var exitErr *ffmpeg.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %w", sentinel, exitErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}
