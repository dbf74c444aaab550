package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Result is the captured outcome of a subprocess that ran to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ---------------------------------------------------------------------------
// Executor - testable subprocess execution with dependency injection
// ---------------------------------------------------------------------------

// runFn runs a command and captures its output.
// Implementations report a process that exited on its own through Result.ExitCode
// with a nil error, and return an error only when the process could not start
// or was killed because ctx ended.
type runFn func(ctx context.Context, path string, args []string) (Result, error)

// Executor runs ffmpeg and ffprobe with injectable dependencies.
type Executor struct {
	run runFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunFunc sets a custom run function (for testing).
func WithRunFunc(fn runFn) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		run: osRun,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes path with args, bounded by timeout (zero means bounded by ctx only).
//
// A process that exits non-zero yields an *ExitError carrying the exit code and stderr.
// A process killed because timeout elapsed yields ErrTimeout. If ctx itself is
// canceled, the context error is returned so callers can tell an interrupt from a
// tool failure.
func (e *Executor) Run(ctx context.Context, path string, args []string, timeout time.Duration) (Result, error) {
	tool := filepath.Base(path)

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := e.run(runCtx, path, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", tool, ctxErr)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("%w: %s killed after %v", ErrTimeout, tool, timeout)
		}
		return res, fmt.Errorf("start %s: %w", tool, err)
	}

	if res.ExitCode != 0 {
		return res, &ExitError{Tool: tool, Code: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

// ---------------------------------------------------------------------------
// VersionChecker - minimum version warning
// ---------------------------------------------------------------------------

// versionTimeout bounds "ffmpeg -version".
const versionTimeout = 10 * time.Second

// VersionChecker verifies FFmpeg version requirements.
type VersionChecker struct {
	executor *Executor
	logger   *slog.Logger
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running FFmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionLogger sets the logger used for the below-minimum warning.
func WithVersionLogger(l *slog.Logger) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.logger = l }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Version returns the first line of "<binary> -version", e.g.
// "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers".
func (vc *VersionChecker) Version(ctx context.Context, binaryPath string) (string, error) {
	res, err := vc.executor.Run(ctx, binaryPath, []string{"-version"}, versionTimeout)
	if err != nil {
		return "", err
	}
	output := res.Stdout
	if strings.TrimSpace(output) == "" {
		output = res.Stderr
	}
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	if line == "" {
		return "", fmt.Errorf("empty version output from %s", filepath.Base(binaryPath))
	}
	return strings.TrimSpace(line), nil
}

// Check verifies that ffmpeg meets minimum version requirements.
// Logs a warning if version is below minimum but doesn't fail.
// Returns true if version was successfully checked, false if parsing failed.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) bool {
	line, err := vc.Version(ctx, ffmpegPath)
	if err != nil {
		return false // Can't check version, proceed anyway
	}

	major, ok := parseMajorVersion(line)
	if !ok {
		return false
	}

	if major < minFFmpegMajorVersion {
		vc.logger.Warn("ffmpeg version below recommended minimum",
			"detected", major, "recommended", minFFmpegMajorVersion)
	}
	return true
}

// parseMajorVersion reads the major version from lines like
// "ffmpeg version 6.1.1 ..." or "ffmpeg version n6.1.1 ...".
func parseMajorVersion(line string) (int, bool) {
	var major int
	if _, err := fmt.Sscanf(line, "ffmpeg version %d", &major); err == nil {
		return major, true
	}
	if _, err := fmt.Sscanf(line, "ffmpeg version n%d", &major); err == nil {
		return major, true
	}
	return 0, false
}
