package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
)

const (
	// binaryName is the base name of the ffmpeg binary.
	binaryName = "ffmpeg"

	// probeBinaryName is the base name of the ffprobe binary.
	probeBinaryName = "ffprobe"

	// binaryExtWindows is the file extension for Windows executables.
	binaryExtWindows = ".exe"

	// minFFmpegMajorVersion is the minimum supported ffmpeg version.
	// Older builds lack a reliable segment muxer and JSON ffprobe output.
	minFFmpegMajorVersion = 4
)

// Environment variables for custom binary paths.
const (
	EnvFFmpegPath  = "FFMPEG_PATH"
	EnvFFprobePath = "FFPROBE_PATH"
)

// ---------------------------------------------------------------------------
// Resolver - testable binary resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver locates the ffmpeg encoder and the ffprobe prober.
// It never spawns a process: lookup is a pure filesystem/PATH operation.
type Resolver struct {
	reader fileReader
	env    envProvider
	goos   string

	// Explicit paths from configuration; they win over environment variables.
	ffmpegPath  string
	ffprobePath string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileReader sets the file reader implementation.
func WithFileReader(r fileReader) ResolverOption {
	return func(res *Resolver) { res.reader = r }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithPlatform sets the target OS (for testing cross-platform behavior).
func WithPlatform(goos string) ResolverOption {
	return func(res *Resolver) { res.goos = goos }
}

// WithFFmpegPath pins the ffmpeg binary, e.g. from the config file.
func WithFFmpegPath(p string) ResolverOption {
	return func(res *Resolver) { res.ffmpegPath = p }
}

// WithFFprobePath pins the ffprobe binary, e.g. from the config file.
func WithFFprobePath(p string) ResolverOption {
	return func(res *Resolver) { res.ffprobePath = p }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reader: osFileReader{},
		env:    osEnvProvider{},
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. Path pinned via WithFFmpegPath (error if set but missing)
//  2. FFMPEG_PATH environment variable (error if set but missing)
//  3. System PATH
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if p, ok, err := r.pinned(r.ffmpegPath, EnvFFmpegPath); ok || err != nil {
		return p, err
	}

	if p, err := r.env.LookPath(r.binary(binaryName)); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("%w: %s is not installed or not in PATH\n\n%s",
		ErrNotFound, binaryName, r.manualInstallInstructions())
}

// ResolveProbe finds ffprobe using the following precedence:
//  1. Path pinned via WithFFprobePath (error if set but missing)
//  2. FFPROBE_PATH environment variable (error if set but missing)
//  3. An ffprobe sitting next to the resolved ffmpeg binary
//  4. System PATH
func (r *Resolver) ResolveProbe(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if p, ok, err := r.pinned(r.ffprobePath, EnvFFprobePath); ok || err != nil {
		return p, err
	}

	if ffmpegPath, err := r.Resolve(ctx); err == nil {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), r.binary(probeBinaryName))
		if info, err := r.reader.Stat(sibling); err == nil && !info.IsDir() {
			return sibling, nil
		}
	}

	if p, err := r.env.LookPath(r.binary(probeBinaryName)); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("%w: %s is not found in PATH (usually installed with ffmpeg)\n\n%s",
		ErrNotFound, probeBinaryName, r.manualInstallInstructions())
}

// pinned checks an explicit path, then the environment variable.
// ok reports whether either was set; a set-but-missing path is an error.
func (r *Resolver) pinned(explicit, envKey string) (path string, ok bool, err error) {
	source := "configured path"
	p := explicit
	if p == "" {
		p = r.env.Getenv(envKey)
		source = envKey
	}
	if p == "" {
		return "", false, nil
	}
	info, err := r.reader.Stat(p)
	if err != nil {
		return "", true, fmt.Errorf("%w: %s is set to %q but binary not found",
			ErrNotFound, source, p)
	}
	if info.IsDir() {
		return "", true, fmt.Errorf("%w: %s is set to %q, which is a directory",
			ErrNotFound, source, p)
	}
	return p, true, nil
}

// binary returns the platform-specific executable name.
func (r *Resolver) binary(name string) string {
	if r.goos == "windows" {
		return name + binaryExtWindows
	}
	return name
}

// manualInstallInstructions returns platform-specific instructions.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg:
  brew install ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "linux":
		return `To install FFmpeg:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "windows":
		return `To install FFmpeg:
  winget install ffmpeg

Or download from https://www.gyan.dev/ffmpeg/builds/ and set FFMPEG_PATH and FFPROBE_PATH.`
	default:
		return `To install FFmpeg, download from https://ffmpeg.org/download.html
Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	}
}
