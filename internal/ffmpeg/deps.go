package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// ---------------------------------------------------------------------------
// Interfaces - local to this package, following Go idiom
// ---------------------------------------------------------------------------

// fileReader stats candidate binary paths.
type fileReader interface {
	Stat(name string) (os.FileInfo, error)
}

// envProvider reads FFMPEG_PATH/FFPROBE_PATH and searches PATH.
type envProvider interface {
	Getenv(key string) string
	LookPath(file string) (string, error)
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to standard library
// ---------------------------------------------------------------------------

// Compile-time interface verification.
var (
	_ fileReader  = osFileReader{}
	_ envProvider = osEnvProvider{}
	_ runFn       = osRun
)

type osFileReader struct{}

func (osFileReader) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

type osEnvProvider struct{}

func (osEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (osEnvProvider) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// osRun runs path as a child process and buffers both output streams.
// A non-zero exit is reported through Result.ExitCode, not as an error,
// unless ctx ended first.
func osRun(ctx context.Context, path string, args []string) (Result, error) {
	// #nosec G204 -- path is a resolved ffmpeg/ffprobe binary, args are built internally
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
