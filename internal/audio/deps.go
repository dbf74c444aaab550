package audio

import (
	"context"
	"os"
	"time"

	"github.com/alnah/speech2text/internal/ffmpeg"
)

// commandRunner runs a resolved binary with a wall-clock budget.
// *ffmpeg.Executor satisfies it.
type commandRunner interface {
	Run(ctx context.Context, path string, args []string, timeout time.Duration) (ffmpeg.Result, error)
}

// toolLocator finds the encoder and prober binaries.
// *ffmpeg.Resolver satisfies it.
type toolLocator interface {
	Resolve(ctx context.Context) (string, error)
	ResolveProbe(ctx context.Context) (string, error)
}

// tempDirCreator creates temporary directories.
type tempDirCreator interface {
	MkdirTemp(dir, pattern string) (string, error)
}

// tempFileCreator reserves a temporary file name.
type tempFileCreator interface {
	CreateTemp(dir, pattern string) (string, error)
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// fileRemover removes files and directories.
type fileRemover interface {
	Remove(name string) error
	RemoveAll(path string) error
}

// --- Default implementations using real OS functions ---

var (
	_ commandRunner = (*ffmpeg.Executor)(nil)
	_ toolLocator   = (*ffmpeg.Resolver)(nil)
)

// osTempDirCreator implements tempDirCreator using os.MkdirTemp.
type osTempDirCreator struct{}

func (osTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

// osTempFileCreator implements tempFileCreator using os.CreateTemp.
// The file is created empty and closed; the encoder overwrites it.
type osTempFileCreator struct{}

func (osTempFileCreator) CreateTemp(dir, pattern string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// osFileRemover implements fileRemover using os.Remove and os.RemoveAll.
type osFileRemover struct{}

func (osFileRemover) Remove(name string) error {
	return os.Remove(name)
}

func (osFileRemover) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
