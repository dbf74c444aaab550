package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// MediaFile is an observed reference to a file on disk.
// Size is the byte count at observation time; callers re-stat before relying on it.
type MediaFile struct {
	Path string
	Size int64
}

// Name returns the base name of the file.
func (m MediaFile) Name() string {
	return filepath.Base(m.Path)
}

// Kind classifies the file by extension.
func (m MediaFile) Kind() FormatKind {
	return Classify(m.Path)
}

// Stat observes path on the real filesystem.
func Stat(path string) (MediaFile, error) {
	return statWith(osFileStatter{}, path)
}

func statWith(statter fileStatter, path string) (MediaFile, error) {
	info, err := statter.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MediaFile{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return MediaFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return MediaFile{}, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return MediaFile{Path: path, Size: info.Size()}, nil
}
