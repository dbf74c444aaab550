package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/alnah/speech2text/internal/audio"
)

// mediaConverter normalizes input media and measures its duration.
type mediaConverter interface {
	LocateEncoder(ctx context.Context) (string, error)
	Transcode(ctx context.Context, input, output string) (audio.Conversion, error)
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// mediaSegmenter splits oversize audio into chunks.
type mediaSegmenter interface {
	Segment(ctx context.Context, path string, plan audio.ChunkPlan) (audio.SegmentSet, error)
}

// fileRemover abstracts removal of the transcoded intermediate.
type fileRemover interface {
	Remove(name string) error
}

type osFileRemover struct{}

func (osFileRemover) Remove(name string) error {
	return os.Remove(name)
}

// Compile-time interface compliance checks.
var (
	_ mediaConverter = (*audio.Converter)(nil)
	_ mediaSegmenter = (*audio.Segmenter)(nil)
	_ fileRemover    = osFileRemover{}
)
