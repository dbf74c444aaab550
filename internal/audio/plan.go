package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/alnah/speech2text/internal/format"
)

// MaxChunkSize is the largest file the transcription API accepts, in bytes.
const MaxChunkSize int64 = 25 * 1024 * 1024

// minSegmentSeconds keeps segments from degenerating on very short inputs.
const minSegmentSeconds = 10

// maxMediaSeconds is the longest duration accepted from a probe, 30 days.
const maxMediaSeconds = 30 * 24 * 60 * 60

// ChunkPlan describes how to split an oversize file.
// Segments is always >= 1 and SegmentSeconds always >= 10.
type ChunkPlan struct {
	Segments       int
	SegmentSeconds int
}

// SegmentDuration returns SegmentSeconds as a time.Duration.
func (p ChunkPlan) SegmentDuration() time.Duration {
	return time.Duration(p.SegmentSeconds) * time.Second
}

func (p ChunkPlan) String() string {
	return fmt.Sprintf("%s of %ds", format.Plural(p.Segments, "segment"), p.SegmentSeconds)
}

// Plan computes the split for a file of size bytes lasting seconds.
//
// Segments is size/maxChunk + 1 (integer division), which yields two
// segments for a file one byte over the ceiling. The size is a pre-encode
// estimate, so produced chunks are not guaranteed to stay under maxChunk.
func Plan(size, maxChunk int64, seconds float64) ChunkPlan {
	if maxChunk <= 0 {
		maxChunk = MaxChunkSize
	}
	if size < 0 {
		size = 0
	}
	segments := int(size/maxChunk) + 1

	perSegment := 0
	if seconds > 0 && !math.IsInf(seconds, 0) {
		seconds = min(seconds, maxMediaSeconds)
		perSegment = int(math.Floor(seconds / float64(segments)))
	}

	return ChunkPlan{
		Segments:       segments,
		SegmentSeconds: max(minSegmentSeconds, perSegment),
	}
}
