package pipeline

import (
	"context"
	"time"

	"github.com/alnah/speech2text/internal/audio"
)

// Preview describes what Run would do with an input, without transcribing.
type Preview struct {
	Input           audio.MediaFile
	NeedsConversion bool
	AudioSize       int64 // size of the audio that would be uploaded or split
	Duration        time.Duration
	MaxChunkSize    int64
	Split           bool
	Plan            audio.ChunkPlan // zero when Split is false
}

// Segment is one planned slice of the audio.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Segments returns the planned slices in order. The last one ends at Duration.
// An unsplit preview has a single segment covering the whole file.
func (pv Preview) Segments() []Segment {
	if !pv.Split {
		return []Segment{{Index: 0, End: pv.Duration}}
	}
	step := pv.Plan.SegmentDuration()
	segs := make([]Segment, 0, pv.Plan.Segments)
	for i := 0; i < pv.Plan.Segments; i++ {
		start := time.Duration(i) * step
		if i > 0 && start >= pv.Duration {
			break
		}
		end := min(start+step, pv.Duration)
		if i == pv.Plan.Segments-1 {
			end = pv.Duration
		}
		segs = append(segs, Segment{Index: i, Start: start, End: end})
	}
	return segs
}

// Plan reports how input would be processed. It may transcode to measure
// the real upload size; that intermediate is released before returning.
func (p *Pipeline) Plan(ctx context.Context, input string) (Preview, error) {
	logger := p.logger.With("run", p.newID())

	media, err := audio.Stat(input)
	if err != nil {
		return Preview{}, err
	}
	if _, err := p.converter.LocateEncoder(ctx); err != nil {
		return Preview{}, err
	}

	var rl releaseList
	defer func() { _ = rl.drain(logger) }()

	conv, err := p.convert(ctx, input, &rl)
	if err != nil {
		return Preview{}, err
	}
	converted, err := audio.Stat(conv.Path)
	if err != nil {
		return Preview{}, err
	}
	duration, err := p.converter.ProbeDuration(ctx, conv.Path)
	if err != nil {
		return Preview{}, err
	}

	pv := Preview{
		Input:           media,
		NeedsConversion: conv.Produced,
		AudioSize:       converted.Size,
		Duration:        duration,
		MaxChunkSize:    p.maxChunk,
		Split:           converted.Size > p.maxChunk,
	}
	if pv.Split {
		pv.Plan = audio.Plan(converted.Size, p.maxChunk, duration.Seconds())
	}
	return pv, nil
}
