package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrEncodingFailed indicates ffmpeg exited non-zero while transcoding.
var ErrEncodingFailed = errors.New("audio encoding failed")

// ErrSegmentingFailed indicates ffmpeg exited non-zero while splitting audio into chunks.
var ErrSegmentingFailed = errors.New("audio segmenting failed")

// ErrProbeFailed indicates ffprobe could not report a usable duration.
var ErrProbeFailed = errors.New("duration probe failed")

// ErrNoOutput indicates the segmenter exited successfully but wrote no chunk files.
var ErrNoOutput = errors.New("segmenter produced no chunks")
