package audio

import (
	"path/filepath"
	"slices"
	"strings"
)

// FormatKind tells whether a file can be sent to the transcription API as is.
type FormatKind int

const (
	// RequiresTranscoding is the zero value: unknown extensions are always converted.
	RequiresTranscoding FormatKind = iota
	// DirectlyAcceptable marks a container the API accepts without conversion.
	DirectlyAcceptable
)

func (k FormatKind) String() string {
	if k == DirectlyAcceptable {
		return "directly acceptable"
	}
	return "requires transcoding"
}

// acceptedExtensions lists the containers the transcription API accepts, without dot.
var acceptedExtensions = map[string]bool{
	"flac": true,
	"m4a":  true,
	"mp3":  true,
	"mp4":  true,
	"mpeg": true,
	"mpga": true,
	"ogg":  true,
	"wav":  true,
	"webm": true,
}

// Classify decides from the file extension alone whether path needs transcoding.
// Matching is case-insensitive. A missing extension requires transcoding.
func Classify(path string) FormatKind {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if acceptedExtensions[strings.ToLower(ext)] {
		return DirectlyAcceptable
	}
	return RequiresTranscoding
}

// SupportedFormats returns the accepted extensions in sorted order.
func SupportedFormats() []string {
	formats := make([]string, 0, len(acceptedExtensions))
	for ext := range acceptedExtensions {
		formats = append(formats, ext)
	}
	slices.Sort(formats)
	return formats
}
