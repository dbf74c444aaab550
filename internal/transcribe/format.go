package transcribe

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ResponseFormat is the output format requested from the API.
type ResponseFormat string

// Supported response formats.
const (
	FormatText        ResponseFormat = ResponseFormat(openai.AudioResponseFormatText)
	FormatJSON        ResponseFormat = ResponseFormat(openai.AudioResponseFormatJSON)
	FormatSRT         ResponseFormat = ResponseFormat(openai.AudioResponseFormatSRT)
	FormatVTT         ResponseFormat = ResponseFormat(openai.AudioResponseFormatVTT)
	FormatVerboseJSON ResponseFormat = ResponseFormat(openai.AudioResponseFormatVerboseJSON)
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatText

// Formats returns the supported formats in display order.
func Formats() []ResponseFormat {
	return []ResponseFormat{FormatText, FormatJSON, FormatSRT, FormatVTT, FormatVerboseJSON}
}

// ParseResponseFormat validates s case-insensitively. Empty means DefaultFormat.
func ParseResponseFormat(s string) (ResponseFormat, error) {
	if s == "" {
		return DefaultFormat, nil
	}
	f := ResponseFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (use text, json, srt, vtt or verbose_json)", ErrInvalidFormat, s)
}

// Extension returns the conventional output file extension for f.
func (f ResponseFormat) Extension() string {
	switch f {
	case FormatJSON, FormatVerboseJSON:
		return ".json"
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	default:
		return ".txt"
	}
}
