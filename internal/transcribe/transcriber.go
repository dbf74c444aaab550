package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/speech2text/internal/apierr"
	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/lang"
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = openai.Whisper1

// Default retry configuration.
const (
	DefaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// Options configures transcription behavior.
type Options struct {
	// Model is the API model name. Empty means DefaultModel.
	Model string

	// Language is a BCP 47 hint. Only the base code is sent; empty means auto-detect.
	Language string

	// ResponseFormat selects the API output format. Empty means DefaultFormat.
	ResponseFormat ResponseFormat

	// Prompt provides context to improve accuracy, e.g. domain vocabulary.
	Prompt string
}

// Transcriber transcribes audio files to text.
type Transcriber interface {
	// Transcribe converts an audio file to text.
	// audioPath must be in a format the API accepts and within its size limit.
	Transcribe(ctx context.Context, audioPath string, opts Options) (string, error)
}

// audioTranscriber is the subset of *openai.Client used here.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// NewClient creates an OpenAI client. An empty baseURL keeps the public endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAITranscriber transcribes audio using OpenAI's transcription API.
// Transient errors are retried with exponential backoff.
type OpenAITranscriber struct {
	client     audioTranscriber
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *slog.Logger
}

// TranscriberOption configures an OpenAITranscriber.
type TranscriberOption func(*OpenAITranscriber)

// WithMaxRetries sets the maximum number of retry attempts. Zero disables retries.
func WithMaxRetries(n int) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *slog.Logger) TranscriberOption {
	return func(t *OpenAITranscriber) {
		t.logger = l
	}
}

// NewOpenAITranscriber creates a new OpenAITranscriber backed by client.
func NewOpenAITranscriber(client *openai.Client, opts ...TranscriberOption) *OpenAITranscriber {
	return newTranscriber(client, opts...)
}

func newTranscriber(client audioTranscriber, opts ...TranscriberOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:     client,
		maxRetries: DefaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe transcribes an audio file using OpenAI's API.
// For every format the transcript text is returned; structured formats
// (json, verbose_json) yield their text field.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file: %w", err)
	}

	req := buildRequest(audioPath, opts)
	cfg := apierr.RetryConfig{
		MaxRetries: t.maxRetries,
		BaseDelay:  t.baseDelay,
		MaxDelay:   t.maxDelay,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			t.logger.Warn("transcription request failed, retrying",
				"file", audioPath, "attempt", attempt, "delay", delay, "error", err)
		},
	}

	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return "", classifyError(err)
		}
		return resp.Text, nil
	}, apierr.IsRetryable)
}

// buildRequest maps Options onto an API request, filling defaults.
func buildRequest(audioPath string, opts Options) openai.AudioRequest {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	format := opts.ResponseFormat
	if format == "" {
		format = DefaultFormat
	}
	return openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormat(format),
		Prompt:   opts.Prompt,
		Language: lang.BaseCode(opts.Language), // the API only accepts ISO 639-1 base codes
	}
}

// classifyError maps OpenAI API errors to apierr sentinels.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if classified := apierr.FromStatus(apiErr.HTTPStatusCode, apiErr.Message); classified != nil {
			return classified
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if classified := apierr.FromStatus(reqErr.HTTPStatusCode, reqErr.Error()); classified != nil {
			return classified
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}

// TranscribeAll transcribes chunks one at a time, in order.
// The first failure aborts the run; no partial result is returned.
// progress, if non-nil, is called after each chunk completes.
func TranscribeAll(
	ctx context.Context,
	chunks []audio.Chunk,
	t Transcriber,
	opts Options,
	progress func(done, total int),
) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	results := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := t.Transcribe(ctx, chunk.Path, opts)
		if err != nil {
			return nil, fmt.Errorf("chunk %d (%s): %w", chunk.Index, chunk.Name(), err)
		}
		results = append(results, text)
		if progress != nil {
			progress(len(results), len(chunks))
		}
	}
	return results, nil
}
