package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/config"
	"github.com/alnah/speech2text/internal/lang"
	"github.com/alnah/speech2text/internal/transcribe"
)

// EnvOpenAIAPIKey holds the API key used for transcription.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// transcribeOptions holds the parsed transcribe flags.
type transcribeOptions struct {
	model      string
	language   string
	format     string
	output     string
	prompt     string
	maxRetries int

	maxRetriesSet bool
}

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env, g *globalFlags) *cobra.Command {
	var opts transcribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Transcribe an audio or video file",
		Long: `Transcribe an audio or video file using OpenAI's transcription API.

Files the API accepts directly (` + strings.Join(audio.SupportedFormats(), ", ") + `)
are uploaded as-is when small enough. Anything else is converted to mp3 first.
Audio over 25 MiB is split into equal-length chunks, transcribed one after
the other, and joined with newlines.

The transcript is printed to stdout unless --output is given.`,
		Example: `  speech2text transcribe interview.mp3
  speech2text transcribe lecture.mkv -l fr -o lecture.txt
  speech2text transcribe meeting.m4a -f srt -o meeting.srt
  speech2text transcribe talk.wav --prompt "Kubernetes, etcd, kubelet"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.maxRetriesSet = cmd.Flags().Changed("max-retries")
			return runTranscribe(cmd, env, g, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Transcription model (default from config, else whisper-1)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Audio language (ISO 639-1 code, e.g., en, fr, pt-BR); empty auto-detects")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Response format: text, json, srt, vtt, verbose_json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout); the format's extension is added if missing")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Context to guide the model, e.g. names and jargon")
	cmd.Flags().IntVar(&opts.maxRetries, "max-retries", transcribe.DefaultMaxRetries, "Retries per chunk on transient API errors (0 disables)")

	return cmd
}

// applyFlags overlays explicitly given flags on cfg.
func (o transcribeOptions) applyFlags(cfg config.Config) config.Config {
	if o.model != "" {
		cfg.Model = o.model
	}
	if o.language != "" {
		cfg.Language = o.language
	}
	if o.format != "" {
		cfg.ResponseFormat = o.format
	}
	if o.maxRetriesSet {
		cfg.MaxRetries = o.maxRetries
	}
	return cfg
}

// runTranscribe executes the transcription pipeline.
// Validation order: config -> input exists -> language -> format -> output -> API key.
func runTranscribe(cmd *cobra.Command, env *Env, g *globalFlags, input string, opts transcribeOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	cfg, logger, err := setup(env, g)
	if err != nil {
		return err
	}
	cfg = opts.applyFlags(cfg)

	if _, err := audio.Stat(input); err != nil {
		return err
	}
	if err := lang.Validate(cfg.Language); err != nil {
		return err
	}
	format, err := transcribe.ParseResponseFormat(cfg.ResponseFormat)
	if err != nil {
		return err
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("--max-retries must not be negative: %d", cfg.MaxRetries)
	}

	output := ""
	if opts.output != "" {
		output = config.ResolveOutputPath(opts.output, cfg.OutputDir, "")
		if filepath.Ext(output) == "" {
			output += format.Extension()
		}
		if err := checkOutputFree(output); err != nil {
			return err
		}
	}

	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	// === SETUP ===

	tc := env.ToolchainFactory.NewToolchain(cfg, logger)
	ffmpegPath, err := tc.Resolve(ctx)
	if err != nil {
		return err
	}
	tc.Check(ctx, ffmpegPath)

	t := env.TranscriberFactory.NewTranscriber(apiKey, cfg, logger)
	p := env.PipelineFactory.NewPipeline(tc, t, logger)

	// === TRANSCRIPTION ===

	logger.Info("transcribing",
		"model", cfg.Model, "language", lang.DisplayName(cfg.Language), "format", format)

	res, err := p.Run(ctx, input, transcribe.Options{
		Model:          cfg.Model,
		Language:       cfg.Language,
		ResponseFormat: format,
		Prompt:         opts.prompt,
	})
	if err != nil {
		return err
	}

	// === WRITE OUTPUT ===

	if output == "" {
		return writeStdout(env.Stdout, res.Text)
	}
	if err := writeFileExclusive(output, res.Text); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	return nil
}
