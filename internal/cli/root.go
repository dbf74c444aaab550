package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alnah/speech2text/internal/config"
	"github.com/alnah/speech2text/internal/logging"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	verbose   bool
	quiet     bool
	logFormat string
}

// NewRootCmd creates the speech2text root command with all subcommands.
func NewRootCmd(env *Env, version string) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "speech2text",
		Short: "Transcribe audio and video files with OpenAI",
		Long: `Transcribe audio and video files with OpenAI's transcription API.

Inputs in formats the API does not accept are converted to mp3 with ffmpeg.
Audio larger than 25 MiB is split into fixed-length chunks that are
transcribed in order and joined.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "Only log errors")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: auto, text, json (default from config)")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(TranscribeCmd(env, g))
	root.AddCommand(PlanCmd(env, g))
	root.AddCommand(DoctorCmd(env, g))
	root.AddCommand(ConfigCmd(env))

	return root
}

// setup loads configuration and builds the logger for one command run.
func setup(env *Env, g *globalFlags) (config.Config, *slog.Logger, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	switch {
	case g.verbose:
		level = "debug"
	case g.quiet:
		level = "error"
	}
	format := cfg.LogFormat
	if g.logFormat != "" {
		format = g.logFormat
	}

	logger, err := logging.New(logging.Options{Level: level, Format: format, Writer: env.Stderr})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
