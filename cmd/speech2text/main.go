package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/speech2text/internal/apierr"
	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/cli"
	"github.com/alnah/speech2text/internal/config"
	"github.com/alnah/speech2text/internal/ffmpeg"
	"github.com/alnah/speech2text/internal/interrupt"
	"github.com/alnah/speech2text/internal/lang"
	"github.com/alnah/speech2text/internal/logging"
	"github.com/alnah/speech2text/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitMedia         = 6
	ExitInterrupt     = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	root := cli.NewRootCmd(cli.DefaultEnv(), fmt.Sprintf("%s (commit: %s)", version, commit))

	err := root.ExecuteContext(ctx)
	if err == nil {
		return
	}

	code := exitCode(err)
	if handler.WasInterrupted() {
		code = ExitInterrupt
	}
	if code == ExitInterrupt {
		fmt.Fprintln(os.Stderr, "Interrupted.")
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	handler.Stop()
	os.Exit(code)
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	switch {
	case errors.Is(err, ffmpeg.ErrNotFound), errors.Is(err, cli.ErrAPIKeyMissing):
		return ExitSetup

	case errors.Is(err, audio.ErrFileNotFound), errors.Is(err, lang.ErrInvalid),
		errors.Is(err, transcribe.ErrInvalidFormat), errors.Is(err, cli.ErrOutputExists),
		errors.Is(err, logging.ErrInvalid), errors.Is(err, config.ErrUnknownKey):
		return ExitValidation

	case errors.Is(err, apierr.ErrRateLimit), errors.Is(err, apierr.ErrQuotaExceeded),
		errors.Is(err, apierr.ErrTimeout), errors.Is(err, apierr.ErrAuthFailed):
		return ExitTranscription

	case errors.Is(err, audio.ErrEncodingFailed), errors.Is(err, audio.ErrSegmentingFailed),
		errors.Is(err, audio.ErrProbeFailed), errors.Is(err, audio.ErrNoOutput),
		errors.Is(err, ffmpeg.ErrTimeout):
		return ExitMedia
	}

	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	// Sentinels come first: paths and ffmpeg stderr can contain the same words.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
