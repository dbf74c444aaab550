package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/speech2text/internal/config"
	"github.com/alnah/speech2text/internal/logging"
)

// checkStatus is the outcome of one doctor check.
type checkStatus int

const (
	statusOK checkStatus = iota
	statusWarn
	statusFail
)

func (s checkStatus) String() string {
	switch s {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "FAIL"
	}
}

func (s checkStatus) color() text.Colors {
	switch s {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}

// checkResult is one row of the doctor report.
type checkResult struct {
	Name   string
	Status checkStatus
	Detail string
}

// DoctorCmd creates the doctor command.
func DoctorCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that speech2text can run on this machine",
		Long: `Check the local environment:

  ffmpeg, ffprobe   located (config, FFMPEG_PATH/FFPROBE_PATH, PATH) and runnable
  API key           OPENAI_API_KEY is set
  scratch dir       the temp directory is readable and writable
  config            the config file parses and its values are valid

Exits non-zero if any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), env, g)
		},
	}
}

func runDoctor(ctx context.Context, env *Env, g *globalFlags) error {
	cfg, loadErr := env.ConfigLoader.Load()
	if loadErr != nil {
		cfg = config.Default()
	}
	level := "error"
	if g.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Writer: env.Stderr})
	if err != nil {
		return err
	}
	tc := env.ToolchainFactory.NewToolchain(cfg, logger)

	results := make([]checkResult, 5)
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		results[0] = checkBinary(gctx, "ffmpeg", tc.Resolve, tc)
		return nil
	})
	grp.Go(func() error {
		results[1] = checkBinary(gctx, "ffprobe", tc.ResolveProbe, tc)
		return nil
	})
	grp.Go(func() error {
		results[2] = checkAPIKey(env.Getenv(EnvOpenAIAPIKey))
		return nil
	})
	grp.Go(func() error {
		results[3] = checkScratchDir(os.TempDir())
		return nil
	})
	grp.Go(func() error {
		results[4] = checkConfig(cfg, loadErr)
		return nil
	})
	if err := grp.Wait(); err != nil {
		return err
	}

	renderChecks(env.Stdout, results, logging.IsTerminal(env.Stdout))

	failed := 0
	for _, r := range results {
		if r.Status == statusFail {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(results), ErrChecksFailed)
	}
	return nil
}

// checkBinary locates a tool and reads its version line.
func checkBinary(
	ctx context.Context,
	name string,
	locate func(context.Context) (string, error),
	tc Toolchain,
) checkResult {
	path, err := locate(ctx)
	if err != nil {
		return checkResult{Name: name, Status: statusFail, Detail: firstLine(err.Error())}
	}
	version, err := tc.Version(ctx, path)
	if err != nil {
		return checkResult{Name: name, Status: statusWarn, Detail: fmt.Sprintf("%s (version unknown: %v)", path, err)}
	}
	return checkResult{Name: name, Status: statusOK, Detail: fmt.Sprintf("%s (%s)", path, version)}
}

func checkAPIKey(key string) checkResult {
	name := EnvOpenAIAPIKey
	if key == "" {
		return checkResult{Name: name, Status: statusFail, Detail: "not set (export " + name + "=sk-...)"}
	}
	return checkResult{Name: name, Status: statusOK, Detail: "set (" + maskKey(key) + ")"}
}

func checkScratchDir(dir string) checkResult {
	const name = "scratch dir"
	info, err := os.Stat(dir)
	if err != nil {
		return checkResult{Name: name, Status: statusFail, Detail: fmt.Sprintf("%s (stat: %v)", dir, err)}
	}
	if !info.IsDir() {
		return checkResult{Name: name, Status: statusFail, Detail: dir + " (not a directory)"}
	}
	if err := checkDirAccess(dir); err != nil {
		return checkResult{Name: name, Status: statusFail, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", dir, err)}
	}
	return checkResult{Name: name, Status: statusOK, Detail: dir + " (read/write ok)"}
}

func checkConfig(cfg config.Config, loadErr error) checkResult {
	const name = "config"
	p, _ := config.Path()
	if loadErr != nil {
		return checkResult{Name: name, Status: statusFail, Detail: loadErr.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return checkResult{Name: name, Status: statusFail, Detail: err.Error()}
	}
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return checkResult{Name: name, Status: statusOK, Detail: "defaults (no " + filepath.Base(p) + ")"}
	}
	return checkResult{Name: name, Status: statusOK, Detail: p}
}

// renderChecks writes the report table, colorizing statuses on a terminal.
func renderChecks(w io.Writer, results []checkResult, colorize bool) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, r := range results {
		status := r.Status.String()
		if colorize {
			status = r.Status.color().Sprint(status)
		}
		tw.AppendRow(table.Row{r.Name, status, r.Detail})
	}
	_, _ = fmt.Fprintln(w, tw.Render())
}

// maskKey keeps only the last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
