package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/alnah/speech2text/internal/audio"
	"github.com/alnah/speech2text/internal/format"
	"github.com/alnah/speech2text/internal/pipeline"
)

// PlanCmd creates the plan command.
func PlanCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <media-file>",
		Short: "Show how a file would be converted and split",
		Long: `Show how a file would be processed without calling the API.

Reports the input size, whether conversion to mp3 is needed, the audio
duration, and the chunks the file would be split into. Files that need
conversion are transcoded to a temporary file to measure their real size;
it is removed before the command exits.`,
		Example: `  speech2text plan lecture.mkv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, env, g, args[0])
		},
	}
}

func runPlan(cmd *cobra.Command, env *Env, g *globalFlags, input string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup(env, g)
	if err != nil {
		return err
	}
	if _, err := audio.Stat(input); err != nil {
		return err
	}

	tc := env.ToolchainFactory.NewToolchain(cfg, logger)
	p := env.PipelineFactory.NewPipeline(tc, nil, logger)

	pv, err := p.Plan(ctx, input)
	if err != nil {
		return err
	}
	renderPreview(env.Stdout, pv)
	return nil
}

// renderPreview writes a summary followed by the chunk table.
func renderPreview(w io.Writer, pv pipeline.Preview) {
	conversion := "no"
	if pv.NeedsConversion {
		conversion = fmt.Sprintf("yes (mp3, %s)", format.Size(pv.AudioSize))
	}
	split := "no"
	if pv.Split {
		split = pv.Plan.String()
	}

	_, _ = fmt.Fprintf(w, "Input:      %s (%s, %s)\n", pv.Input.Name(), format.Size(pv.Input.Size), pv.Input.Kind())
	_, _ = fmt.Fprintf(w, "Duration:   %s\n", format.Duration(pv.Duration))
	_, _ = fmt.Fprintf(w, "Convert:    %s\n", conversion)
	_, _ = fmt.Fprintf(w, "Split:      %s (limit %s)\n", split, format.Size(pv.MaxChunkSize))
	_, _ = fmt.Fprintln(w)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Chunk", "Start", "End", "Length"})
	for _, s := range pv.Segments() {
		name := "(whole file)"
		if pv.Split {
			name = audio.ChunkName(s.Index)
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(s.Index),
			name,
			format.Duration(s.Start),
			format.Duration(s.End),
			format.DurationHuman(s.End - s.Start),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	_, _ = fmt.Fprintln(w, tw.Render())
}
