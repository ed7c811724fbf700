package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/host/memory"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/modehandler"
)

// replayReport is what replay prints.
type replayReport struct {
	Text      string
	Mode      mode.Mode
	Cursors   []cursor.Range
	UndoSteps int
	Status    string
}

func (r replayReport) write(w io.Writer) {
	fmt.Fprint(w, r.Text)
	if !strings.HasSuffix(r.Text, "\n") {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "--")
	fmt.Fprintf(w, "mode: %s\n", r.Mode.Name())
	stops := make([]string, len(r.Cursors))
	for i, c := range r.Cursors {
		if c.IsEmpty() {
			stops[i] = c.Stop.String()
		} else {
			stops[i] = c.String()
		}
	}
	fmt.Fprintf(w, "cursors: %s\n", strings.Join(stops, " "))
	fmt.Fprintf(w, "undo steps: %d\n", r.UndoSteps)
	if r.Status != "" {
		fmt.Fprintf(w, "status: %s\n", r.Status)
	}
}

// newReplayCmd creates the replay subcommand
func newReplayCmd(opts *options) *cobra.Command {
	var (
		keys      string
		startName string
	)
	cmd := &cobra.Command{
		Use:   "replay --keys <keys> [file|-]",
		Short: "Replay keys headlessly and print the result",
		Long: `Load a file (or stdin with "-"), feed the keys through the modal core and print
the resulting text, mode, cursors and number of undo steps.

Keys are written in Vim notation, e.g. "d2w", "ihello<Esc>" or "qqdd@q".
A key sequence left waiting for more keys is resolved as if the timeout
had fired.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readText(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			settings := *opts.settings
			if cmd.Flags().Changed("mode") {
				m, err := startMode(startName)
				if err != nil {
					return err
				}
				settings.StartInInsertMode = m == mode.Insert
			}

			report, err := replay(cmd.Context(), &settings, text, key.Split(keys))
			report.write(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&keys, "keys", "", "keys to replay, in Vim notation")
	cmd.Flags().StringVar(&startName, "mode", "normal", "mode to start in (normal or insert)")
	_ = cmd.MarkFlagRequired("keys")
	return cmd
}

// replay runs keys through a scheduler over an in-memory editor. The
// first unexpected error is returned along with the report.
func replay(ctx context.Context, settings *config.Settings, text string, keys []string) (replayReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ed := memory.NewEditor(text)
	s, err := newSession(settings, ed.Host())
	if err != nil {
		return replayReport{Text: text}, err
	}
	defer s.close()

	var (
		mu       sync.Mutex
		firstErr error
	)
	sc := modehandler.NewScheduler(ctx, s.handler, func(k string, res modehandler.Result, err error) {
		if err != nil {
			logger.Error("replay key failed", "key", k, "error", err)
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	})
	for _, k := range keys {
		sc.PostKey(k)
	}
	sc.PostKey(key.TimeoutFinished)

	var report replayReport
	sc.Do(func(h *modehandler.ModeHandler) {
		report = replayReport{
			Mode:    h.DisplayMode(),
			Cursors: h.Cursors(),
		}
	})
	sc.Stop()

	report.Text = ed.Text()
	report.UndoSteps = ed.History().StepCount()
	if statuses := ed.Statuses(); len(statuses) > 0 {
		report.Status = statuses[len(statuses)-1]
	}

	mu.Lock()
	defer mu.Unlock()
	return report, firstErr
}
