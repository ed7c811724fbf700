package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/host/memory"
	"github.com/dshills/modalcore/internal/host/terminal"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/modehandler"
)

// newRunCmd creates the run subcommand
func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Edit a file in the terminal",
		Long: `Open a file in an interactive terminal session. Mouse clicks and drags move
the cursor and select. ":w" writes the file and ":q" quits.

When --config is given the settings file is watched and reloaded on change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create terminal: %w", err)
			}
			err = runTerminal(cmd.Context(), opts, path, screen)
			for _, e := range logger.Entries() {
				fmt.Fprintln(cmd.ErrOrStderr(), e.Format())
			}
			return err
		},
	}
}

// runTerminal edits path on screen until the user quits or a signal
// arrives.
func runTerminal(ctx context.Context, opts *options, path string, screen tcell.Screen) error {
	text, err := readText(path, os.Stdin)
	if err != nil {
		return err
	}

	ed := memory.NewEditor(text)
	term := terminal.New(screen, ed, path)
	s, err := newSession(opts.settings, term.Host())
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := term.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer term.Shutdown()

	sc := modehandler.NewScheduler(ctx, s.handler, func(k string, _ modehandler.Result, err error) {
		if err != nil {
			logger.Error("key failed", "key", k, "error", err)
			term.SetStatus(err.Error())
		}
	})
	defer sc.Stop()

	if opts.configPath != "" {
		w, err := config.Watch(opts.configPath, config.DefaultDebounce,
			func(settings *config.Settings) {
				sc.Do(func(*modehandler.ModeHandler) {
					if err := s.apply(settings); err != nil {
						term.SetStatus("settings not applied: " + err.Error())
						return
					}
					term.SetStatus("settings reloaded")
				})
			},
			func(err error) {
				sc.Do(func(*modehandler.ModeHandler) {
					term.SetStatus("settings: " + err.Error())
				})
			},
		)
		if err != nil {
			logger.Warn("config watch disabled", "path", opts.configPath, "error", err)
		} else {
			defer w.Close()
		}
	}

	logger.Info("session running", "file", path, "editor", s.handler.ID())
	if err := term.Run(ctx, sc); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
