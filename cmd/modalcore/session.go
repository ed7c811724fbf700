package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/modehandler"
	"github.com/dshills/modalcore/internal/remap"
	"github.com/dshills/modalcore/internal/vim/actions"
)

// session is one mode handler with its remapper.
type session struct {
	handler  *modehandler.ModeHandler
	remapper *remap.Remapper
}

func newSession(settings *config.Settings, host modehandler.Host) (*session, error) {
	rm, err := remap.New(settings.RemapRules(), remap.Options{})
	if err != nil {
		return nil, err
	}
	host.Remapper = rm

	h, err := modehandler.New(settings.HandlerConfig(), host, actions.NewRegistry())
	if err != nil {
		rm.Close()
		return nil, err
	}
	logger.Debug("session started", "editor", h.ID(), "mode", h.Mode())
	return &session{handler: h, remapper: rm}, nil
}

// apply switches to reloaded settings. Runs on the scheduler worker.
func (s *session) apply(settings *config.Settings) error {
	s.handler.Reconfigure(settings.HandlerConfig())
	return s.remapper.SetRules(settings.RemapRules())
}

func (s *session) close() {
	s.remapper.Close()
}

// startMode parses the --mode flag.
func startMode(name string) (mode.Mode, error) {
	m, err := mode.Parse(name)
	if err != nil {
		return mode.Normal, err
	}
	if m != mode.Normal && m != mode.Insert {
		return mode.Normal, fmt.Errorf("cannot start in %s mode", m.Name())
	}
	return m, nil
}

// readText returns the content of path. "-" reads stdin; "" is an empty
// document. A missing file is an empty document too, so run can create it.
func readText(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
