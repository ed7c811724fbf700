// Package config holds the user settings of the modal core: timing, mouse
// and platform behavior, and the remap rule tables.
//
// Settings are read from TOML or YAML, chosen by file extension, on top of
// DefaultSettings, and can be reloaded when the file changes.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/modehandler"
	"github.com/dshills/modalcore/internal/remap"
)

// KeyBinding is one remap rule as written in a settings file. Each entry
// of Before and After may hold several keys, so ["jj"] equals ["j", "j"].
type KeyBinding struct {
	Before []string `toml:"before" yaml:"before"`
	After  []string `toml:"after,omitempty" yaml:"after,omitempty"`
	Lua    string   `toml:"lua,omitempty" yaml:"lua,omitempty"`
}

// Settings is the complete configuration.
type Settings struct {
	StartInInsertMode                bool   `toml:"startInInsertMode" yaml:"startInInsertMode"`
	TimeoutMs                        int    `toml:"timeoutMs" yaml:"timeoutMs"`
	MouseSelectionGoesIntoVisualMode bool   `toml:"mouseSelectionGoesIntoVisualMode" yaml:"mouseSelectionGoesIntoVisualMode"`
	OverrideCopy                     bool   `toml:"overrideCopy" yaml:"overrideCopy"`
	UseCtrlKeys                      bool   `toml:"useCtrlKeys" yaml:"useCtrlKeys"`
	Platform                         string `toml:"platform" yaml:"platform"`
	MaxMapDepth                      int    `toml:"maxMapDepth" yaml:"maxMapDepth"`

	LogLevel string `toml:"logLevel" yaml:"logLevel"`
	LogFile  string `toml:"logFile" yaml:"logFile"`

	NormalModeKeyBindings                      []KeyBinding `toml:"normalModeKeyBindings" yaml:"normalModeKeyBindings"`
	NormalModeKeyBindingsNonRecursive          []KeyBinding `toml:"normalModeKeyBindingsNonRecursive" yaml:"normalModeKeyBindingsNonRecursive"`
	InsertModeKeyBindings                      []KeyBinding `toml:"insertModeKeyBindings" yaml:"insertModeKeyBindings"`
	InsertModeKeyBindingsNonRecursive          []KeyBinding `toml:"insertModeKeyBindingsNonRecursive" yaml:"insertModeKeyBindingsNonRecursive"`
	VisualModeKeyBindings                      []KeyBinding `toml:"visualModeKeyBindings" yaml:"visualModeKeyBindings"`
	VisualModeKeyBindingsNonRecursive          []KeyBinding `toml:"visualModeKeyBindingsNonRecursive" yaml:"visualModeKeyBindingsNonRecursive"`
	OperatorPendingModeKeyBindings             []KeyBinding `toml:"operatorPendingModeKeyBindings" yaml:"operatorPendingModeKeyBindings"`
	OperatorPendingModeKeyBindingsNonRecursive []KeyBinding `toml:"operatorPendingModeKeyBindingsNonRecursive" yaml:"operatorPendingModeKeyBindingsNonRecursive"`
}

// DefaultSettings returns the settings used when no file overrides them.
func DefaultSettings() *Settings {
	return &Settings{
		TimeoutMs:                        1000,
		MouseSelectionGoesIntoVisualMode: true,
		OverrideCopy:                     true,
		UseCtrlKeys:                      true,
		Platform:                         runtime.GOOS,
		MaxMapDepth:                      1000,
		LogLevel:                         "warn",
	}
}

var platforms = []string{"darwin", "linux", "windows", "freebsd", "openbsd", "netbsd"}

// bindingTable names one rule table and where its rules go.
type bindingTable struct {
	name      string
	mode      mode.Mode
	recursive bool
	list      []KeyBinding
}

func (s *Settings) tables() []bindingTable {
	return []bindingTable{
		{"normalModeKeyBindings", mode.Normal, true, s.NormalModeKeyBindings},
		{"normalModeKeyBindingsNonRecursive", mode.Normal, false, s.NormalModeKeyBindingsNonRecursive},
		{"insertModeKeyBindings", mode.Insert, true, s.InsertModeKeyBindings},
		{"insertModeKeyBindingsNonRecursive", mode.Insert, false, s.InsertModeKeyBindingsNonRecursive},
		{"visualModeKeyBindings", mode.Visual, true, s.VisualModeKeyBindings},
		{"visualModeKeyBindingsNonRecursive", mode.Visual, false, s.VisualModeKeyBindingsNonRecursive},
		{"operatorPendingModeKeyBindings", mode.OperatorPending, true, s.OperatorPendingModeKeyBindings},
		{"operatorPendingModeKeyBindingsNonRecursive", mode.OperatorPending, false, s.OperatorPendingModeKeyBindingsNonRecursive},
	}
}

// Validate checks every setting and returns all problems joined.
func (s *Settings) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if s.TimeoutMs <= 0 {
		add("timeoutMs", "must be positive", s.TimeoutMs)
	}
	if s.MaxMapDepth <= 0 {
		add("maxMapDepth", "must be positive", s.MaxMapDepth)
	}
	if !slices.Contains(platforms, s.Platform) {
		add("platform", "unknown platform", s.Platform)
	}
	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		add("logLevel", err.Error(), nil)
	}

	for _, t := range s.tables() {
		seen := make(map[string]bool)
		for i, b := range t.list {
			path := fmt.Sprintf("%s[%d]", t.name, i)
			before := key.Join(splitKeys(b.Before))
			switch {
			case before == "":
				add(path, "before is empty", nil)
			case len(b.After) == 0 && b.Lua == "":
				add(path, "needs after or lua", nil)
			case len(b.After) > 0 && b.Lua != "":
				add(path, "cannot have both after and lua", nil)
			case seen[before]:
				add(path, "duplicate before", before)
			}
			seen[before] = true
		}
	}
	return errors.Join(errs...)
}

// HandlerConfig converts the settings for a mode handler.
func (s *Settings) HandlerConfig() modehandler.Config {
	return modehandler.Config{
		Timeout:                          time.Duration(s.TimeoutMs) * time.Millisecond,
		MouseSelectionGoesIntoVisualMode: s.MouseSelectionGoesIntoVisualMode,
		Alias: key.AliasOptions{
			Darwin:       s.Platform == "darwin",
			OverrideCopy: s.OverrideCopy,
			UseCtrlKeys:  s.UseCtrlKeys,
		},
		MaxMapDepth:       s.MaxMapDepth,
		StartInInsertMode: s.StartInInsertMode,
	}
}

// RemapRules converts the binding tables into remapper rules.
func (s *Settings) RemapRules() remap.Rules {
	rules := make(remap.Rules)
	for _, t := range s.tables() {
		for _, b := range t.list {
			rules[t.mode] = append(rules[t.mode], remap.Rule{
				Before:    splitKeys(b.Before),
				After:     splitKeys(b.After),
				Lua:       b.Lua,
				Recursive: t.recursive,
			})
		}
	}
	return rules
}

// Level returns the configured log level.
func (s *Settings) Level() logger.Level {
	l, _ := logger.ParseLevel(s.LogLevel)
	return l
}

func splitKeys(entries []string) []string {
	var out []string
	for _, e := range entries {
		out = append(out, key.Split(e)...)
	}
	return out
}
