// Package remap rewrites typed keys into other keys before they reach the
// action resolver. Rules are kept per mode; a rule replays either fixed
// keys or the keys a lua chunk returns.
package remap

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/logger"
	"github.com/dshills/modalcore/internal/modehandler"
)

// Rule maps a key sequence to replacement keys.
type Rule struct {
	Before []string
	After  []string

	// Lua is a chunk whose return value (a key string or a list of keys)
	// is replayed instead of After. The globals mode and keys hold the
	// current mode name and the typed keys.
	Lua string

	// Recursive lets the replayed keys be remapped again.
	Recursive bool
}

// Rules holds the rule lists by mode. Visual rules serve every Visual
// mode and Insert rules serve Replace as well.
type Rules map[mode.Mode][]Rule

// Options configures a Remapper.
type Options struct {
	// ScriptTimeout bounds a single lua rule evaluation.
	ScriptTimeout time.Duration
}

// Remapper implements modehandler.Remapper.
// It can be shared by several handlers.
type Remapper struct {
	mu    sync.RWMutex
	rules Rules

	scripts *scriptEngine
}

// New validates rules and creates a remapper.
func New(rules Rules, opts Options) (*Remapper, error) {
	r := &Remapper{scripts: newScriptEngine(opts.ScriptTimeout)}
	if err := r.SetRules(rules); err != nil {
		r.scripts.close()
		return nil, err
	}
	return r, nil
}

// SetRules replaces every rule table. On error the old rules stay.
func (r *Remapper) SetRules(rules Rules) error {
	cleaned := make(Rules, len(rules))
	for m, list := range rules {
		seen := make(map[string]bool, len(list))
		for _, rule := range list {
			before := key.Join(rule.Before)
			fail := func(err error) error {
				return &RuleError{Mode: m.Name(), Before: before, Err: err}
			}
			switch {
			case len(rule.Before) == 0:
				return fail(ErrEmptyBefore)
			case len(rule.After) == 0 && rule.Lua == "":
				return fail(ErrNoTarget)
			case len(rule.After) > 0 && rule.Lua != "":
				return fail(ErrBothTargets)
			case seen[before]:
				return fail(ErrDuplicateRule)
			}
			if rule.Lua != "" {
				if err := r.scripts.compile(rule.Lua); err != nil {
					return fail(err)
				}
			}
			seen[before] = true
			cleaned[m] = append(cleaned[m], Rule{
				Before:    slices.Clone(rule.Before),
				After:     slices.Clone(rule.After),
				Lua:       rule.Lua,
				Recursive: rule.Recursive,
			})
		}
	}

	r.mu.Lock()
	r.rules = cleaned
	r.mu.Unlock()
	logger.Debug("remap rules loaded", "modes", len(cleaned))
	return nil
}

// Close releases the lua state.
func (r *Remapper) Close() {
	r.scripts.close()
}

// table returns the rules that apply in m.
func (r *Remapper) table(m mode.Mode) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch {
	case m.IsVisual():
		m = mode.Visual
	case m == mode.Replace:
		m = mode.Insert
	}
	return r.rules[m]
}

// TrySend implements modehandler.Remapper. A sequence that is a strict
// prefix of a longer rule is buffered until the next key or the timeout;
// once a key breaks the match, the longest rule matching a prefix runs
// and the keys after it are handed back.
func (r *Remapper) TrySend(ctx context.Context, req modehandler.RemapRequest, sender modehandler.KeySender) (modehandler.RemapOutcome, error) {
	rules := r.table(req.Mode)
	if len(rules) == 0 || len(req.Keys) == 0 {
		return modehandler.RemapOutcome{}, nil
	}

	var (
		exact   *Rule
		longer  bool
		partial *Rule
	)
	for i := range rules {
		rule := &rules[i]
		switch {
		case slices.Equal(rule.Before, req.Keys):
			exact = rule
		case hasPrefix(rule.Before, req.Keys):
			longer = true
		case hasPrefix(req.Keys, rule.Before):
			if partial == nil || len(rule.Before) > len(partial.Before) {
				partial = rule
			}
		}
	}

	switch {
	case longer && !req.Final:
		sender.BufferKeys(req.Keys)
		return modehandler.RemapOutcome{Consumed: true, Result: modehandler.Done()}, nil
	case exact != nil:
		res, err := r.replay(ctx, exact, req, sender)
		return modehandler.RemapOutcome{Consumed: true, Result: res}, err
	case partial != nil:
		res, err := r.replay(ctx, partial, req, sender)
		return modehandler.RemapOutcome{
			Consumed: true,
			Result:   res,
			Rest:     slices.Clone(req.Keys[len(partial.Before):]),
		}, err
	}
	return modehandler.RemapOutcome{}, nil
}

func (r *Remapper) replay(ctx context.Context, rule *Rule, req modehandler.RemapRequest, sender modehandler.KeySender) (modehandler.Result, error) {
	keys := rule.After
	if rule.Lua != "" {
		var err error
		keys, err = r.scripts.eval(ctx, rule.Lua, req.Mode.Name(), req.Keys[:len(rule.Before)])
		if err != nil {
			return modehandler.Done(), &ScriptError{Before: key.Join(rule.Before), Err: err}
		}
	}
	logger.Debug("remap", "mode", req.Mode, "before", rule.Before, "after", keys, "recursive", rule.Recursive)
	if len(keys) == 0 {
		return modehandler.Done(), nil
	}
	return sender.ReplayKeys(ctx, keys, modehandler.ReplayOptions{Recursive: rule.Recursive})
}

// hasPrefix reports whether prefix is a strict prefix of s.
func hasPrefix(s, prefix []string) bool {
	return len(prefix) < len(s) && slices.Equal(s[:len(prefix)], prefix)
}

var _ modehandler.Remapper = (*Remapper)(nil)
