package remap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalcore/internal/engine/cursor"
	"github.com/dshills/modalcore/internal/host/memory"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
	"github.com/dshills/modalcore/internal/modehandler"
	"github.com/dshills/modalcore/internal/remap"
	"github.com/dshills/modalcore/internal/vim"
	"github.com/dshills/modalcore/internal/vim/actions"
)

func rule(before, after string) remap.Rule {
	return remap.Rule{Before: key.Split(before), After: key.Split(after)}
}

func setup(t *testing.T, text string, rules remap.Rules, opts ...func(*modehandler.Config)) (*modehandler.ModeHandler, *memory.Editor) {
	t.Helper()
	rm, err := remap.New(rules, remap.Options{})
	require.NoError(t, err)
	t.Cleanup(rm.Close)

	ed := memory.NewEditor(text)
	host := ed.Host()
	host.Remapper = rm
	cfg := modehandler.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	h, err := modehandler.New(cfg, host, actions.NewRegistry())
	require.NoError(t, err)
	h.State().Registers = vim.NewRegisters()
	h.State().Jumps = vim.NewJumpTracker(10)
	return h, ed
}

func send(t *testing.T, h *modehandler.ModeHandler, keys ...string) modehandler.Result {
	t.Helper()
	var res modehandler.Result
	for _, k := range keys {
		var err error
		res, err = h.Handle(context.Background(), k)
		require.NoError(t, err, "key %q", k)
	}
	return res
}

func TestNewValidatesRules(t *testing.T) {
	tests := []struct {
		name  string
		rules remap.Rules
		want  error
	}{
		{"empty before", remap.Rules{mode.Normal: {{After: []string{"x"}}}}, remap.ErrEmptyBefore},
		{"no target", remap.Rules{mode.Normal: {{Before: []string{"x"}}}}, remap.ErrNoTarget},
		{"both targets", remap.Rules{mode.Normal: {{Before: []string{"x"}, After: []string{"y"}, Lua: "return 'y'"}}}, remap.ErrBothTargets},
		{"duplicate", remap.Rules{mode.Normal: {rule("x", "y"), rule("x", "z")}}, remap.ErrDuplicateRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := remap.New(tt.rules, remap.Options{})
			require.ErrorIs(t, err, tt.want)
			var re *remap.RuleError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "normal", re.Mode)
		})
	}

	_, err := remap.New(remap.Rules{mode.Normal: {{Before: []string{"x"}, Lua: "return ("}}}, remap.Options{})
	assert.Error(t, err)
}

func TestSetRulesKeepsOldRulesOnError(t *testing.T) {
	rm, err := remap.New(remap.Rules{mode.Normal: {rule("Y", "y$")}}, remap.Options{})
	require.NoError(t, err)
	defer rm.Close()

	err = rm.SetRules(remap.Rules{mode.Normal: {{Before: []string{"Q"}}}})
	require.Error(t, err)

	sender := &recordingSender{}
	out, err := rm.TrySend(context.Background(), modehandler.RemapRequest{Keys: []string{"Y"}, Mode: mode.Normal}, sender)
	require.NoError(t, err)
	assert.True(t, out.Consumed)
	assert.Equal(t, [][]string{{"y", "$"}}, sender.replayed)
}

type recordingSender struct {
	replayed [][]string
	opts     []modehandler.ReplayOptions
	buffered []string
}

func (s *recordingSender) ReplayKeys(_ context.Context, keys []string, opts modehandler.ReplayOptions) (modehandler.Result, error) {
	s.replayed = append(s.replayed, keys)
	s.opts = append(s.opts, opts)
	return modehandler.Done(), nil
}

func (s *recordingSender) BufferKeys(keys []string) {
	s.buffered = keys
}

func TestTrySendMatching(t *testing.T) {
	rm, err := remap.New(remap.Rules{
		mode.Normal: {rule("j", "gj"), rule("jk", "x"), {Before: []string{"Q"}, After: []string{"@", "q"}, Recursive: true}},
		mode.Visual: {rule("<", "<lt>gv")},
		mode.Insert: {rule("jk", "<Esc>")},
	}, remap.Options{})
	require.NoError(t, err)
	defer rm.Close()
	ctx := context.Background()

	tests := []struct {
		name     string
		req      modehandler.RemapRequest
		consumed bool
		replayed [][]string
		buffered []string
		rest     []string
	}{
		{
			name:     "prefix of longer rule is buffered",
			req:      modehandler.RemapRequest{Keys: []string{"j"}, Mode: mode.Normal},
			consumed: true,
			buffered: []string{"j"},
		},
		{
			name:     "final prefix runs exact rule",
			req:      modehandler.RemapRequest{Keys: []string{"j"}, Mode: mode.Normal, Final: true},
			consumed: true,
			replayed: [][]string{{"g", "j"}},
		},
		{
			name:     "longest rule wins",
			req:      modehandler.RemapRequest{Keys: []string{"j", "k"}, Mode: mode.Normal},
			consumed: true,
			replayed: [][]string{{"x"}},
		},
		{
			name:     "broken sequence runs prefix rule and hands back the rest",
			req:      modehandler.RemapRequest{Keys: []string{"j", "l"}, Mode: mode.Normal},
			consumed: true,
			replayed: [][]string{{"g", "j"}},
			rest:     []string{"l"},
		},
		{
			name: "unmapped key",
			req:  modehandler.RemapRequest{Keys: []string{"l"}, Mode: mode.Normal},
		},
		{
			name:     "visual rules serve visual line",
			req:      modehandler.RemapRequest{Keys: []string{"<lt>"}, Mode: mode.VisualLine},
			consumed: true,
			replayed: [][]string{{"<lt>", "g", "v"}},
		},
		{
			name:     "insert rules serve replace",
			req:      modehandler.RemapRequest{Keys: []string{"j", "k"}, Mode: mode.Replace},
			consumed: true,
			replayed: [][]string{{"<Esc>"}},
		},
		{
			name: "operator pending has its own table",
			req:  modehandler.RemapRequest{Keys: []string{"j"}, Mode: mode.OperatorPending},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			out, err := rm.TrySend(ctx, tt.req, sender)
			require.NoError(t, err)
			assert.Equal(t, tt.consumed, out.Consumed)
			assert.Equal(t, tt.replayed, sender.replayed)
			assert.Equal(t, tt.buffered, sender.buffered)
			assert.Equal(t, tt.rest, out.Rest)
		})
	}

	sender := &recordingSender{}
	_, err = rm.TrySend(ctx, modehandler.RemapRequest{Keys: []string{"Q"}, Mode: mode.Normal}, sender)
	require.NoError(t, err)
	require.Len(t, sender.opts, 1)
	assert.True(t, sender.opts[0].Recursive)
}

func TestLuaRule(t *testing.T) {
	rm, err := remap.New(remap.Rules{
		mode.Normal: {
			{Before: []string{"K"}, Lua: `if mode == "normal" then return "2l" end return "h"`},
			{Before: []string{"T"}, Lua: `return {"x", keys[1]:lower()}`},
			{Before: []string{"N"}, Lua: `return nil`},
			{Before: []string{"B"}, Lua: `return 42`},
			{Before: []string{"E"}, Lua: `error("boom")`},
			{Before: []string{"L"}, Lua: `while true do end`},
		},
	}, remap.Options{ScriptTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer rm.Close()
	ctx := context.Background()

	try := func(k string) (*recordingSender, modehandler.RemapOutcome, error) {
		sender := &recordingSender{}
		out, err := rm.TrySend(ctx, modehandler.RemapRequest{Keys: []string{k}, Mode: mode.Normal}, sender)
		return sender, out, err
	}

	sender, out, err := try("K")
	require.NoError(t, err)
	assert.True(t, out.Consumed)
	assert.Equal(t, [][]string{{"2", "l"}}, sender.replayed)

	sender, _, err = try("T")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "t"}}, sender.replayed)

	sender, out, err = try("N")
	require.NoError(t, err)
	assert.True(t, out.Consumed)
	assert.Empty(t, sender.replayed)

	_, _, err = try("B")
	assert.ErrorIs(t, err, remap.ErrScriptResult)

	_, _, err = try("E")
	var se *remap.ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "E", se.Before)

	_, _, err = try("L")
	assert.Error(t, err)
}

func TestRemapThroughHandler(t *testing.T) {
	h, ed := setup(t, "one two three", remap.Rules{
		mode.Normal: {rule("W", "ww"), rule("D", "dw")},
		mode.Insert: {rule("jk", "<Esc>")},
	})

	send(t, h, "W")
	assert.Equal(t, []cursor.Position{cursor.Pos(0, 8)}, h.State().Cursors.Stops())

	send(t, h, "0", "D")
	assert.Equal(t, "two three", ed.Text())
	assert.Equal(t, 1, ed.History().StepCount())

	send(t, h, "i", "j", "k")
	assert.Equal(t, mode.Normal, h.Mode())
	assert.Equal(t, "two three", ed.Text())

	send(t, h, "i", "j", "x", "<Esc>")
	assert.Equal(t, "jxtwo three", ed.Text())
}

func TestInsertPrefixFlushedByTimeout(t *testing.T) {
	h, ed := setup(t, "", remap.Rules{mode.Insert: {rule("jk", "<Esc>")}},
		func(c *modehandler.Config) { c.StartInInsertMode = true })

	send(t, h, "j")
	assert.Equal(t, "", ed.Text())

	send(t, h, key.TimeoutFinished)
	assert.Equal(t, "j", ed.Text())
	assert.Equal(t, mode.Insert, h.Mode())
}

func TestNonRecursiveRuleIsNotRemappedAgain(t *testing.T) {
	h, ed := setup(t, "abc", remap.Rules{
		mode.Normal: {rule("x", "l"), rule("X", "x")},
	})

	send(t, h, "X")
	assert.Equal(t, "bc", ed.Text())
}

func TestRecursiveRuleIsRemappedAgain(t *testing.T) {
	h, ed := setup(t, "abc", remap.Rules{
		mode.Normal: {
			rule("x", "l"),
			{Before: []string{"X"}, After: []string{"x"}, Recursive: true},
		},
	})

	send(t, h, "X")
	assert.Equal(t, "abc", ed.Text())
	assert.Equal(t, []cursor.Position{cursor.Pos(0, 1)}, h.State().Cursors.Stops())
}

func TestSelfRecursiveRuleStopsAtMaxDepth(t *testing.T) {
	h, ed := setup(t, "abc", remap.Rules{
		mode.Normal: {{Before: []string{"x"}, After: []string{"x"}, Recursive: true}},
	}, func(c *modehandler.Config) { c.MaxMapDepth = 20 })

	res := send(t, h, "x")
	assert.True(t, res.IsAborted())
	assert.Equal(t, "abc", ed.Text())
	assert.Contains(t, ed.LastStatus(), "Recursive mapping")
}

func TestOperatorPendingRule(t *testing.T) {
	h, ed := setup(t, "one two", remap.Rules{
		mode.OperatorPending: {rule("W", "e")},
	})

	send(t, h, "d", key.TimeoutFinished, "W")
	assert.Equal(t, " two", ed.Text())
}
