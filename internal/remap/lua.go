package remap

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modalcore/internal/input/key"
)

// DefaultScriptTimeout bounds a single lua rule evaluation.
const DefaultScriptTimeout = 500 * time.Millisecond

// scriptEngine runs lua rules in one sandboxed state.
//
// gopher-lua's LState is not goroutine-safe; mu serializes all use.
type scriptEngine struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	chunks  map[string]*lua.LFunction
}

func newScriptEngine(timeout time.Duration) *scriptEngine {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	return &scriptEngine{L: L, timeout: timeout, chunks: make(map[string]*lua.LFunction)}
}

// compile checks and caches a chunk.
func (e *scriptEngine) compile(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.chunks[src]; ok {
		return nil
	}
	fn, err := e.L.LoadString(src)
	if err != nil {
		return err
	}
	e.chunks[src] = fn
	return nil
}

// eval runs src with the globals mode and keys set and converts its
// return value into keys.
func (e *scriptEngine) eval(ctx context.Context, src, modeName string, typed []string) (keys []string, err error) {
	if err := e.compile(src); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	typedTable := e.L.NewTable()
	for _, k := range typed {
		typedTable.Append(lua.LString(k))
	}
	e.L.SetGlobal("mode", lua.LString(modeName))
	e.L.SetGlobal("keys", typedTable)

	top := e.L.GetTop()
	e.L.Push(e.chunks[src])
	if err := e.L.PCall(0, 1, nil); err != nil {
		e.L.SetTop(top)
		return nil, err
	}
	ret := e.L.Get(-1)
	e.L.SetTop(top)
	return toKeys(ret)
}

func toKeys(v lua.LValue) ([]string, error) {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return key.Split(string(v)), nil
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, ErrScriptResult
			}
			out = append(out, key.Split(string(s))...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w, got %s", ErrScriptResult, v.Type())
	}
}

func (e *scriptEngine) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}
