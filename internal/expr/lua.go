package expr

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single expression evaluation.
const DefaultTimeout = 100 * time.Millisecond

// LuaEvaluator evaluates expressions with a sandboxed Lua state.
//
// gopher-lua's LState is not goroutine-safe, so all evaluation is
// serialized through a mutex. The state is created with no standard
// libraries; only base, table, string and math are opened, and the
// escape hatches base leaves behind (load, dofile, require and friends)
// are removed.
type LuaEvaluator struct {
	mu      sync.Mutex
	state   *lua.LState
	timeout time.Duration
}

// NewLuaEvaluator creates a sandboxed evaluator.
func NewLuaEvaluator() *LuaEvaluator {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	safeLibs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// Remove functions that could be used to escape the sandbox or
	// reach outside the expression context.
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"require", "print", "collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	return &LuaEvaluator{
		state:   L,
		timeout: DefaultTimeout,
	}
}

// Close releases the underlying Lua state.
func (e *LuaEvaluator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Close()
}

// Eval evaluates an expression against the context.
// The expression is compiled as `return (expr)`; any compile or runtime
// failure is reported as a wrapped ErrEvaluation.
func (e *LuaEvaluator) Eval(expression string, ctx Context) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	L := e.state
	L.SetGlobal("count", lua.LNumber(ctx.Count))
	L.SetGlobal("selecting", lua.LBool(ctx.Selecting))
	L.SetGlobal("mode", lua.LString(ctx.Mode))
	L.SetGlobal("captured", lua.LString(ctx.Captured))
	L.SetGlobal("selection", lua.LString(ctx.Selection))
	L.SetGlobal("line", lua.LNumber(ctx.Line))

	fn, err := L.LoadString("return (" + expression + ")")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrEvaluation, expression, err)
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	L.SetContext(timeoutCtx)
	defer L.SetContext(context.Background())

	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrEvaluation, expression, err)
	}

	value := L.Get(-1)
	L.Pop(1)
	return fromLua(value), nil
}

// fromLua converts a Lua value to its Go representation.
func fromLua(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	default:
		return v.String()
	}
}
