package script

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/agentstation/pinflow/internal/ctxlog"
)

// cancelCheckInterval is the number of Lua instructions between context
// checks.
const cancelCheckInterval = 1000

// setupSandbox creates a safe Lua environment. print is routed to the
// context logger at debug level.
func setupSandbox(ctx context.Context, l *lua.State) {
	// Load only safe libraries
	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	lua.Require(l, "string", lua.StringOpen, true)
	l.Pop(1)
	lua.Require(l, "table", lua.TableOpen, true)
	l.Pop(1)
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)

	// Remove functions reaching outside the sandbox
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		l.PushNil()
		l.SetGlobal(name)
	}

	l.Register("print", func(l *lua.State) int {
		parts := make([]string, 0, l.Top())
		for i := 1; i <= l.Top(); i++ {
			parts = append(parts, fmt.Sprint(pullValue(l, i)))
		}
		ctxlog.FromContext(ctx).DebugContext(ctx, "lua print", "message", strings.Join(parts, "\t"))
		return 0
	})

	// Long-running code is aborted once ctx is done.
	lua.SetDebugHook(l, func(l *lua.State, _ lua.Debug) {
		if err := ctx.Err(); err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
	}, lua.MaskCount, cancelCheckInterval)

	l.Register("json_encode", jsonEncode)
	l.Register("json_decode", jsonDecode)
	l.Register("str_trim", strTrim)
	l.Register("str_split", strSplit)
	l.Register("str_contains", strContains)
	l.Register("type_of", typeOf)
}

// pushValue converts a Go value to Lua.
func pushValue(l *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(val)
	case int:
		l.PushInteger(val)
	case int64:
		l.PushInteger(int(val))
	case uint64:
		l.PushInteger(int(val))
	case float64:
		l.PushNumber(val)
	case float32:
		l.PushNumber(float64(val))
	case string:
		l.PushString(val)
	case []any:
		l.NewTable()
		for i, item := range val {
			l.PushInteger(i + 1)
			pushValue(l, item)
			l.SetTable(-3)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		l.NewTable()
		for _, k := range keys {
			l.PushString(k)
			pushValue(l, val[k])
			l.SetTable(-3)
		}
	default:
		// Fall back to the JSON text of the value
		if data, err := json.Marshal(val); err == nil {
			l.PushString(string(data))
		} else {
			l.PushNil()
		}
	}
}

// pullValue converts a Lua value to Go. Integral numbers become int.
func pullValue(l *lua.State, idx int) any {
	switch l.TypeOf(idx) {
	case lua.TypeNil:
		return nil
	case lua.TypeBoolean:
		return l.ToBoolean(idx)
	case lua.TypeNumber:
		n, _ := l.ToNumber(idx)
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int(n)
		}
		return n
	case lua.TypeString:
		s, _ := l.ToString(idx)
		return s
	case lua.TypeTable:
		l.PushValue(idx)

		isArray := true
		maxIndex := 0
		count := 0

		l.PushNil()
		for l.Next(-2) {
			count++
			if l.TypeOf(-2) != lua.TypeNumber {
				isArray = false
				l.Pop(2)
				break
			}
			n, _ := l.ToNumber(-2)
			if i := int(n); i > maxIndex {
				maxIndex = i
			}
			l.Pop(1) // Remove value, keep key for next iteration
		}

		if isArray && maxIndex > 0 && maxIndex == count {
			arr := make([]any, maxIndex)
			for i := 1; i <= maxIndex; i++ {
				l.PushInteger(i)
				l.Table(-2)
				arr[i-1] = pullValue(l, -1)
				l.Pop(1)
			}
			l.Pop(1) // Remove the table copy
			return arr
		}

		obj := make(map[string]any)
		l.PushNil()
		for l.Next(-2) {
			var key string
			if l.TypeOf(-2) == lua.TypeString {
				key, _ = l.ToString(-2)
			} else {
				key = fmt.Sprint(pullValue(l, -2))
			}
			obj[key] = pullValue(l, -1)
			l.Pop(1) // Remove value, keep key for next iteration
		}
		l.Pop(1) // Remove the table copy
		return obj
	default:
		return nil
	}
}

// Lua utility functions

func jsonEncode(l *lua.State) int {
	value := pullValue(l, 1)
	data, err := json.Marshal(value)
	if err != nil {
		l.PushNil()
		l.PushString(err.Error())
		return 2
	}
	l.PushString(string(data))
	return 1
}

func jsonDecode(l *lua.State) int {
	str := lua.CheckString(l, 1)
	var value any
	if err := json.Unmarshal([]byte(str), &value); err != nil {
		l.PushNil()
		l.PushString(err.Error())
		return 2
	}
	pushValue(l, value)
	return 1
}

func strTrim(l *lua.State) int {
	l.PushString(strings.TrimSpace(lua.CheckString(l, 1)))
	return 1
}

func strSplit(l *lua.State) int {
	str := lua.CheckString(l, 1)
	sep := lua.CheckString(l, 2)

	l.NewTable()
	for i, part := range strings.Split(str, sep) {
		l.PushInteger(i + 1)
		l.PushString(part)
		l.SetTable(-3)
	}
	return 1
}

func strContains(l *lua.State) int {
	l.PushBoolean(strings.Contains(lua.CheckString(l, 1), lua.CheckString(l, 2)))
	return 1
}

func typeOf(l *lua.State) int {
	switch l.TypeOf(1) {
	case lua.TypeNil:
		l.PushString("nil")
	case lua.TypeBoolean:
		l.PushString("boolean")
	case lua.TypeNumber:
		l.PushString("number")
	case lua.TypeString:
		l.PushString("string")
	case lua.TypeTable:
		l.PushString("table")
	case lua.TypeFunction:
		l.PushString("function")
	default:
		l.PushString("unknown")
	}
	return 1
}
