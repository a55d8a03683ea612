package script

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Shopify/go-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow/internal/ctxlog"
	"github.com/agentstation/pinflow/internal/testutil"
)

func TestPushPullValue(t *testing.T) {
	l := lua.NewState()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, 42},
		{"int64", int64(-7), -7},
		{"float", 3.14, 3.14},
		{"integral float", 2.0, 2},
		{"string", "hello", "hello"},
		{"array", []any{1, "two", 3.5}, []any{1, "two", 3.5}},
		{"map", map[string]any{"key": "value", "num": 123}, map[string]any{"key": "value", "num": 123}},
		{"nested", map[string]any{"list": []any{map[string]any{"x": 1}}}, map[string]any{"list": []any{map[string]any{"x": 1}}}},
		{"empty table", map[string]any{}, map[string]any{}},
		{"other", struct{ A int }{A: 1}, `{"A":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pushValue(l, tt.value)
			got := pullValue(l, -1)
			l.Pop(1)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, l.Top(), "stack is balanced")
		})
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name   string
		source string
		env    map[string]any
		want   any
	}{
		{name: "expression", source: "a + b", env: map[string]any{"a": 2, "b": 3}, want: 5},
		{name: "chunk", source: "local x = a * 2\nreturn x", env: map[string]any{"a": 4}, want: 8},
		{name: "no result", source: "x = 1", want: nil},
		{name: "string library", source: "string.upper(s)", env: map[string]any{"s": "up"}, want: "UP"},
		{name: "math library", source: "math.max(a, 9)", env: map[string]any{"a": 3}, want: 9},
		{name: "table input", source: "t.name .. #t.items", env: map[string]any{"t": map[string]any{"name": "n", "items": []any{1, 2}}}, want: "n2"},
		{name: "os is not loaded", source: "os == nil", want: true},
		{name: "io is not loaded", source: "io == nil", want: true},
		{name: "dofile removed", source: "dofile == nil", want: true},
		{name: "require removed", source: "require == nil", want: true},
		{name: "json_encode", source: "json_encode({a = 1})", want: `{"a":1}`},
		{name: "json_decode", source: `json_decode('{"x":[1,2]}').x[2]`, want: 2},
		{name: "str_trim", source: "str_trim('  x ')", want: "x"},
		{name: "str_split", source: "str_split('a,b', ',')[2]", want: "b"},
		{name: "str_contains", source: "str_contains('pinflow', 'flow')", want: true},
		{name: "type_of", source: "type_of({})", want: "table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(context.Background(), tt.source, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	for name, source := range map[string]string{
		"syntax":   "a +",
		"runtime":  "error('boom')",
		"nil call": "missing()",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Eval(context.Background(), source, nil)
			assert.ErrorIs(t, err, ErrScript)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Eval(ctx, "1", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvalStopsAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Eval(ctx, "while true do end", nil)
	assert.ErrorIs(t, err, ErrScript)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = Exec(ctx, "function exec(v) while true do v = v + 1 end end", 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvalPrintLogs(t *testing.T) {
	capture, logger := testutil.NewLogCapture()
	ctx := ctxlog.WithLogger(context.Background(), logger)

	_, err := Eval(ctx, "print('hi', 1)", nil)
	require.NoError(t, err)

	entries := capture.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, slog.LevelDebug, entries[0].Level)
	assert.Equal(t, "hi\t1", entries[0].Attrs["message"])
}

func TestExec(t *testing.T) {
	tests := []struct {
		name   string
		source string
		input  any
		want   any
	}{
		{name: "exec function", source: "function exec(input) return input * 2 end", input: 21, want: 42},
		{name: "chunk result", source: "return input .. '!'", input: "hi", want: "hi!"},
		{name: "passthrough", source: "local unused = 1", input: "same", want: "same"},
		{name: "exec wins over chunk", source: "function exec(v) return v + 1 end\nreturn 0", input: 1, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Exec(context.Background(), tt.source, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Exec(context.Background(), "function exec(v) error('bad') end", 1)
	assert.ErrorIs(t, err, ErrScript)
	assert.ErrorContains(t, err, "exec")

	_, err = Exec(context.Background(), "function (", 1)
	assert.ErrorIs(t, err, ErrScript)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("return 1"))
	assert.ErrorIs(t, Check("return ("), ErrScript)
}
