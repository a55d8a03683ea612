package pinflow_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow"
)

type label string

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		typ     pinflow.Type
		want    any
		wantErr bool
	}{
		{name: "int", value: 3, typ: pinflow.TypeInt, want: 3},
		{name: "int8 widens", value: int8(-3), typ: pinflow.TypeInt, want: -3},
		{name: "uint64 widens", value: uint64(7), typ: pinflow.TypeInt, want: 7},
		{name: "uint64 at max int", value: uint64(math.MaxInt), typ: pinflow.TypeInt, want: math.MaxInt},
		{name: "uint64 above max int", value: uint64(math.MaxUint64), typ: pinflow.TypeInt, wantErr: true},
		{name: "uint above max int is not a number", value: uint(math.MaxUint), typ: pinflow.TypeNumber, wantErr: true},
		{name: "float32 widens", value: float32(1.5), typ: pinflow.TypeFloat, want: 1.5},
		{name: "named string", value: label("x"), typ: pinflow.TypeString, want: "x"},
		{name: "text to int", value: " 42 ", typ: pinflow.TypeInt, want: 42},
		{name: "text to float", value: "2.5", typ: pinflow.TypeFloat, want: 2.5},
		{name: "text to number int", value: "12", typ: pinflow.TypeNumber, want: 12},
		{name: "text to number float", value: "4.25", typ: pinflow.TypeNumber, want: 4.25},
		{name: "int is a number", value: 5, typ: pinflow.TypeNumber, want: 5},
		{name: "float is a number", value: 0.5, typ: pinflow.TypeNumber, want: 0.5},
		{name: "text kept when union accepts text", value: "12", typ: pinflow.TypeNumber | pinflow.TypeString, want: "12"},
		{name: "bad text", value: "abc", typ: pinflow.TypeInt, wantErr: true},
		{name: "float is not int", value: 3.0, typ: pinflow.TypeInt, wantErr: true},
		{name: "int is not text", value: 3, typ: pinflow.TypeString, wantErr: true},
		{name: "bool is not int", value: true, typ: pinflow.TypeInt, wantErr: true},
		{name: "nil is not int", value: nil, typ: pinflow.TypeInt, wantErr: true},
		{name: "any keeps nil", value: nil, typ: pinflow.TypeAny, want: nil},
		{name: "any keeps value untouched", value: int8(1), typ: pinflow.TypeAny, want: int8(1)},
		{name: "typed slice", value: []int{1, 2}, typ: pinflow.TypeList, want: []any{1, 2}},
		{name: "typed map", value: map[string]int{"a": 1}, typ: pinflow.TypeMap, want: map[string]any{"a": 1}},
		{name: "non-string keys", value: map[int]int{1: 1}, typ: pinflow.TypeMap, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pinflow.Sanitize(tt.value, tt.typ)
			if tt.wantErr {
				require.ErrorIs(t, err, pinflow.ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupType(t *testing.T) {
	tests := []struct {
		name string
		want pinflow.Type
		ok   bool
	}{
		{"int", pinflow.TypeInt, true},
		{"float", pinflow.TypeFloat, true},
		{"str", pinflow.TypeString, true},
		{"string", pinflow.TypeString, true},
		{"bool", pinflow.TypeBool, true},
		{"list", pinflow.TypeList, true},
		{"dict", pinflow.TypeMap, true},
		{"any", pinflow.TypeAny, true},
		{"int | float", pinflow.TypeNumber, true},
		{"int|any", pinflow.TypeAny, true},
		{"complex", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := pinflow.LookupType(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "int | float", pinflow.TypeNumber.String())
	assert.Equal(t, "str", pinflow.TypeString.String())
	assert.Equal(t, "dict", pinflow.TypeMap.String())
	assert.Equal(t, "any", (pinflow.TypeAny | pinflow.TypeInt).String())
	assert.Equal(t, "invalid", pinflow.Type(0).String())
}

func TestTypeText(t *testing.T) {
	text, err := pinflow.TypeNumber.MarshalText()
	require.NoError(t, err)

	var back pinflow.Type
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, pinflow.TypeNumber, back)

	assert.ErrorIs(t, back.UnmarshalText([]byte("complex")), pinflow.ErrUnknownVariableType)
}

func TestAccepts(t *testing.T) {
	assert.True(t, pinflow.TypeNumber.Accepts(1))
	assert.True(t, pinflow.TypeNumber.Accepts(1.5))
	assert.False(t, pinflow.TypeNumber.Accepts("1"))
	assert.True(t, pinflow.TypeAny.Accepts(nil))
	assert.False(t, pinflow.TypeBool.Accepts(nil))
}
