package chat

import (
	"encoding/json"
	"testing"
)

func TestEnsureStringContent(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string passthrough", in: "hello", want: "hello"},
		{name: "bool", in: true, want: "true"},
		{name: "float64 whole", in: float64(42), want: "42"},
		{name: "float64 fraction", in: 3.5, want: "3.5"},
		{name: "int", in: 7, want: "7"},
		{name: "int64", in: int64(-9), want: "-9"},
		{name: "json number", in: json.Number("12.25"), want: "12.25"},
		{name: "array concatenation", in: []any{"a", "b", "c"}, want: "abc"},
		{name: "nested array", in: []any{"x", []any{"y", nil, "z"}}, want: "xyz"},
		{name: "mixed array", in: []any{"n=", float64(3)}, want: "n=3"},
		{name: "object falls back to json", in: map[string]any{"k": "v"}, want: `{"k":"v"}`},
		{name: "empty array", in: []any{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnsureStringContent(tt.in); got != tt.want {
				t.Errorf("EnsureStringContent(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
