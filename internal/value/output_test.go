package value

import (
	"math/big"
	"testing"

	"gsm/internal/errors"
)

func TestRender(t *testing.T) {
	list := NewList()
	list.Append(IntFromInt64(1))
	list.Append(String("a"))

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"int", IntFromInt64(-42), "-42"},
		{"rat non-integral", Rat(big.NewRat(3, 4)), "3/4"},
		{"rat integral still shows denominator", Rat(big.NewRat(4, 1)), "4/1"},
		{"float", Float(1.5), "1.5"},
		{"string escapes", String("a\"b"), `"a\"b"`},
		{"list", ListVal(list), `[1, "a"]`},
		{"ref bare", Ref("x", ""), "ref:x"},
		{"ref sub", Ref("x", "y"), "ref:x.y"},
		{"err", Err(errors.New(errors.TypeMismatch, "boom")), "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.v); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
