package callobj

import (
	"testing"

	"gsm/internal/errors"
	"gsm/internal/value"
)

func addFunc() *FuncDescriptor {
	return &FuncDescriptor{
		Name: "add",
		Overloads: []*Overload{
			{
				Params: []ParamSpec{
					{Name: "a", Kind: value.KindInt},
					{Name: "b", Kind: value.KindInt},
				},
				Handler: func(p []value.Value) (value.Value, *errors.GSMError) {
					return value.Int(nil), nil
				},
			},
			{
				Params: []ParamSpec{
					{Name: "a", Kind: value.KindFloat},
					{Name: "b", Kind: value.KindFloat},
				},
				Handler: func(p []value.Value) (value.Value, *errors.GSMError) {
					return value.Float(0), nil
				},
			},
		},
	}
}

func TestAccumulatorNarrowsByPositionalType(t *testing.T) {
	acc := NewAccumulator(addFunc())
	if !acc.SetCurrParam(value.IntFromInt64(1)) {
		t.Fatalf("binding int to slot 0 should keep the int overload viable")
	}
	if !acc.SetCurrParam(value.IntFromInt64(2)) {
		t.Fatalf("binding int to slot 1 should keep the int overload viable")
	}

	ov, params, _, err := acc.ResolveOverload()
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if len(ov.Params) != 2 || ov.Params[0].Kind != value.KindInt {
		t.Fatalf("resolved to the wrong overload: %+v", ov)
	}
	if params[0].Int.Int64() != 1 || params[1].Int.Int64() != 2 {
		t.Fatalf("unexpected resolved params: %v", params)
	}
}

func TestAccumulatorNoOverloadMatch(t *testing.T) {
	acc := NewAccumulator(addFunc())
	acc.SetCurrParam(value.IntFromInt64(1))
	acc.SetCurrParam(value.Float(2.0)) // mixed kinds: no overload accepts both

	_, _, _, err := acc.ResolveOverload()
	if err == nil || err.Kind != errors.NoOverloadMatch {
		t.Fatalf("ResolveOverload() = %v, want NoOverloadMatch", err)
	}
}

func TestAccumulatorSetCurrentParamByName(t *testing.T) {
	acc := NewAccumulator(addFunc())
	if err := acc.SetCurrentParam("b"); err != nil {
		t.Fatalf("SetCurrentParam(b): %v", err)
	}
	acc.SetCurrParam(value.IntFromInt64(9))
	if err := acc.SetCurrentParam("a"); err != nil {
		t.Fatalf("SetCurrentParam(a): %v", err)
	}
	acc.SetCurrParam(value.IntFromInt64(1))

	_, params, _, err := acc.ResolveOverload()
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if params[0].Int.Int64() != 1 || params[1].Int.Int64() != 9 {
		t.Fatalf("named binding landed in the wrong slots: %v", params)
	}
}

func TestAccumulatorUnknownParamName(t *testing.T) {
	acc := NewAccumulator(addFunc())
	if err := acc.SetCurrentParam("nope"); err == nil || err.Kind != errors.UnknownParam {
		t.Fatalf("SetCurrentParam(nope) = %v, want UnknownParam", err)
	}
}

func TestAccumulatorMissingRequiredParam(t *testing.T) {
	acc := NewAccumulator(addFunc())
	acc.SetCurrParam(value.IntFromInt64(1))
	// only one of two required params bound

	_, _, _, err := acc.ResolveOverload()
	if err == nil {
		t.Fatalf("ResolveOverload() with a required parameter left unbound should fail")
	}
}

func TestAccumulatorDefaultsFillUnboundSlots(t *testing.T) {
	fd := &FuncDescriptor{
		Name: "greet",
		Overloads: []*Overload{{
			Params: []ParamSpec{
				{Name: "name", Kind: value.KindString},
				{Name: "times", Kind: value.KindInt, HasDefault: true, Default: value.IntFromInt64(1)},
			},
			Handler: func(p []value.Value) (value.Value, *errors.GSMError) {
				return value.String("hi"), nil
			},
		}},
	}
	acc := NewAccumulator(fd)
	acc.SetCurrParam(value.String("world"))

	_, params, _, err := acc.ResolveOverload()
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if params[1].Int.Int64() != 1 {
		t.Fatalf("default value was not filled in: %v", params[1])
	}
}

func TestAccumulatorWritebackProvenance(t *testing.T) {
	fd := &FuncDescriptor{
		Name: "incr",
		Overloads: []*Overload{{
			Params: []ParamSpec{
				{Name: "n", Kind: value.KindInt, Mode: ByRef},
			},
			Handler: func(p []value.Value) (value.Value, *errors.GSMError) {
				p[0] = value.IntFromInt64(p[0].Int.Int64() + 1)
				return value.Bool(true), nil
			},
		}},
	}
	acc := NewAccumulator(fd)
	// Provenance is recorded against the current slot, before SetCurrParam
	// advances the cursor past it (the order BindRef uses).
	acc.SetCurrParamRef("x", "")
	acc.SetCurrParam(value.IntFromInt64(5))

	_, _, writeback, err := acc.ResolveOverload()
	if err != nil {
		t.Fatalf("ResolveOverload: %v", err)
	}
	if !writeback[0].RefBound || writeback[0].RefName != "x" {
		t.Fatalf("writeback provenance missing: %+v", writeback[0])
	}
}
