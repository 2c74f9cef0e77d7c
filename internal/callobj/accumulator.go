package callobj

import (
	"gsm/internal/errors"
	"gsm/internal/value"
)

// slot holds one bound (or not-yet-bound) parameter along with whatever
// by-reference provenance BindRef captured for it.
type slot struct {
	value    value.Value
	hasValue bool

	// refName/refSub are set when the bound operand was a reference;
	// writeback redefines this binding (or its sub-variable) with the
	// handler's output.
	refBound bool
	refName  string
	refSub   string

	// shadowOrigin is set when the bound operand was a list shadow;
	// writeback mutates the originating list slot.
	shadowOrigin *value.Value
}

// Accumulator is the per-call object described in §3/§4.4: the chosen
// function descriptor, a cursor into its (widest) parameter list, the
// bound slots so far, the set of overloads still consistent with what's
// been bound, and a sticky error flag.
type Accumulator struct {
	Descriptor *FuncDescriptor
	viable     []*Overload
	slots      []slot
	cursor     int
	errored    bool
}

// NewAccumulator starts a call against fd with every overload viable and
// the cursor at the first parameter (InitCall, §4.4).
func NewAccumulator(fd *FuncDescriptor) *Accumulator {
	maxParams := 0
	for _, ov := range fd.Overloads {
		if len(ov.Params) > maxParams {
			maxParams = len(ov.Params)
		}
	}
	viable := make([]*Overload, len(fd.Overloads))
	copy(viable, fd.Overloads)
	return &Accumulator{
		Descriptor: fd,
		viable:     viable,
		slots:      make([]slot, maxParams),
	}
}

// SetCurrentParam moves the cursor to the parameter named name, found by
// unambiguous match across the still-viable overloads (§4.4's
// SetCurrParam / _BindCheck(name)).
func (a *Accumulator) SetCurrentParam(name string) *errors.GSMError {
	found := -1
	for _, ov := range a.viable {
		for i, p := range ov.Params {
			if p.Name == name {
				if found == -1 {
					found = i
				} else if found != i {
					return errors.New(errors.AmbiguousParam, "parameter %q is ambiguous for %q", name, a.Descriptor.Name)
				}
				break
			}
		}
	}
	if found == -1 {
		return errors.New(errors.UnknownParam, "parameter %q is not defined for %q", name, a.Descriptor.Name)
	}
	a.cursor = found
	return nil
}

// bindAt narrows the viable overload set to those whose parameter at
// index accepts v, records v in the slot, and sticks the error flag if
// the viable set becomes empty.
func (a *Accumulator) bindAt(index int, v value.Value) bool {
	if index < 0 || index >= len(a.slots) {
		a.errored = true
		return false
	}
	next := a.viable[:0:0]
	for _, ov := range a.viable {
		if index < len(ov.Params) && ov.Params[index].accepts(v) {
			next = append(next, ov)
		}
	}
	a.viable = next
	a.slots[index].value = v
	a.slots[index].hasValue = true
	if len(a.viable) == 0 {
		a.errored = true
		return false
	}
	return true
}

// SetCurrParam binds the current cursor position by value and advances
// the cursor by one, matching the CallFuncObj convention of an
// auto-incrementing position for unnamed Bind* calls.
func (a *Accumulator) SetCurrParam(v value.Value) bool {
	ok := a.bindAt(a.cursor, v)
	a.cursor++
	return ok
}

// SetCurrParamRef records that the current slot was bound from a
// reference, so Call can write the handler's output back through the
// binding table.
func (a *Accumulator) SetCurrParamRef(name, sub string) {
	if a.cursor >= 0 && a.cursor < len(a.slots) {
		a.slots[a.cursor].refBound = true
		a.slots[a.cursor].refName = name
		a.slots[a.cursor].refSub = sub
	}
}

// SetCurrParamShadowOf records that the current slot was bound from a
// list shadow, so Call can write the handler's output back into the
// originating list slot.
func (a *Accumulator) SetCurrParamShadowOf(origin *value.Value) {
	if a.cursor >= 0 && a.cursor < len(a.slots) {
		a.slots[a.cursor].shadowOrigin = origin
	}
}

func (a *Accumulator) SetErrorOccurred() { a.errored = true }

// ResolveOverload finalises the call (§4.4's Call): with the sticky flag
// clear and exactly one viable overload, fill defaults for unbound
// parameters and return the parameter array ready to hand to the
// handler, along with enough per-parameter writeback info for the
// caller (internal/vm) to perform by-reference writeback afterward.
func (a *Accumulator) ResolveOverload() (*Overload, []value.Value, []ParamWriteback, *errors.GSMError) {
	if a.errored || len(a.viable) != 1 {
		return nil, nil, nil, errors.New(errors.NoOverloadMatch, "no single overload of %q matches the bound arguments", a.Descriptor.Name)
	}
	ov := a.viable[0]
	params := make([]value.Value, len(ov.Params))
	writeback := make([]ParamWriteback, len(ov.Params))
	for i, p := range ov.Params {
		s := a.slots[i]
		if s.hasValue {
			params[i] = s.value
		} else if p.HasDefault {
			params[i] = p.Default
		} else {
			return nil, nil, nil, errors.New(errors.MissingParam, "missing required parameter %q of %q", p.Name, a.Descriptor.Name)
		}
		if p.Mode == ByRef {
			writeback[i] = ParamWriteback{
				RefBound:     s.refBound,
				RefName:      s.refName,
				RefSub:       s.refSub,
				ShadowOrigin: s.shadowOrigin,
			}
		}
	}
	return ov, params, writeback, nil
}

// ParamWriteback carries enough provenance about a by-reference
// parameter for the caller to write the handler's (possibly mutated)
// output back to its origin (§4.4 Call's writeback loop).
type ParamWriteback struct {
	RefBound     bool
	RefName      string
	RefSub       string
	ShadowOrigin *value.Value
}
