// Package binding implements the GSM binding table (§3, §4.3): a mapping
// from identifier to owned Value, with delegation to a bound value's
// sub-variable mapping for dotted sub-names.
package binding

import (
	"gsm/internal/errors"
	"gsm/internal/value"
)

// Table is the binding table. Insertion order is irrelevant (§3).
type Table struct {
	vars map[string]value.Value
}

func New() *Table {
	return &Table{vars: make(map[string]value.Value)}
}

// Define takes ownership of v, replacing any prior binding for name.
func (t *Table) Define(name string, v value.Value) {
	t.vars[name] = v
}

// Lookup returns a copy of the value bound to name, per the ownership
// rule that a lookup never hands out the binding's own storage (§8
// property 6: mutating a looked-up copy must not affect the binding).
func (t *Table) Lookup(name string) (value.Value, bool) {
	v, ok := t.vars[name]
	if !ok {
		return value.Value{}, false
	}
	return v.Copy(), true
}

// Remove drops the binding for name; a no-op if undefined.
func (t *Table) Remove(name string) {
	delete(t.vars, name)
}

func (t *Table) IsDefined(name string) bool {
	_, ok := t.vars[name]
	return ok
}

// Names returns every currently bound identifier, in no particular order.
// Used by host collaborators (internal/session) that need to enumerate
// the table rather than look up one name at a time.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.vars))
	for name := range t.vars {
		names = append(names, name)
	}
	return names
}

// BorrowList returns the actual *List stored in the binding named name,
// aliased rather than copied. Subscript (§4.2) is the one caller allowed
// to use this: resolving a reference to a list must yield the live list
// object so that a shadow taken from it can mutate the real binding,
// whereas every other resolution path in this table copies. See
// DESIGN.md for why this one API intentionally breaks the
// copy-on-lookup convention.
func (t *Table) BorrowList(name string) (*value.List, bool) {
	v, ok := t.vars[name]
	if !ok || v.Kind != value.KindList {
		return nil, false
	}
	return v.List, true
}

// Resolve is the "hard" dereference: an undefined reference is reported as
// UndefinedRef. For a plain reference (sub == "") it copies the bound
// value; for a sub-reference it delegates to the bound value's
// SubMapper, failing with SubNotSupported if the kind doesn't expose one.
func (t *Table) Resolve(name, sub string) (value.Value, *errors.GSMError) {
	v, ok := t.vars[name]
	if !ok {
		return value.Value{}, errors.New(errors.UndefinedRef, "undefined reference %q", name)
	}
	if sub == "" {
		return v.Copy(), nil
	}
	if v.Opaque == nil || v.Opaque.Subs == nil {
		return value.Value{}, errors.New(errors.SubNotSupported, "%q does not support sub-variables", name)
	}
	sv, ok := v.Opaque.Subs.GetSub(sub)
	if !ok {
		return value.Value{}, errors.New(errors.UndefinedRef, "undefined sub-variable %q.%q", name, sub)
	}
	return sv.Copy(), nil
}

// TryResolve is the "soft" dereference used by BindRef (§4.4): an
// undefined name or sub-name returns ok=false with no error recorded,
// deferring the failure to call time instead of reporting it here.
func (t *Table) TryResolve(name, sub string) (v value.Value, ok bool) {
	bound, defined := t.vars[name]
	if !defined {
		return value.Value{}, false
	}
	if sub == "" {
		return bound.Copy(), true
	}
	if bound.Opaque == nil || bound.Opaque.Subs == nil {
		return value.Value{}, false
	}
	sv, found := bound.Opaque.Subs.GetSub(sub)
	if !found {
		return value.Value{}, false
	}
	return sv.Copy(), true
}

// AssignSub delegates a sub-variable assignment to the value bound to
// name. Fails with SubNotSupported if the bound kind has no sub-mapping.
func (t *Table) AssignSub(name, sub string, v value.Value) *errors.GSMError {
	bound, ok := t.vars[name]
	if !ok {
		return errors.New(errors.UndefinedRef, "undefined reference %q", name)
	}
	if bound.Opaque == nil || bound.Opaque.Subs == nil {
		return errors.New(errors.SubNotSupported, "%q does not support sub-variables", name)
	}
	if err := bound.Opaque.Subs.SetSub(sub, v); err != nil {
		return errors.New(errors.SubNotSupported, "%v", err)
	}
	return nil
}

// UnAssignSub delegates sub-variable removal the same way AssignSub
// delegates assignment.
func (t *Table) UnAssignSub(name, sub string) *errors.GSMError {
	bound, ok := t.vars[name]
	if !ok {
		return errors.New(errors.UndefinedRef, "undefined reference %q", name)
	}
	if bound.Opaque == nil || bound.Opaque.Subs == nil {
		return errors.New(errors.SubNotSupported, "%q does not support sub-variables", name)
	}
	if err := bound.Opaque.Subs.RemoveSub(sub); err != nil {
		return errors.New(errors.SubNotSupported, "%v", err)
	}
	return nil
}
