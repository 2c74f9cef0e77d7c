// Package callobj implements the overloaded-function call subsystem
// (§3, §4.4): function descriptors with one or more type-signature
// overloads, and a per-call accumulator that narrows the viable overload
// set as parameters are bound by name or position.
package callobj

import (
	"gsm/internal/errors"
	"gsm/internal/value"
)

// PassMode selects whether a parameter is bound by value or by
// reference. By-reference parameters retain enough of the original
// operand (a reference or a list shadow) that Call can write the
// handler's output back through the binding table or list slot.
type PassMode int

const (
	ByValue PassMode = iota
	ByRef
)

// ParamSpec describes one declared parameter of one overload. Any is
// true for a parameter that matches every value kind (a wildcard slot),
// used for e.g. functions that forward opaque handles untyped.
type ParamSpec struct {
	Name       string
	Kind       value.Kind
	Any        bool
	HasDefault bool
	Default    value.Value
	Mode       PassMode
}

func (p ParamSpec) accepts(v value.Value) bool {
	return p.Any || p.Kind == v.Kind
}

// Handler is a registered native function body. params is ordered per
// the winning overload's ParamSpec list; a handler may mutate a by-ref
// slot in place (params[i] = newValue) to request writeback.
type Handler func(params []value.Value) (value.Value, *errors.GSMError)

// Overload is one declared signature of a function.
type Overload struct {
	Params  []ParamSpec
	Handler Handler
}

// FuncDescriptor is a function name plus its declared overloads.
type FuncDescriptor struct {
	Name      string
	Overloads []*Overload
}

// Registry is the VM's function table (§4.4 AddFunction/InitCall).
type Registry struct {
	funcs map[string]*FuncDescriptor
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*FuncDescriptor)}
}

// AddFunction registers fd, replacing any prior descriptor of the same
// name (matching GSM::AddFunction's Define-on-the-function-table
// semantics).
func (r *Registry) AddFunction(fd *FuncDescriptor) {
	r.funcs[fd.Name] = fd
}

func (r *Registry) Lookup(name string) (*FuncDescriptor, bool) {
	fd, ok := r.funcs[name]
	return fd, ok
}
