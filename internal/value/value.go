// Package value defines the GSM tagged value universe (§3 of the spec):
// a closed set of scalar/list/stream/reference/error kinds plus an open set
// of host-registered opaque kinds, along with the shadow/parent-list
// back-references that give list subscripting its aliasing semantics.
package value

import (
	"math/big"

	"gsm/internal/errors"
)

// Kind tags the payload a Value carries. It is a closed set except for
// Opaque, which is itself an open set realised through Opaque.TypeName
// rather than through additional Kind values (§3: "an open set of
// opaque-<T> kinds").
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindRat
	KindFloat
	KindString
	KindList
	KindStream
	KindRef
	KindErr
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindRat:
		return "rat"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindStream:
		return "stream"
	case KindRef:
		return "ref"
	case KindErr:
		return "err"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Sink is a write-only destination for Output. Files and WebSocket
// connections (internal/stream) both implement it.
type Sink interface {
	WriteString(s string) error
	Close() error
}

// SubMapper is implemented by structured opaque kinds (§3, §4.3) that
// expose a string-keyed sub-variable mapping.
type SubMapper interface {
	GetSub(name string) (Value, bool)
	SetSub(name string, v Value) error
	RemoveSub(name string) error
}

// Opaque is the payload of an opaque-<T> kind: a borrowed host handle, and
// optionally a sub-variable mapping if the kind is "structured".
type Opaque struct {
	TypeName string
	Handle   interface{}
	Subs     SubMapper
}

// Value is the tagged datum described in §3. It is copied by value on the
// Go stack; Copy() produces an independent deep copy per the ownership
// rules, and shadowOf/parentList are non-owning back-references only.
type Value struct {
	Kind Kind

	Bool    bool
	Int     *big.Int
	Rat     *big.Rat
	Float   float64
	Str     string
	List    *List
	Stream  Sink
	RefName string
	RefSub  string
	Err     *errors.GSMError
	Opaque  *Opaque

	shadowOf   *Value
	parentList *List
}

func Bool(b bool) Value    { return Value{Kind: KindBool, Bool: b} }
func Int(i *big.Int) Value { return Value{Kind: KindInt, Int: i} }
func IntFromInt64(i int64) Value {
	return Value{Kind: KindInt, Int: big.NewInt(i)}
}
func Rat(r *big.Rat) Value   { return Value{Kind: KindRat, Rat: r} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func ListVal(l *List) Value  { return Value{Kind: KindList, List: l} }
func StreamVal(s Sink) Value { return Value{Kind: KindStream, Stream: s} }
func Ref(name, sub string) Value {
	return Value{Kind: KindRef, RefName: name, RefSub: sub}
}
func Err(e *errors.GSMError) Value { return Value{Kind: KindErr, Err: e} }
func ErrOf(kind errors.Kind, format string, args ...interface{}) Value {
	return Err(errors.New(kind, format, args...))
}
func OpaqueVal(typeName string, handle interface{}, subs SubMapper) Value {
	return Value{Kind: KindOpaque, Opaque: &Opaque{TypeName: typeName, Handle: handle, Subs: subs}}
}

func (v Value) IsRef() bool  { return v.Kind == KindRef }
func (v Value) IsErr() bool  { return v.Kind == KindErr }
func (v Value) IsList() bool { return v.Kind == KindList }

func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindRat || v.Kind == KindFloat
}

// ShadowOf reports the list slot this value is a view onto, if any.
func (v Value) ShadowOf() *Value { return v.shadowOf }

// ParentList reports the list that owns this value as an element, if any.
func (v Value) ParentList() *List { return v.parentList }

// AsShadowOf returns a copy of v marked as a shadow of origin. Used by
// Subscript (§4.2) to build the view pushed back onto the operand stack.
func (v Value) AsShadowOf(origin *Value) Value {
	shadow := v
	shadow.shadowOf = origin
	shadow.parentList = nil
	return shadow
}

// Copy produces an independent value: scalars and strings copy trivially,
// lists clone recursively, opaque handles are shared (they are borrowed
// host resources, never owned by the VM — §3), and the result never
// carries shadow-of/parent-list back-references, per the invariant that a
// copy is a fresh value with no ties to its origin.
func (v Value) Copy() Value {
	out := v
	out.shadowOf = nil
	out.parentList = nil
	switch v.Kind {
	case KindInt:
		if v.Int != nil {
			out.Int = new(big.Int).Set(v.Int)
		}
	case KindRat:
		if v.Rat != nil {
			out.Rat = new(big.Rat).Set(v.Rat)
		}
	case KindList:
		if v.List != nil {
			out.List = v.List.Clone()
		}
	}
	return out
}
