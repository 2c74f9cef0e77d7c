// Package vm implements GSM, the stack-based command interpreter (§4).
// A GSM owns one operand stack, one call-accumulator stack, one binding
// table, and one function registry; its output and error sinks are
// injected at construction, matching the embedding surface of §6 and the
// "no hidden singletons" rule of §9.
package vm

import (
	"fmt"
	"io"
	"math/big"

	"gsm/internal/binding"
	"gsm/internal/callobj"
	"gsm/internal/errors"
	"gsm/internal/value"
)

// Config bounds the VM's pre-allocated capacity. The zero Config is
// usable; withDefaults fills in sane sizes the way the teacher's NewVM
// hard-codes stack/frame pre-allocation constants. MaxCallDepth limits
// InitCall; MaxStackDepth is filled in but not read by any operation, so
// the operand stack grows without a limit.
type Config struct {
	StackCapacity int
	MaxStackDepth int
	MaxCallDepth  int
}

func (c Config) withDefaults() Config {
	if c.StackCapacity <= 0 {
		c.StackCapacity = 64
	}
	if c.MaxStackDepth <= 0 {
		c.MaxStackDepth = 65536
	}
	if c.MaxCallDepth <= 0 {
		c.MaxCallDepth = 1024
	}
	return c
}

// GSM is the VM instance.
type GSM struct {
	cfg Config

	stack    []value.Value
	maxDepth int

	callStack []*callobj.Accumulator

	refTable  *binding.Table
	funcTable *callobj.Registry

	out io.Writer
	err io.Writer
}

// New creates a VM writing output to out and errors to errSink.
func New(cfg Config, out, errSink io.Writer) *GSM {
	cfg = cfg.withDefaults()
	return &GSM{
		cfg:       cfg,
		stack:     make([]value.Value, 0, cfg.StackCapacity),
		refTable:  binding.New(),
		funcTable: callobj.NewRegistry(),
		out:       out,
		err:       errSink,
	}
}

func (g *GSM) Depth() int    { return len(g.stack) }
func (g *GSM) MaxDepth() int { return g.maxDepth }

func (g *GSM) push(v value.Value) {
	g.stack = append(g.stack, v)
	if len(g.stack) > g.maxDepth {
		g.maxDepth = len(g.stack)
	}
}

func (g *GSM) pop() (value.Value, *errors.GSMError) {
	if len(g.stack) == 0 {
		return value.Value{}, errors.New(errors.StackUnderflow, "operand stack is empty")
	}
	top := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return top, nil
}

func (g *GSM) peek() (value.Value, *errors.GSMError) {
	if len(g.stack) == 0 {
		return value.Value{}, errors.New(errors.StackUnderflow, "operand stack is empty")
	}
	return g.stack[len(g.stack)-1], nil
}

// report writes a reported error to the error sink (§7: errors with
// non-empty messages are reported once; empty-message errors are the
// "already reported, suppress" convention).
func (g *GSM) report(e *errors.GSMError) {
	if e != nil && e.Reported() {
		fmt.Fprintf(g.err, "Error: %s\n", e.Error())
	}
}

// fail pushes e as an err Value, reports it, and returns false — the
// uniform shape of "an instruction/operation did not succeed" (§7).
func (g *GSM) fail(e *errors.GSMError) bool {
	g.report(e)
	g.push(value.Err(e))
	return false
}

// AddFunction registers a host function descriptor (§6).
func (g *GSM) AddFunction(fd *callobj.FuncDescriptor) {
	g.funcTable.AddFunction(fd)
}

// RefTable exposes the binding table for host collaborators
// (internal/session, internal/hostdb) that need to define or read
// bindings outside of program execution.
func (g *GSM) RefTable() *binding.Table { return g.refTable }

//------------------------------------------------------------------------
// Push() functions (§6)
//------------------------------------------------------------------------

func (g *GSM) PushBool(b bool)          { g.push(value.Bool(b)) }
func (g *GSM) PushFloat(f float64)      { g.push(value.Float(f)) }
func (g *GSM) PushInt(i *big.Int)       { g.push(value.Int(i)) }
func (g *GSM) PushInt64(i int64)        { g.push(value.IntFromInt64(i)) }
func (g *GSM) PushRat(r *big.Rat)       { g.push(value.Rat(r)) }
func (g *GSM) PushString(s string)      { g.push(value.String(s)) }
func (g *GSM) PushReference(name, sub string) { g.push(value.Ref(name, sub)) }
func (g *GSM) PushStreamSink(s value.Sink)    { g.push(value.StreamVal(s)) }

// PushList pops n values, resolving any references among them, and
// assembles them into a list in reverse-pop order so the first-pushed
// element becomes the list's first element (§4.2).
func (g *GSM) PushList(n int) bool {
	if n < 0 || n > len(g.stack) {
		return g.fail(errors.New(errors.StackUnderflow, "LIST(%d): not enough operands (have %d)", n, len(g.stack)))
	}
	popped := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, e := g.pop()
		if e != nil {
			return g.fail(e)
		}
		if v.IsRef() {
			resolved, rerr := g.refTable.Resolve(v.RefName, v.RefSub)
			if rerr != nil {
				return g.fail(rerr)
			}
			v = resolved
		}
		popped[i] = v
	}
	list := value.NewList()
	for _, v := range popped {
		list.Append(v)
	}
	g.push(value.ListVal(list))
	return true
}

//------------------------------------------------------------------------
// Assign / UnAssign (§4.3)
//------------------------------------------------------------------------

// Assign consumes the top two stack values (§4.3). Whichever of the two is
// a reference or a list shadow is the target; the other is the value being
// stored. Ordinary bindings push value-then-ref (the ref ends up on top);
// subscript assignment pushes shadow-then-value (the value ends up on top,
// since SUBSCRIPT already left its shadow below). Checking both positions
// lets one instruction serve both calling shapes.
func (g *GSM) Assign() bool {
	top, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	below, e := g.pop()
	if e != nil {
		return g.fail(e)
	}

	var target, val value.Value
	switch {
	case top.IsRef() || top.ShadowOf() != nil:
		target, val = top, below
	case below.IsRef() || below.ShadowOf() != nil:
		target, val = below, top
	default:
		return g.fail(errors.New(errors.NoLValue, "neither operand of ASSIGN is a reference or list element"))
	}

	if val.IsRef() {
		resolved, rerr := g.refTable.Resolve(val.RefName, val.RefSub)
		if rerr != nil {
			return g.fail(rerr)
		}
		val = resolved
	}

	if target.IsRef() {
		if target.RefSub == "" {
			g.refTable.Define(target.RefName, val.Copy())
			g.push(val)
			return true
		}
		if !g.refTable.IsDefined(target.RefName) {
			return g.fail(errors.New(errors.UndefinedRef, "undefined reference %q", target.RefName))
		}
		if aerr := g.refTable.AssignSub(target.RefName, target.RefSub, val.Copy()); aerr != nil {
			return g.fail(aerr)
		}
		g.push(val)
		return true
	}

	origin := target.ShadowOf()
	list := origin.ParentList()
	idx := 0
	if list != nil {
		idx = list.Find(origin)
	}
	if idx == 0 {
		return g.fail(errors.New(errors.NoLValue, "shadow value no longer has a live originating list slot"))
	}
	if serr := list.Set(idx, val.Copy()); serr != nil {
		g.report(serr.(*errors.GSMError))
	}
	g.push(val.Copy())
	return true
}

func (g *GSM) UnAssign() bool {
	lhs, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	if !lhs.IsRef() {
		return g.fail(errors.New(errors.NoLValue, "left operand of UNASSIGN is not a reference"))
	}
	if lhs.RefSub == "" {
		g.refTable.Remove(lhs.RefName)
		return true
	}
	if uerr := g.refTable.UnAssignSub(lhs.RefName, lhs.RefSub); uerr != nil {
		return g.fail(uerr)
	}
	return true
}

//------------------------------------------------------------------------
// Subscript (§4.2)
//------------------------------------------------------------------------

func (g *GSM) Subscript() bool {
	idx, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	top, e := g.pop()
	if e != nil {
		return g.fail(e)
	}

	if idx.IsRef() {
		resolved, rerr := g.refTable.Resolve(idx.RefName, idx.RefSub)
		if rerr != nil {
			return g.fail(rerr)
		}
		idx = resolved
	}

	if top.IsRef() {
		if list, ok := g.refTable.BorrowList(top.RefName); ok {
			top = value.ListVal(list)
		}
		// else: leave top as the unresolved reference; it will fail the
		// "not a list" check below, matching gsm.cc's fallback.
	}

	if !top.IsList() {
		return g.fail(errors.New(errors.TypeMismatch, "SUBSCRIPT target is not a list"))
	}
	if idx.Kind != value.KindInt {
		return g.fail(errors.New(errors.TypeMismatch, "SUBSCRIPT index must be an int"))
	}

	i := int(idx.Int.Int64())
	slot, serr := top.List.Get(i)
	if serr != nil {
		ge := serr.(*errors.GSMError)
		return g.fail(ge)
	}
	shadow := slot.Copy().AsShadowOf(slot)
	g.push(shadow)
	return true
}

//------------------------------------------------------------------------
// Misc (§6)
//------------------------------------------------------------------------

func (g *GSM) Pop() bool {
	_, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	return true
}

// Output serialises the top of the stack to the output sink, resolving a
// reference first, and consumes it — matching gsm.cc's Output(). If the
// resolved top is a stream-kind binding (§6 PushStreamSink; SPEC_FULL.md's
// DOMAIN STACK), OUTPUT instead pops the value below it and writes that
// value's rendering to the stream's own sink, leaving the VM's own output
// sink untouched — the two-operand shape mirrors ASSIGN's target-then-value
// pattern, with the stream playing the role of the target.
func (g *GSM) Output() {
	if len(g.stack) == 0 {
		fmt.Fprint(g.out, "Stack : NULL\n")
		return
	}
	top, _ := g.pop()
	if top.IsRef() {
		resolved, rerr := g.refTable.Resolve(top.RefName, top.RefSub)
		if rerr != nil {
			g.report(rerr)
			fmt.Fprintf(g.out, "%s\n", value.Render(value.Err(rerr)))
			return
		}
		top = resolved
	}
	if top.Kind == value.KindStream {
		g.outputToStream(top)
		return
	}
	fmt.Fprintf(g.out, "%s\n", value.Render(top))
}

// outputToStream pops the payload below a stream target and writes its
// rendering to the stream's sink instead of g.out.
func (g *GSM) outputToStream(stream value.Value) {
	payload, e := g.pop()
	if e != nil {
		g.fail(e)
		return
	}
	if payload.IsRef() {
		resolved, rerr := g.refTable.Resolve(payload.RefName, payload.RefSub)
		if rerr != nil {
			g.fail(rerr)
			return
		}
		payload = resolved
	}
	if werr := stream.Stream.WriteString(value.Render(payload) + "\n"); werr != nil {
		g.report(errors.New(errors.HandlerFailure, "stream write failed: %v", werr))
	}
}

// Dump prints every stack element, top first, each through Output —
// which pops as it goes, so the stack is empty once Dump returns.
func (g *GSM) Dump() {
	if len(g.stack) == 0 {
		fmt.Fprint(g.out, "Stack : NULL\n")
		fmt.Fprint(g.out, "\n")
		return
	}
	for i := len(g.stack) - 1; i >= 0; i-- {
		fmt.Fprintf(g.out, "Stack element %d : ", i)
		g.Output()
	}
	fmt.Fprint(g.out, "\n")
}

// Flush drops every remaining value on the operand stack. The driver
// calls this unconditionally on shutdown (§5, §8 property 1).
func (g *GSM) Flush() {
	g.stack = g.stack[:0]
}
