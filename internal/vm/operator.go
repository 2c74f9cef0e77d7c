package vm

import (
	"gsm/internal/bytecode"
	"gsm/internal/dispatch"
	"gsm/internal/errors"
	"gsm/internal/value"
)

func (g *GSM) deref(v value.Value) (value.Value, *errors.GSMError) {
	if !v.IsRef() {
		return v, nil
	}
	return g.refTable.Resolve(v.RefName, v.RefSub)
}

// Op dispatches a unary or binary operator (§4.1). Binary operators pop
// right then left and push a single replacement value; unary operators
// pop one operand and push its result.
func (g *GSM) Op(kind bytecode.OperatorKind) bool {
	if kind.IsUnary() {
		return g.unaryOp(kind)
	}
	return g.binaryOp(kind)
}

func (g *GSM) binaryOp(kind bytecode.OperatorKind) bool {
	right, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	left, e := g.pop()
	if e != nil {
		return g.fail(e)
	}

	left, e = g.deref(left)
	if e != nil {
		return g.fail(e)
	}
	right, e = g.deref(right)
	if e != nil {
		return g.fail(e)
	}

	result, ok := dispatch.Binary(kind, left, right)
	g.push(result)
	if !ok {
		g.report(result.Err)
		return false
	}
	return true
}

func (g *GSM) unaryOp(kind bytecode.OperatorKind) bool {
	operand, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	operand, e = g.deref(operand)
	if e != nil {
		return g.fail(e)
	}
	result, ok := dispatch.Unary(kind, operand)
	g.push(result)
	if !ok {
		g.report(result.Err)
		return false
	}
	return true
}
