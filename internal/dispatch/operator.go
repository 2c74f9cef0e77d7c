// Package dispatch implements type-directed operator evaluation over
// already-dereferenced Values (§4.1). Reference resolution and stack
// management are the caller's (internal/vm's) responsibility; this
// package is pure value-in, value-out arithmetic/relational/logical
// dispatch plus the numeric coercion rules.
package dispatch

import (
	"math/big"

	"gsm/internal/bytecode"
	"gsm/internal/errors"
	"gsm/internal/value"
)

// Binary evaluates a binary operator over two already-dereferenced
// operands. On success it returns the result value and true. On failure
// it returns an err-kind Value (possibly with an empty message if the
// caller is expected to have already reported it) and false.
func Binary(op bytecode.OperatorKind, left, right value.Value) (value.Value, bool) {
	// Special case (§4.1): int / int divides exactly into a rat, even
	// though the operand kinds match — this is the one exception to
	// "operands must share a kind" being the *only* coercion rule.
	if op == bytecode.Divide && left.Kind == value.KindInt && right.Kind == value.KindInt {
		if right.Int.Sign() == 0 {
			return value.ErrOf(errors.DivisionByZero, "division by zero"), false
		}
		return value.Rat(new(big.Rat).SetFrac(left.Int, right.Int)), true
	}

	if left.Kind != right.Kind {
		return value.ErrOf(errors.TypeMismatch, "operands of type %s and %s", left.Kind, right.Kind), false
	}

	switch left.Kind {
	case value.KindInt:
		return binaryInt(op, left, right)
	case value.KindRat:
		return binaryRat(op, left, right)
	case value.KindFloat:
		return binaryFloat(op, left, right)
	case value.KindString:
		return binaryString(op, left, right)
	case value.KindBool:
		return binaryBool(op, left, right)
	default:
		return value.ErrOf(errors.TypeMismatch, "operator %s not supported on %s", op, left.Kind), false
	}
}

// Unary evaluates a unary operator over an already-dereferenced operand.
func Unary(op bytecode.OperatorKind, operand value.Value) (value.Value, bool) {
	switch op {
	case bytecode.Negate:
		switch operand.Kind {
		case value.KindInt:
			return value.Int(new(big.Int).Neg(operand.Int)), true
		case value.KindRat:
			return value.Rat(new(big.Rat).Neg(operand.Rat)), true
		case value.KindFloat:
			return value.Float(-operand.Float), true
		default:
			return value.ErrOf(errors.TypeMismatch, "NEGATE not supported on %s", operand.Kind), false
		}
	case bytecode.Not:
		if operand.Kind != value.KindBool {
			return value.ErrOf(errors.TypeMismatch, "NOT not supported on %s", operand.Kind), false
		}
		return value.Bool(!operand.Bool), true
	default:
		return value.ErrOf(errors.TypeMismatch, "unknown unary operator %s", op), false
	}
}

func binaryInt(op bytecode.OperatorKind, l, r value.Value) (value.Value, bool) {
	a, b := l.Int, r.Int
	switch op {
	case bytecode.Add:
		return value.Int(new(big.Int).Add(a, b)), true
	case bytecode.Subtract:
		return value.Int(new(big.Int).Sub(a, b)), true
	case bytecode.Multiply:
		return value.Int(new(big.Int).Mul(a, b)), true
	case bytecode.IntegerDivide:
		if b.Sign() == 0 {
			return value.ErrOf(errors.DivisionByZero, "division by zero"), false
		}
		return value.Int(new(big.Int).Quo(a, b)), true
	case bytecode.Modulus:
		if b.Sign() == 0 {
			return value.ErrOf(errors.DivisionByZero, "division by zero"), false
		}
		return value.Int(new(big.Int).Rem(a, b)), true
	default:
		if v, ok := compare(op, a.Cmp(b)); ok {
			return v, true
		}
		return value.ErrOf(errors.TypeMismatch, "operator %s not supported on int", op), false
	}
}

func binaryRat(op bytecode.OperatorKind, l, r value.Value) (value.Value, bool) {
	a, b := l.Rat, r.Rat
	switch op {
	case bytecode.Add:
		return value.Rat(new(big.Rat).Add(a, b)), true
	case bytecode.Subtract:
		return value.Rat(new(big.Rat).Sub(a, b)), true
	case bytecode.Multiply:
		return value.Rat(new(big.Rat).Mul(a, b)), true
	case bytecode.Divide:
		if b.Sign() == 0 {
			return value.ErrOf(errors.DivisionByZero, "division by zero"), false
		}
		return value.Rat(new(big.Rat).Quo(a, b)), true
	default:
		if v, ok := compare(op, a.Cmp(b)); ok {
			return v, true
		}
		return value.ErrOf(errors.TypeMismatch, "operator %s not supported on rat", op), false
	}
}

func binaryFloat(op bytecode.OperatorKind, l, r value.Value) (value.Value, bool) {
	a, b := l.Float, r.Float
	switch op {
	case bytecode.Add:
		return value.Float(a + b), true
	case bytecode.Subtract:
		return value.Float(a - b), true
	case bytecode.Multiply:
		return value.Float(a * b), true
	case bytecode.Divide:
		if b == 0 {
			return value.ErrOf(errors.DivisionByZero, "division by zero"), false
		}
		return value.Float(a / b), true
	default:
		cmp := 0
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
		if v, ok := compare(op, cmp); ok {
			return v, true
		}
		return value.ErrOf(errors.TypeMismatch, "operator %s not supported on float", op), false
	}
}

func binaryString(op bytecode.OperatorKind, l, r value.Value) (value.Value, bool) {
	if op == bytecode.Add {
		return value.String(l.Str + r.Str), true
	}
	cmp := 0
	switch {
	case l.Str < r.Str:
		cmp = -1
	case l.Str > r.Str:
		cmp = 1
	}
	if v, ok := compare(op, cmp); ok {
		return v, true
	}
	return value.ErrOf(errors.TypeMismatch, "operator %s not supported on string", op), false
}

func binaryBool(op bytecode.OperatorKind, l, r value.Value) (value.Value, bool) {
	switch op {
	case bytecode.And:
		return value.Bool(l.Bool && r.Bool), true
	case bytecode.Or:
		return value.Bool(l.Bool || r.Bool), true
	case bytecode.Eq:
		return value.Bool(l.Bool == r.Bool), true
	case bytecode.Ne:
		return value.Bool(l.Bool != r.Bool), true
	default:
		return value.ErrOf(errors.TypeMismatch, "operator %s not supported on bool", op), false
	}
}

// compare maps a three-way comparison result to the relational operator
// requested. The bool return is false when op isn't a relational
// operator at all, letting callers fall through to a TypeMismatch.
func compare(op bytecode.OperatorKind, cmp int) (value.Value, bool) {
	switch op {
	case bytecode.Eq:
		return value.Bool(cmp == 0), true
	case bytecode.Ne:
		return value.Bool(cmp != 0), true
	case bytecode.Lt:
		return value.Bool(cmp < 0), true
	case bytecode.Le:
		return value.Bool(cmp <= 0), true
	case bytecode.Gt:
		return value.Bool(cmp > 0), true
	case bytecode.Ge:
		return value.Bool(cmp >= 0), true
	default:
		return value.Value{}, false
	}
}
