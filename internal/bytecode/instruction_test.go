package bytecode

import "testing"

func TestOpStringCoversEveryOpcode(t *testing.T) {
	ops := []Op{
		OpPushLiteral, OpPushRef, OpAssign, OpUnassign, OpOperator,
		OpInitCall, OpBind, OpBindVal, OpBindRef, OpBindNamed, OpCall,
		OpList, OpSubscript, OpIfGoto, OpGoto, OpPop, OpOutput, OpQuit,
	}
	for _, op := range ops {
		if op.String() == "UNKNOWN" {
			t.Errorf("Op(%d).String() = UNKNOWN", op)
		}
	}
}

func TestIsUnary(t *testing.T) {
	unary := []OperatorKind{Negate, Not}
	for _, op := range unary {
		if !op.IsUnary() {
			t.Errorf("%v.IsUnary() = false, want true", op)
		}
	}

	binary := []OperatorKind{Add, Subtract, Multiply, Divide, IntegerDivide, Modulus, Eq, Ne, Lt, Le, Gt, Ge, And, Or}
	for _, op := range binary {
		if op.IsUnary() {
			t.Errorf("%v.IsUnary() = true, want false", op)
		}
	}
}
