package asmtext

import (
	"strings"
	"testing"

	"gsm/internal/bytecode"
	"gsm/internal/value"
)

func TestAssembleScenarioA(t *testing.T) {
	src := `
		# add two and three
		PUSH_LITERAL INT 2
		PUSH_LITERAL INT 3
		OP ADD
		OUTPUT
		QUIT
	`
	program, err := Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(program) != 5 {
		t.Fatalf("len(program) = %d, want 5", len(program))
	}
	if program[0].Op != bytecode.OpPushLiteral || program[0].Literal.Int.Int64() != 2 {
		t.Fatalf("program[0] = %+v, want PUSH_LITERAL 2", program[0])
	}
	if program[2].Op != bytecode.OpOperator || program[2].Operator != bytecode.Add {
		t.Fatalf("program[2] = %+v, want OP ADD", program[2])
	}
	if program[4].Op != bytecode.OpQuit {
		t.Fatalf("program[4] = %+v, want QUIT", program[4])
	}
}

func TestAssemblePushRefWithSub(t *testing.T) {
	program, err := Assemble(strings.NewReader(`PUSH_REF conn.row`))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	instr := program[0]
	if instr.Name != "conn" || instr.Sub != "row" {
		t.Fatalf("PUSH_REF = %+v, want name=conn sub=row", instr)
	}
}

func TestAssemblePushRefBareName(t *testing.T) {
	program, err := Assemble(strings.NewReader(`PUSH_REF x`))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if program[0].Name != "x" || program[0].Sub != "" {
		t.Fatalf("PUSH_REF = %+v, want name=x sub=\"\"", program[0])
	}
}

func TestAssembleStringLiteralWithSpaces(t *testing.T) {
	program, err := Assemble(strings.NewReader(`PUSH_LITERAL STRING "hello world"`))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if program[0].Literal.Str != "hello world" {
		t.Fatalf("literal = %q, want %q", program[0].Literal.Str, "hello world")
	}
}

func TestAssembleBindNamed(t *testing.T) {
	program, err := Assemble(strings.NewReader(`BIND_NAMED VAL n`))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	instr := program[0]
	if instr.Op != bytecode.OpBindNamed || instr.Sub != "VAL" || instr.Name != "n" {
		t.Fatalf("BIND_NAMED = %+v", instr)
	}
}

func TestAssembleJumpTargetsAreRawIndices(t *testing.T) {
	program, err := Assemble(strings.NewReader("IF_GOTO 6\nGOTO 2\n"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if program[0].Op != bytecode.OpIfGoto || program[0].N != 6 {
		t.Fatalf("IF_GOTO = %+v, want N=6", program[0])
	}
	if program[1].Op != bytecode.OpGoto || program[1].N != 2 {
		t.Fatalf("GOTO = %+v, want N=2", program[1])
	}
}

func TestAssembleBlankAndCommentOnlyLinesAreSkipped(t *testing.T) {
	program, err := Assemble(strings.NewReader("\n# just a comment\n   \nQUIT\n"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(program) != 1 || program[0].Op != bytecode.OpQuit {
		t.Fatalf("program = %+v, want single QUIT", program)
	}
}

func TestAssembleUnknownMnemonicFails(t *testing.T) {
	_, err := Assemble(strings.NewReader("FROBNICATE"))
	if err == nil {
		t.Fatalf("Assemble(FROBNICATE) succeeded, want error")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("error = %v, want it to mention the line number", err)
	}
}

func TestAssembleBadIntLiteralFails(t *testing.T) {
	_, err := Assemble(strings.NewReader("PUSH_LITERAL INT not-a-number"))
	if err == nil {
		t.Fatalf("Assemble with a bad int literal succeeded, want error")
	}
}

func TestAssembleRatAndFloatLiterals(t *testing.T) {
	program, err := Assemble(strings.NewReader("PUSH_LITERAL RAT 5/2\nPUSH_LITERAL FLOAT 1.5\n"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if program[0].Literal.Kind != value.KindRat {
		t.Fatalf("program[0].Literal.Kind = %v, want rat", program[0].Literal.Kind)
	}
	if program[1].Literal.Kind != value.KindFloat || program[1].Literal.Float != 1.5 {
		t.Fatalf("program[1].Literal = %+v, want float 1.5", program[1].Literal)
	}
}
