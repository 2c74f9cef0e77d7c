package vm

import (
	"gsm/internal/bytecode"
	"gsm/internal/errors"
	"gsm/internal/value"
)

// Status is the terminal disposition of a Execute run (§4.5, §6).
type Status int

const (
	Success Status = iota
	Fail
	Quit
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Fail:
		return "FAIL"
	case Quit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// Execute runs program to completion, driven by a program counter that
// GOTO/IF_GOTO adjust directly; every other opcode advances it by one
// after delegating to the matching GSM method (§4.5). The first
// instruction to report failure stops the run with status FAIL without
// executing anything after it. Whatever the outcome, the operand stack
// is unconditionally flushed before returning (§8 property 1).
func (g *GSM) Execute(program []bytecode.Instruction) Status {
	status := Success
	pc := 0

	for pc < len(program) {
		instr := program[pc]

		switch instr.Op {
		case bytecode.OpQuit:
			status = Quit
			pc = len(program)
			continue

		case bytecode.OpGoto:
			pc = instr.N
			continue

		case bytecode.OpIfGoto:
			dest, jumped, ok := g.ifGoto(instr.N)
			if !ok {
				status = Fail
				pc = len(program)
				continue
			}
			if jumped {
				pc = dest
			} else {
				pc++
			}
			continue
		}

		if !g.step(instr) {
			status = Fail
			break
		}
		pc++
	}

	g.Flush()
	return status
}

// ifGoto implements IF_GOTO (§4.5): pop the top value (resolving a
// reference), jump to target on true, fall through on false. A non-bool
// condition is pushed back rather than replaced with an err (§8 property
// 8), reported, and the instruction fails.
func (g *GSM) ifGoto(target int) (dest int, jumped bool, ok bool) {
	cond, e := g.pop()
	if e != nil {
		g.fail(e)
		return 0, false, false
	}
	if cond.IsRef() {
		resolved, rerr := g.refTable.Resolve(cond.RefName, cond.RefSub)
		if rerr != nil {
			g.fail(rerr)
			return 0, false, false
		}
		cond = resolved
	}
	if cond.Kind != value.KindBool {
		g.push(cond)
		g.report(errors.New(errors.NonBoolBranch, "IF_GOTO condition is not a bool"))
		return 0, false, false
	}
	if cond.Bool {
		return target, true, true
	}
	return 0, false, true
}

// step executes every opcode Execute doesn't special-case itself.
func (g *GSM) step(instr bytecode.Instruction) bool {
	switch instr.Op {
	case bytecode.OpPushLiteral:
		g.push(instr.Literal)
		return true
	case bytecode.OpPushRef:
		g.PushReference(instr.Name, instr.Sub)
		return true
	case bytecode.OpAssign:
		return g.Assign()
	case bytecode.OpUnassign:
		return g.UnAssign()
	case bytecode.OpOperator:
		return g.Op(instr.Operator)
	case bytecode.OpInitCall:
		return g.InitCall(instr.Name)
	case bytecode.OpBind:
		return g.Bind()
	case bytecode.OpBindVal:
		return g.BindVal()
	case bytecode.OpBindRef:
		return g.BindRef()
	case bytecode.OpBindNamed:
		return g.BindNamed(instr.Sub, instr.Name)
	case bytecode.OpCall:
		return g.Call()
	case bytecode.OpList:
		return g.PushList(instr.N)
	case bytecode.OpSubscript:
		return g.Subscript()
	case bytecode.OpPop:
		return g.Pop()
	case bytecode.OpOutput:
		g.Output()
		return true
	default:
		return g.fail(errors.New(errors.InternalInvariant, "unrecognized opcode %v", instr.Op))
	}
}
