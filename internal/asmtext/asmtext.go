// Package asmtext is a minimal line-oriented textual assembler that turns
// a handwritten program into a []bytecode.Instruction. It stands in for
// the parser/compiler collaborator spec.md places out of scope (§1, §6
// "An instruction factory") — just enough for cmd/gsm to load a program
// without a real expression parser. One mnemonic per line,
// whitespace-separated operands; "#" starts a line comment. Jump targets
// are raw 0-based instruction indices, since resolving labels is a
// compiler concern this package does not take on.
package asmtext

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"gsm/internal/bytecode"
	"gsm/internal/value"
)

// Assemble reads one instruction per non-blank, non-comment line from r.
func Assemble(r io.Reader) ([]bytecode.Instruction, error) {
	var program []bytecode.Instruction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if hash := strings.IndexByte(line, '#'); hash >= 0 {
			line = line[:hash]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		instr, err := assembleLine(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		program = append(program, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

func assembleLine(fields []string) (bytecode.Instruction, error) {
	mnemonic := strings.ToUpper(fields[0])
	args := fields[1:]

	switch mnemonic {
	case "PUSH_LITERAL":
		lit, err := parseLiteral(args)
		if err != nil {
			return bytecode.Instruction{}, err
		}
		return bytecode.Instruction{Op: bytecode.OpPushLiteral, Literal: lit}, nil

	case "PUSH_REF":
		name, sub := splitRef(arg(args, 0))
		return bytecode.Instruction{Op: bytecode.OpPushRef, Name: name, Sub: sub}, nil

	case "ASSIGN":
		return bytecode.Instruction{Op: bytecode.OpAssign}, nil
	case "UNASSIGN":
		return bytecode.Instruction{Op: bytecode.OpUnassign}, nil

	case "OP":
		op, err := parseOperator(arg(args, 0))
		if err != nil {
			return bytecode.Instruction{}, err
		}
		return bytecode.Instruction{Op: bytecode.OpOperator, Operator: op}, nil

	case "INIT_CALL":
		return bytecode.Instruction{Op: bytecode.OpInitCall, Name: arg(args, 0)}, nil
	case "BIND":
		return bytecode.Instruction{Op: bytecode.OpBind}, nil
	case "BIND_VAL":
		return bytecode.Instruction{Op: bytecode.OpBindVal}, nil
	case "BIND_REF":
		return bytecode.Instruction{Op: bytecode.OpBindRef}, nil
	case "BIND_NAMED":
		// BIND_NAMED <VAL|REF|DEFAULT> <param-name>
		return bytecode.Instruction{Op: bytecode.OpBindNamed, Sub: arg(args, 0), Name: arg(args, 1)}, nil
	case "CALL":
		return bytecode.Instruction{Op: bytecode.OpCall}, nil

	case "LIST":
		n, err := strconv.Atoi(arg(args, 0))
		if err != nil {
			return bytecode.Instruction{}, fmt.Errorf("LIST: %w", err)
		}
		return bytecode.Instruction{Op: bytecode.OpList, N: n}, nil

	case "SUBSCRIPT":
		return bytecode.Instruction{Op: bytecode.OpSubscript}, nil

	case "IF_GOTO":
		n, err := strconv.Atoi(arg(args, 0))
		if err != nil {
			return bytecode.Instruction{}, fmt.Errorf("IF_GOTO: %w", err)
		}
		return bytecode.Instruction{Op: bytecode.OpIfGoto, N: n}, nil

	case "GOTO":
		n, err := strconv.Atoi(arg(args, 0))
		if err != nil {
			return bytecode.Instruction{}, fmt.Errorf("GOTO: %w", err)
		}
		return bytecode.Instruction{Op: bytecode.OpGoto, N: n}, nil

	case "POP":
		return bytecode.Instruction{Op: bytecode.OpPop}, nil
	case "OUTPUT":
		return bytecode.Instruction{Op: bytecode.OpOutput}, nil
	case "QUIT":
		return bytecode.Instruction{Op: bytecode.OpQuit}, nil

	default:
		return bytecode.Instruction{}, fmt.Errorf("unrecognized mnemonic %q", fields[0])
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// splitRef splits "name.sub" into its two parts; a bare "name" has sub ==
// "".
func splitRef(s string) (name, sub string) {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		return s[:dot], s[dot+1:]
	}
	return s, ""
}

func parseOperator(tok string) (bytecode.OperatorKind, error) {
	switch strings.ToUpper(tok) {
	case "ADD":
		return bytecode.Add, nil
	case "SUBTRACT":
		return bytecode.Subtract, nil
	case "MULTIPLY":
		return bytecode.Multiply, nil
	case "DIVIDE":
		return bytecode.Divide, nil
	case "INTEGER_DIVIDE":
		return bytecode.IntegerDivide, nil
	case "MODULUS":
		return bytecode.Modulus, nil
	case "NEGATE":
		return bytecode.Negate, nil
	case "EQ":
		return bytecode.Eq, nil
	case "NE":
		return bytecode.Ne, nil
	case "LT":
		return bytecode.Lt, nil
	case "LE":
		return bytecode.Le, nil
	case "GT":
		return bytecode.Gt, nil
	case "GE":
		return bytecode.Ge, nil
	case "AND":
		return bytecode.And, nil
	case "OR":
		return bytecode.Or, nil
	case "NOT":
		return bytecode.Not, nil
	default:
		return 0, fmt.Errorf("unrecognized operator %q", tok)
	}
}

// parseLiteral handles "PUSH_LITERAL <KIND> <token...>". Strings are the
// remainder of the line re-joined (so they may contain spaces) and must be
// double-quoted; every other kind is a single token.
func parseLiteral(args []string) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, fmt.Errorf("PUSH_LITERAL: missing kind")
	}
	kind := strings.ToUpper(args[0])
	rest := args[1:]

	switch kind {
	case "BOOL":
		return value.Bool(arg(rest, 0) == "true"), nil
	case "INT":
		i, ok := new(big.Int).SetString(arg(rest, 0), 10)
		if !ok {
			return value.Value{}, fmt.Errorf("PUSH_LITERAL INT: bad literal %q", arg(rest, 0))
		}
		return value.Int(i), nil
	case "RAT":
		r, ok := new(big.Rat).SetString(arg(rest, 0))
		if !ok {
			return value.Value{}, fmt.Errorf("PUSH_LITERAL RAT: bad literal %q", arg(rest, 0))
		}
		return value.Rat(r), nil
	case "FLOAT":
		f, err := strconv.ParseFloat(arg(rest, 0), 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("PUSH_LITERAL FLOAT: %w", err)
		}
		return value.Float(f), nil
	case "STRING":
		s := strings.Join(rest, " ")
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return value.Value{}, fmt.Errorf("PUSH_LITERAL STRING: %w", err)
		}
		return value.String(unquoted), nil
	default:
		return value.Value{}, fmt.Errorf("PUSH_LITERAL: unrecognized kind %q", kind)
	}
}
