// Command gsm is the CLI front end around the interpreter in internal/vm.
// It owns the host-level collaborators spec.md places outside the VM's
// core (§1): loading a program via internal/asmtext, registering host
// functions from internal/hostdb, opening internal/stream sinks, and
// saving/restoring internal/session snapshots.
package main

import (
	"fmt"
	"os"
	"strings"

	"gsm/internal/asmtext"
	"gsm/internal/hostdb"
	"gsm/internal/session"
	"gsm/internal/stream"
	"gsm/internal/value"
	"gsm/internal/vm"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		runCmd(args[1:])
	case "dump":
		dumpCmd(args[1:])
	case "--version", "-v", "version":
		fmt.Println("gsm", version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gsm run <program.gsmasm> [--session id] [--session-db path]")
	fmt.Fprintln(os.Stderr, "       gsm dump <program.gsmasm>")
	fmt.Fprintln(os.Stderr, "       gsm version")
}

func newMachine() *vm.GSM {
	g := vm.New(vm.Config{}, os.Stdout, os.Stderr)
	hostdb.Register(g)
	return g
}

func runCmd(args []string) {
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	path := args[0]
	sessionID, sessionDB := parseSessionFlags(args[1:])

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gsm:", err)
		os.Exit(1)
	}
	defer f.Close()

	program, err := asmtext.Assemble(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gsm: assemble:", err)
		os.Exit(1)
	}

	g := newMachine()

	for name, dest := range parseStreamFlags(args[1:]) {
		sink, err := openStreamSink(dest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gsm: stream %s: %v\n", name, err)
			os.Exit(1)
		}
		g.RefTable().Define(name, value.StreamVal(sink))
	}

	if sessionDB != "" && sessionID != "" {
		store, err := session.Open(sessionDB)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gsm: session:", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := session.Load(store, sessionID, g.RefTable()); err != nil {
			fmt.Fprintln(os.Stderr, "gsm: session load:", err)
		}
	}

	status := g.Execute(program)
	fmt.Fprintf(os.Stderr, "gsm: %s (max stack depth %d)\n", status, g.MaxDepth())

	if sessionDB != "" && sessionID != "" {
		store, err := session.Open(sessionDB)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gsm: session:", err)
		} else {
			defer store.Close()
			if err := session.Save(store, sessionID, g.RefTable().Names(), g.RefTable()); err != nil {
				fmt.Fprintln(os.Stderr, "gsm: session save:", err)
			}
		}
	}

	if status == vm.Fail {
		os.Exit(1)
	}
}

func dumpCmd(args []string) {
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "gsm:", err)
		os.Exit(1)
	}
	defer f.Close()

	program, err := asmtext.Assemble(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gsm: assemble:", err)
		os.Exit(1)
	}
	for i, instr := range program {
		fmt.Printf("%4d  %s\n", i, instr.Op)
	}
}

// parseStreamFlags collects "--stream name=dest" pairs so a program can
// reference a pre-opened sink by PUSH_REF name before any SUBSCRIPT/BIND
// instruction ever runs.
func parseStreamFlags(args []string) map[string]string {
	streams := make(map[string]string)
	for i := 0; i < len(args)-1; i++ {
		if args[i] != "--stream" {
			continue
		}
		spec := args[i+1]
		if eq := strings.IndexByte(spec, '='); eq >= 0 {
			streams[spec[:eq]] = spec[eq+1:]
		}
	}
	return streams
}

func parseSessionFlags(args []string) (sessionID, sessionDB string) {
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "--session":
			sessionID = args[i+1]
		case "--session-db":
			sessionDB = args[i+1]
		}
	}
	return
}

// openStreamSink is a thin wrapper kept here (rather than in
// internal/stream) so the CLI is the one place that decides where a
// stream destination string comes from (currently the --stream flag).
func openStreamSink(dest string) (interface {
	WriteString(string) error
	Close() error
}, error) {
	return stream.OpenByDestination(dest)
}
