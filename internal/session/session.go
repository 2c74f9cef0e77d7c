// Package session persists the scalar subset of a binding table to a
// small SQLite-backed key/value table, tagged with a session id. This is
// a host/embedder concern, explicitly outside the VM's own core (§1
// places "session loading" with the CLI front end, not the interpreter):
// a snapshot is data, never a program, so it never touches
// bytecode.Instruction at all.
package session

import (
	"database/sql"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gsm/internal/binding"
	"gsm/internal/errors"
	"gsm/internal/value"
)

const schema = `
CREATE TABLE IF NOT EXISTS gsm_session (
	session_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	rendered   TEXT NOT NULL,
	PRIMARY KEY (session_id, name)
)`

// Store wraps the SQLite-backed snapshot table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the session store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// NewSessionID mints a session tag the way the teacher tags ephemeral
// scan/connection ids, but with a real UUID instead of a timestamp string.
func NewSessionID() string { return uuid.NewString() }

// Save snapshots every scalar binding (bool, int, rat, float, string) in
// table under sessionID, overwriting any prior snapshot with that id.
// Non-scalar bindings (list, stream, ref, err, opaque) are skipped: they
// either can't round-trip through a single text column (list) or aren't
// meaningfully persistable (stream, opaque host handles).
func Save(s *Store, sessionID string, names []string, table *binding.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM gsm_session WHERE session_id = ?`, sessionID); err != nil {
		tx.Rollback()
		return err
	}
	for _, name := range names {
		v, ok := table.Lookup(name)
		if !ok || !isScalar(v) {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO gsm_session(session_id, name, kind, rendered) VALUES (?, ?, ?, ?)`,
			sessionID, name, v.Kind.String(), value.Render(v),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Load restores every scalar binding saved under sessionID into table.
func Load(s *Store, sessionID string, table *binding.Table) error {
	rows, err := s.db.Query(
		`SELECT name, kind, rendered FROM gsm_session WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, kind, rendered string
		if err := rows.Scan(&name, &kind, &rendered); err != nil {
			return err
		}
		v, perr := parseScalar(kind, rendered)
		if perr != nil {
			return perr
		}
		table.Define(name, v)
	}
	return rows.Err()
}

func isScalar(v value.Value) bool {
	switch v.Kind {
	case value.KindBool, value.KindInt, value.KindRat, value.KindFloat, value.KindString:
		return true
	default:
		return false
	}
}

// parseScalar reverses value.Render for the scalar kinds Save accepts.
// Render's formats are all machine-readable as well as human-readable
// (§6), so each kind uses an existing parser rather than a bespoke one:
// big.Int/big.Rat SetString for int and rat, fmt.Sscan for float, and
// strconv.Unquote for string.
func parseScalar(kind, rendered string) (value.Value, error) {
	switch kind {
	case "bool":
		return value.Bool(rendered == "true"), nil
	case "int":
		i, ok := new(big.Int).SetString(rendered, 10)
		if !ok {
			return value.Value{}, errors.New(errors.InternalInvariant, "session: bad int literal %q", rendered)
		}
		return value.Int(i), nil
	case "float":
		var f float64
		if _, err := fmt.Sscan(rendered, &f); err != nil {
			return value.Value{}, errors.New(errors.InternalInvariant, "session: bad float literal %q", rendered)
		}
		return value.Float(f), nil
	case "rat":
		r, ok := new(big.Rat).SetString(rendered)
		if !ok {
			return value.Value{}, errors.New(errors.InternalInvariant, "session: bad rat literal %q", rendered)
		}
		return value.Rat(r), nil
	case "string":
		s, err := strconv.Unquote(rendered)
		if err != nil {
			return value.Value{}, errors.New(errors.InternalInvariant, "session: bad string literal %q", rendered)
		}
		return value.String(s), nil
	default:
		return value.Value{}, errors.New(errors.InternalInvariant, "session: unsupported scalar kind %q", kind)
	}
}
