// Package hostdb registers SQL database access as host functions against a
// GSM function registry (§6 "host-registered functions"). A connection is
// an opaque-dbconn value; a query result row is a structured opaque-dbrow
// value whose sub-variable mapping (§3, §4.3) is column name -> Value, so
// that `row.col_name` resolves through the ordinary Resolve/AssignSub path
// instead of anything database-specific in the VM itself.
package hostdb

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"gsm/internal/callobj"
	"gsm/internal/errors"
	"gsm/internal/value"
)

const (
	typeConn = "dbconn"
	typeRow  = "dbrow"
)

// row implements value.SubMapper over a single query result row, keyed by
// column name. The result set was already materialised by Query, so
// SetSub replaces an existing column's value in memory only (nothing is
// written to the database), an unknown column is rejected, and RemoveSub
// always fails.
type row struct {
	cols   []string
	values map[string]value.Value
}

func (r *row) GetSub(name string) (value.Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *row) SetSub(name string, v value.Value) error {
	if _, ok := r.values[name]; !ok {
		return fmt.Errorf("no such column %q", name)
	}
	r.values[name] = v
	return nil
}

func (r *row) RemoveSub(name string) error {
	return fmt.Errorf("dbrow columns cannot be removed")
}

func rowValue(cols []string, raw []interface{}) value.Value {
	r := &row{cols: cols, values: make(map[string]value.Value, len(cols))}
	for i, col := range cols {
		r.values[col] = scanToValue(raw[i])
	}
	return value.OpaqueVal(typeRow, r, r)
}

// scanToValue converts a database/sql scan result into a GSM value,
// following the conservative driver-to-Go type mapping
// database/sql.Rows.Scan already performs for us.
func scanToValue(raw interface{}) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.String("")
	case []byte:
		return value.String(string(v))
	case string:
		return value.String(v)
	case int64:
		return value.IntFromInt64(v)
	case float64:
		return value.Float(v)
	case bool:
		return value.Bool(v)
	default:
		return value.String(fmt.Sprintf("%v", v))
	}
}

func connValue(conn *sql.DB) value.Value {
	return value.OpaqueVal(typeConn, conn, nil)
}

func asConn(v value.Value) (*sql.DB, *errors.GSMError) {
	if v.Kind != value.KindOpaque || v.Opaque == nil || v.Opaque.TypeName != typeConn {
		return nil, errors.New(errors.TypeMismatch, "expected a %s handle", typeConn)
	}
	conn, ok := v.Opaque.Handle.(*sql.DB)
	if !ok {
		return nil, errors.New(errors.TypeMismatch, "expected a %s handle", typeConn)
	}
	return conn, nil
}

// dbOpen registers db_open(driver, dsn) -> opaque-dbconn, matching the
// driver-name dispatch the teacher's DatabaseModule.Connect performs,
// minus the connection-string assembly: the caller already has a DSN in
// the shape each driver expects.
func dbOpen(params []value.Value) (value.Value, *errors.GSMError) {
	driver := params[0].Str
	dsn := params[1].Str
	switch strings.ToLower(driver) {
	case "mysql", "postgres", "sqlite3", "sqlserver":
	default:
		return value.Value{}, errors.New(errors.HandlerFailure, "unsupported driver %q", driver)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return value.Value{}, errors.New(errors.HandlerFailure, "db_open: %v", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return value.Value{}, errors.New(errors.HandlerFailure, "db_open: %v", err)
	}
	return connValue(conn), nil
}

// dbQuery registers db_query(conn, sql) -> list of opaque-dbrow.
func dbQuery(params []value.Value) (value.Value, *errors.GSMError) {
	conn, e := asConn(params[0])
	if e != nil {
		return value.Value{}, e
	}
	query := params[1].Str

	rows, err := conn.Query(query)
	if err != nil {
		return value.Value{}, errors.New(errors.HandlerFailure, "db_query: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Value{}, errors.New(errors.HandlerFailure, "db_query: %v", err)
	}

	out := value.NewList()
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return value.Value{}, errors.New(errors.HandlerFailure, "db_query: %v", err)
		}
		out.Append(rowValue(cols, raw))
	}
	return value.ListVal(out), nil
}

// dbExec registers db_exec(conn, sql) -> int (rows affected).
func dbExec(params []value.Value) (value.Value, *errors.GSMError) {
	conn, e := asConn(params[0])
	if e != nil {
		return value.Value{}, e
	}
	result, err := conn.Exec(params[1].Str)
	if err != nil {
		return value.Value{}, errors.New(errors.HandlerFailure, "db_exec: %v", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		n = 0
	}
	return value.IntFromInt64(n), nil
}

// dbClose registers db_close(conn) -> bool.
func dbClose(params []value.Value) (value.Value, *errors.GSMError) {
	conn, e := asConn(params[0])
	if e != nil {
		return value.Value{}, e
	}
	if err := conn.Close(); err != nil {
		return value.Value{}, errors.New(errors.HandlerFailure, "db_close: %v", err)
	}
	return value.Bool(true), nil
}

// Register adds the db_open/db_query/db_exec/db_close function
// descriptors to reg.
func Register(reg interface{ AddFunction(*callobj.FuncDescriptor) }) {
	reg.AddFunction(&callobj.FuncDescriptor{
		Name: "db_open",
		Overloads: []*callobj.Overload{{
			Params: []callobj.ParamSpec{
				{Name: "driver", Kind: value.KindString},
				{Name: "dsn", Kind: value.KindString},
			},
			Handler: dbOpen,
		}},
	})
	reg.AddFunction(&callobj.FuncDescriptor{
		Name: "db_query",
		Overloads: []*callobj.Overload{{
			Params: []callobj.ParamSpec{
				{Name: "conn", Kind: value.KindOpaque},
				{Name: "sql", Kind: value.KindString},
			},
			Handler: dbQuery,
		}},
	})
	reg.AddFunction(&callobj.FuncDescriptor{
		Name: "db_exec",
		Overloads: []*callobj.Overload{{
			Params: []callobj.ParamSpec{
				{Name: "conn", Kind: value.KindOpaque},
				{Name: "sql", Kind: value.KindString},
			},
			Handler: dbExec,
		}},
	})
	reg.AddFunction(&callobj.FuncDescriptor{
		Name: "db_close",
		Overloads: []*callobj.Overload{{
			Params: []callobj.ParamSpec{
				{Name: "conn", Kind: value.KindOpaque},
			},
			Handler: dbClose,
		}},
	})
}
