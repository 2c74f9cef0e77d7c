package hostdb

import (
	"testing"

	"gsm/internal/callobj"
	"gsm/internal/value"
)

func TestScanToValueMapsSQLTypes(t *testing.T) {
	cases := []struct {
		name string
		raw  interface{}
		kind value.Kind
	}{
		{"nil", nil, value.KindString},
		{"bytes", []byte("hi"), value.KindString},
		{"string", "hi", value.KindString},
		{"int64", int64(7), value.KindInt},
		{"float64", float64(1.5), value.KindFloat},
		{"bool", true, value.KindBool},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := scanToValue(c.raw)
			if v.Kind != c.kind {
				t.Fatalf("scanToValue(%v).Kind = %v, want %v", c.raw, v.Kind, c.kind)
			}
		})
	}
}

func TestRowValueExposesColumnsAsSubVariables(t *testing.T) {
	v := rowValue([]string{"id", "name"}, []interface{}{int64(1), "alice"})
	if v.Kind != value.KindOpaque || v.Opaque.TypeName != typeRow {
		t.Fatalf("rowValue kind/type = %v/%s, want opaque/%s", v.Kind, v.Opaque.TypeName, typeRow)
	}
	got, ok := v.Opaque.Subs.GetSub("name")
	if !ok || got.Str != "alice" {
		t.Fatalf("GetSub(name) = %v, %v, want \"alice\", true", got, ok)
	}
}

func TestRowSetSubRejectsUnknownColumn(t *testing.T) {
	v := rowValue([]string{"id"}, []interface{}{int64(1)})
	if err := v.Opaque.Subs.SetSub("nope", value.IntFromInt64(2)); err == nil {
		t.Fatalf("SetSub on an unknown column should fail")
	}
}

func TestRowRemoveSubAlwaysFails(t *testing.T) {
	v := rowValue([]string{"id"}, []interface{}{int64(1)})
	if err := v.Opaque.Subs.RemoveSub("id"); err == nil {
		t.Fatalf("RemoveSub should always fail: rows are read-only")
	}
}

func TestAsConnRejectsWrongOpaqueType(t *testing.T) {
	notAConn := value.OpaqueVal("something-else", 42, nil)
	if _, e := asConn(notAConn); e == nil {
		t.Fatalf("asConn on the wrong opaque type should fail")
	}
}

func TestAsConnRejectsNonOpaque(t *testing.T) {
	if _, e := asConn(value.IntFromInt64(1)); e == nil {
		t.Fatalf("asConn on a non-opaque value should fail")
	}
}

func TestRegisterAddsAllFourFunctions(t *testing.T) {
	reg := callobj.NewRegistry()
	Register(reg)
	for _, name := range []string{"db_open", "db_query", "db_exec", "db_close"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Fatalf("Register did not add %q", name)
		}
	}
}

func TestDbOpenRejectsUnsupportedDriver(t *testing.T) {
	_, err := dbOpen([]value.Value{value.String("oracle"), value.String("dsn")})
	if err == nil {
		t.Fatalf("dbOpen with an unsupported driver should fail")
	}
}

// TestSqliteRoundTrip exercises db_open/db_exec/db_query/db_close against
// an in-memory sqlite3 database, the same driver family Register wires in.
func TestSqliteRoundTrip(t *testing.T) {
	conn, err := dbOpen([]value.Value{value.String("sqlite3"), value.String(":memory:")})
	if err != nil {
		t.Fatalf("dbOpen: %v", err)
	}
	defer dbClose([]value.Value{conn})

	if _, err := dbExec([]value.Value{conn, value.String("CREATE TABLE t (id INTEGER, name TEXT)")}); err != nil {
		t.Fatalf("dbExec CREATE: %v", err)
	}
	if _, err := dbExec([]value.Value{conn, value.String("INSERT INTO t VALUES (1, 'alice')")}); err != nil {
		t.Fatalf("dbExec INSERT: %v", err)
	}

	rows, err := dbQuery([]value.Value{conn, value.String("SELECT id, name FROM t")})
	if err != nil {
		t.Fatalf("dbQuery: %v", err)
	}
	if rows.List.Len() != 1 {
		t.Fatalf("rows.List.Len() = %d, want 1", rows.List.Len())
	}
	first, _ := rows.List.Get(1)
	name, ok := first.Opaque.Subs.GetSub("name")
	if !ok || name.Str != "alice" {
		t.Fatalf("row name column = %v, %v, want \"alice\", true", name, ok)
	}
}
