package foreign

import (
	"errors"
	"strings"
	"testing"

	"ensue/internal/object"
	"ensue/internal/token"
)

const setup = `let db sql.open "sqlite3" ":memory:"
sql.exec db "create table people (id integer primary key, name text, score real, note text)"
sql.exec db "insert into people (name, score, note) values (?, ?, ?)" "ann" 1.5 null
let last sql.exec db "insert into people (name, score, note) values (?, ?, ?)" "bob" 2 "hi"
`

func lookup(t *testing.T, tbl object.Variant, keys ...string) object.Variant {
	t.Helper()
	cur := tbl
	for _, k := range keys {
		tt, ok := cur.(*object.Table)
		if !ok {
			t.Fatalf("expected a table at %q, got %s", k, cur.Represent())
		}
		val, found, err := tt.Get(k, token.Mark{})
		if err != nil || !found {
			t.Fatalf("missing key %q (err=%v)", k, err)
		}
		cur = val
	}
	return cur
}

func TestSQLQuery(t *testing.T) {
	c, _, _, err := run(t, setup+`let rows sql.query db "select id, name, score, note from people order by id"
sql.close db`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	global := c.Global()
	rows, _, _ := global.Get("rows", token.Mark{})
	last, _, _ := global.Get("last", token.Mark{})

	cases := []struct {
		name string
		got  object.Variant
		want object.Variant
	}{
		{"first id", lookup(t, rows, "0", "id"), object.Number{Value: 1}},
		{"first name", lookup(t, rows, "0", "name"), object.String{Value: "ann"}},
		{"first score", lookup(t, rows, "0", "score"), object.Number{Value: 1.5}},
		{"null column", lookup(t, rows, "0", "note"), object.NULL},
		{"second score", lookup(t, rows, "1", "score"), object.Number{Value: 2}},
		{"second note", lookup(t, rows, "1", "note"), object.String{Value: "hi"}},
		{"rows affected", lookup(t, last, "rowsAffected"), object.Number{Value: 1}},
		{"last insert id", lookup(t, last, "lastInsertId"), object.Number{Value: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !object.Equal(tc.got, tc.want) {
				t.Errorf("expected %s, got %s", tc.want.Represent(), tc.got.Represent())
			}
		})
	}

	if n, _ := rows.(*object.Table).Len(token.Mark{}); n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}
}

func TestSQLTransactions(t *testing.T) {
	src := setup + `sql.begin db
sql.exec db "insert into people (name) values (?)" "cy"
sql.rollback db
sql.begin db
sql.exec db "insert into people (name) values (?)" "di"
sql.commit db
let rows sql.query db "select count(*) as n from people"
let n get
    get rows 0
    str "n"
sql.close db
return n`
	_, val, _, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !object.Equal(val, object.Number{Value: 3}) {
		t.Errorf("expected 3 rows after rollback and commit, got %s", val.Represent())
	}
}

func TestSQLErrors(t *testing.T) {
	cases := []errorCase{
		{"unknown driver", `sql.open "nope" "x"`, "failed to open connection"},
		{"invalid handle", `sql.query 99 "select 1"`, "invalid connection handle 99"},
		{"closed handle", setup + "sql.close db\nsql.query db \"select 1\"", "invalid connection handle 1"},
		{"bad statement", setup + "sql.exec db \"insert into nowhere values (1)\"", "exec failed"},
		{"bad query", setup + "sql.query db \"select nothing from nowhere\"", "query failed"},
		{"table parameter", setup + "let t table \"a\" 1\nsql.exec db \"select ?\" t", "cannot be used as a query parameter"},
		{"commit without begin", setup + "sql.commit db", "no transaction in progress"},
		{"nested begin", setup + "sql.begin db\nsql.begin db", "transaction already in progress"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := run(t, tc.input)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expected message containing %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestSQLHandlesPerRuntime(t *testing.T) {
	if _, _, _, err := run(t, setup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, _, err := run(t, `sql.query 1 "select 1"`)
	if err == nil || !strings.Contains(err.Error(), "invalid connection handle 1") {
		t.Errorf("handles must not leak between runtimes, got %v", err)
	}
}

type partialResult struct{}

func (partialResult) LastInsertId() (int64, error) { return 0, errors.New("not supported by driver") }
func (partialResult) RowsAffected() (int64, error) { return 3, nil }

func TestResultTableUnsupportedFigure(t *testing.T) {
	tbl, err := resultTable(partialResult{}, token.Mark{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lookup(t, tbl, "rowsAffected"); !object.Equal(got, object.Number{Value: 3}) {
		t.Errorf("expected rowsAffected 3, got %s", got.Represent())
	}
	if got := lookup(t, tbl, "lastInsertId"); got != object.NULL {
		t.Errorf("expected lastInsertId null, got %s", got.Represent())
	}
}
