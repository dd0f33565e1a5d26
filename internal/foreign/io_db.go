package foreign

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
	"ensue/internal/token"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dbHandles owns the connections and open transactions of one runtime. Scripts see a handle
// as a number.
type dbHandles struct {
	mu     sync.Mutex
	nextID int64
	conns  map[int64]*sql.DB
	txs    map[int64]*sql.Tx
}

func newDBHandles() *dbHandles {
	return &dbHandles{
		conns: map[int64]*sql.DB{},
		txs:   map[int64]*sql.Tx{},
	}
}

func (h *dbHandles) functions() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"sql.open":     h.open,
		"sql.exec":     h.exec,
		"sql.query":    h.query,
		"sql.close":    h.close,
		"sql.begin":    h.begin,
		"sql.commit":   h.commit,
		"sql.rollback": h.rollback,
	}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

// open connects with `sql.open DRIVER DSN`; DRIVER is sqlite3, mysql or postgres.
func (h *dbHandles) open(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 3); err != nil {
		return object.Signal{}, err
	}
	driver, err := ctx.ResolveString(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	dsn, err := ctx.ResolveString(cmd[2])
	if err != nil {
		return object.Signal{}, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "failed to open connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "failed to ping database: %v", err)
	}
	// a :memory: sqlite database lives only as long as its one connection
	db.SetMaxOpenConns(1)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.conns[id] = db
	h.mu.Unlock()

	slog.Debug("opened database", slog.String("driver", driver), slog.Int64("handle", id))
	return object.Complete(object.Number{Value: float64(id)}), nil
}

func (h *dbHandles) exec(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	target, query, params, err := h.statement(ctx, cmd)
	if err != nil {
		return object.Signal{}, err
	}
	result, err := target.Exec(query, params...)
	if err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "exec failed: %v", err)
	}

	t, err := resultTable(result, cmd[0].Mark)
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(t), nil
}

// resultTable reports rowsAffected and lastInsertId. A figure the driver cannot supply, such
// as lastInsertId on postgres, is null.
func resultTable(result sql.Result, mark token.Mark) (*object.Table, error) {
	t := object.NewTable()
	figures := []struct {
		key string
		get func() (int64, error)
	}{
		{"rowsAffected", result.RowsAffected},
		{"lastInsertId", result.LastInsertId},
	}
	for _, f := range figures {
		var val object.Variant = object.NULL
		if n, err := f.get(); err == nil {
			val = object.Number{Value: float64(n)}
		} else {
			slog.Debug("driver result unavailable", slog.String("key", f.key), slog.Any("error", err))
		}
		if _, _, err := t.Insert(f.key, val, mark); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (h *dbHandles) query(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	target, query, params, err := h.statement(ctx, cmd)
	if err != nil {
		return object.Signal{}, err
	}
	rows, err := target.Query(query, params...)
	if err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "query failed: %v", err)
	}
	defer rows.Close()

	t, err := renderRows(rows, cmd[0].Mark)
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(t), nil
}

// statement resolves `HANDLE QUERY ARGS...`. Inside a transaction the statement runs on it.
func (h *dbHandles) statement(ctx object.Context, cmd ast.Command) (execer, string, []any, error) {
	if err := expectArgs(cmd, 3); err != nil {
		return nil, "", nil, err
	}
	id, err := handleArg(ctx, cmd[1])
	if err != nil {
		return nil, "", nil, err
	}
	query, err := ctx.ResolveString(cmd[2])
	if err != nil {
		return nil, "", nil, err
	}
	params := make([]any, 0, len(cmd)-3)
	for _, atom := range cmd[3:] {
		val, err := ctx.ResolveVariant(atom)
		if err != nil {
			return nil, "", nil, err
		}
		p, err := driverValue(val, atom.Mark)
		if err != nil {
			return nil, "", nil, err
		}
		params = append(params, p)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if tx, ok := h.txs[id]; ok {
		return tx, query, params, nil
	}
	db, ok := h.conns[id]
	if !ok {
		return nil, "", nil, backtrace.Newf(cmd[1].Mark, "invalid connection handle %d", id)
	}
	return db, query, params, nil
}

func (h *dbHandles) close(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	id, err := handleArg(ctx, cmd[1])
	if err != nil {
		return object.Signal{}, err
	}

	h.mu.Lock()
	db, ok := h.conns[id]
	tx, inTx := h.txs[id]
	delete(h.conns, id)
	delete(h.txs, id)
	h.mu.Unlock()

	if !ok {
		return object.Signal{}, backtrace.Newf(cmd[1].Mark, "invalid connection handle %d", id)
	}
	if inTx {
		_ = tx.Rollback()
	}
	if err := db.Close(); err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "failed to close connection: %v", err)
	}
	slog.Debug("closed database", slog.Int64("handle", id))
	return object.Complete(object.NULL), nil
}

func (h *dbHandles) begin(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	id, err := handleArg(ctx, cmd[1])
	if err != nil {
		return object.Signal{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	db, ok := h.conns[id]
	if !ok {
		return object.Signal{}, backtrace.Newf(cmd[1].Mark, "invalid connection handle %d", id)
	}
	if _, ok := h.txs[id]; ok {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "transaction already in progress")
	}
	tx, err := db.Begin()
	if err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "failed to begin transaction: %v", err)
	}
	h.txs[id] = tx
	return object.Complete(object.NULL), nil
}

func (h *dbHandles) commit(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	return h.finish(ctx, cmd, "commit", (*sql.Tx).Commit)
}

func (h *dbHandles) rollback(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	return h.finish(ctx, cmd, "rollback", (*sql.Tx).Rollback)
}

func (h *dbHandles) finish(ctx object.Context, cmd ast.Command, verb string, end func(*sql.Tx) error) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	id, err := handleArg(ctx, cmd[1])
	if err != nil {
		return object.Signal{}, err
	}

	h.mu.Lock()
	tx, ok := h.txs[id]
	delete(h.txs, id)
	h.mu.Unlock()

	if !ok {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "no transaction in progress")
	}
	if err := end(tx); err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "failed to %s transaction: %v", verb, err)
	}
	return object.Complete(object.NULL), nil
}

func handleArg(ctx object.Context, atom ast.Atom) (int64, error) {
	n, err := ctx.ResolveNumber(atom)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// driverValue maps a script value to a statement parameter. Integral numbers are passed as
// integers so they bind to integer columns.
func driverValue(val object.Variant, mark token.Mark) (any, error) {
	switch v := val.(type) {
	case object.Null:
		return nil, nil
	case object.Bool:
		return v.Value, nil
	case object.String:
		return v.Value, nil
	case object.Number:
		if v.Value == math.Trunc(v.Value) && math.Abs(v.Value) < 1<<53 {
			return int64(v.Value), nil
		}
		return v.Value, nil
	}
	return nil, backtrace.New(backtrace.Type, mark, "`%s` (%s) cannot be used as a query parameter", val.Represent(), val.Type())
}

// renderRows collects every row into a table keyed by row index, each row a table keyed by
// column name.
func renderRows(rows *sql.Rows, mark token.Mark) (*object.Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, backtrace.Newf(mark, "failed to read columns: %v", err)
	}

	result := object.NewTable()
	for i := 0; rows.Next(); i++ {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for j := range values {
			pointers[j] = &values[j]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, backtrace.Newf(mark, "failed to scan row: %v", err)
		}

		row := object.NewTable()
		for j, col := range columns {
			if _, _, err := row.Insert(col, mapValue(values[j]), mark); err != nil {
				return nil, err
			}
		}
		if _, _, err := result.Insert(strconv.Itoa(i), row, mark); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, backtrace.Newf(mark, "failed to read rows: %v", err)
	}
	return result, nil
}

func mapValue(val any) object.Variant {
	switch v := val.(type) {
	case nil:
		return object.NULL
	case int64:
		return object.Number{Value: float64(v)}
	case float64:
		return object.Number{Value: v}
	case []byte:
		return object.String{Value: string(v)}
	case string:
		return object.String{Value: v}
	case bool:
		return object.NativeBool(v)
	case time.Time:
		return object.String{Value: v.Format(time.RFC3339)}
	default:
		return object.String{Value: fmt.Sprintf("%v", v)}
	}
}
