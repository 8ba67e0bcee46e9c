package mutation

import (
	"strconv"
	"strings"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

// A statement is one mutation attempt before rendering. Every precondition
// is a SELECT body that becomes a CTE:
//
//	scope    the target row (update, delete) or parent row (create); columns id, book_id, ...
//	allowed  yields a row when the caller may act
//	dup      yields a row when the write would collide with an existing name or key
//	ref_*    each yields a row when a referenced entity exists and is reachable
//
// An empty body means the check does not apply and always passes. The write
// is gated on all of them and returns the id it touched.
type statement struct {
	kind   model.Kind
	action audit.Action
	target int64

	scope   string
	allowed string
	dup     string
	refs    []ref

	// lock runs first inside a transaction on PostgreSQL, for guards that
	// read rows other than the one written.
	lock string

	write write
	after []followUp
	args  map[string]interface{}
}

type ref struct {
	kind model.Kind
	body string
}

func (r ref) name() string {
	return "ref_" + r.kind.String()
}

// write is an INSERT ... SELECT, UPDATE ... SET or DELETE FROM up to (but not
// including) its WHERE clause.
type write struct {
	sql        string
	from       string
	where      string
	onConflict bool
}

// followUp is a data-modifying statement that reads the written id from an
// "applied" relation with a single id column. Junction writes run as their
// own statement inside the transaction instead of as a CTE.
type followUp struct {
	sql      string
	junction bool
}

type cte struct {
	name string
	body string
}

func (st *statement) checks() []cte {
	var ctes []cte
	if st.scope != "" {
		ctes = append(ctes, cte{"scope", st.scope})
	}
	if st.allowed != "" {
		ctes = append(ctes, cte{"allowed", st.allowed})
	}
	if st.dup != "" {
		ctes = append(ctes, cte{"dup", st.dup})
	}
	for _, r := range st.refs {
		ctes = append(ctes, cte{r.name(), r.body})
	}
	return ctes
}

func (st *statement) gate() string {
	var preds []string
	if st.scope != "" {
		preds = append(preds, "EXISTS (SELECT 1 FROM scope)")
	}
	if st.allowed != "" {
		preds = append(preds, "EXISTS (SELECT 1 FROM allowed)")
	}
	if st.dup != "" {
		preds = append(preds, "NOT EXISTS (SELECT 1 FROM dup)")
	}
	for _, r := range st.refs {
		preds = append(preds, "EXISTS (SELECT 1 FROM "+r.name()+")")
	}
	if len(preds) == 0 {
		return "TRUE"
	}
	return strings.Join(preds, " AND ")
}

func (st *statement) flagColumns(appliedID string) []string {
	cols := []string{
		exists(st.scope != "", "scope") + " AS found",
		exists(st.allowed != "", "allowed") + " AS authorized",
	}
	if st.dup != "" {
		cols = append(cols, "NOT EXISTS (SELECT 1 FROM dup) AS is_unique")
	} else {
		cols = append(cols, "TRUE AS is_unique")
	}
	if len(st.refs) == 0 {
		cols = append(cols, "NULL AS missing_ref")
	} else {
		var b strings.Builder
		b.WriteString("CASE")
		for _, r := range st.refs {
			b.WriteString(" WHEN NOT EXISTS (SELECT 1 FROM " + r.name() + ") THEN '" + r.kind.String() + "'")
		}
		b.WriteString(" END AS missing_ref")
		cols = append(cols, b.String())
	}
	return append(cols, appliedID+" AS applied_id")
}

func exists(present bool, name string) string {
	if !present {
		return "TRUE"
	}
	return "EXISTS (SELECT 1 FROM " + name + ")"
}

func (st *statement) writeLines(dialect dialect) []string {
	lines := []string{st.write.sql}
	if st.write.from != "" {
		lines = append(lines, "FROM "+st.write.from)
	}
	where := st.gate()
	if st.write.where != "" {
		where = st.write.where + " AND " + where
	}
	lines = append(lines, "WHERE "+where)
	if st.write.onConflict && dialect == dialectPostgres {
		lines = append(lines, "ON CONFLICT DO NOTHING")
	}
	return append(lines, "RETURNING id")
}

func writeWith(b *strings.Builder, ctes []cte) {
	for i, c := range ctes {
		if i == 0 {
			b.WriteString("WITH ")
		} else {
			b.WriteString(",\n")
		}
		b.WriteString(c.name + " AS (\n  " + strings.ReplaceAll(c.body, "\n", "\n  ") + "\n)")
	}
	if len(ctes) > 0 {
		b.WriteString("\n")
	}
}

func writeSelect(b *strings.Builder, cols []string) {
	b.WriteString("SELECT " + strings.Join(cols, ",\n  "))
}

// postgres renders the whole mutation as one statement. The write and the
// non-junction follow-ups are data-modifying CTEs; the final SELECT returns
// the flags row evaluated against the same snapshot.
func (st *statement) postgres() string {
	ctes := st.checks()
	ctes = append(ctes, cte{"applied", strings.Join(st.writeLines(dialectPostgres), "\n")})
	n := 0
	for _, f := range st.after {
		if f.junction {
			continue
		}
		ctes = append(ctes, cte{"after_" + strconv.Itoa(n), f.sql})
		n++
	}

	var b strings.Builder
	writeWith(&b, ctes)
	writeSelect(&b, st.flagColumns("(SELECT id FROM applied)"))
	return b.String()
}

// sqliteCheck renders the flags query run first inside an immediate
// transaction.
func (st *statement) sqliteCheck() string {
	var b strings.Builder
	writeWith(&b, st.checks())
	writeSelect(&b, st.flagColumns("NULL"))
	return b.String()
}

// sqliteWrite renders the gated write run after a passing check.
func (st *statement) sqliteWrite() string {
	var b strings.Builder
	writeWith(&b, st.checks())
	b.WriteString(strings.Join(st.writeLines(dialectSQLite), "\n"))
	return b.String()
}

// standalone renders a follow-up as its own statement reading the written id
// from @applied_id.
func (f followUp) standalone() string {
	return "WITH applied AS (SELECT CAST(@applied_id AS BIGINT) AS id)\n" + f.sql
}

// standaloneFollowUps returns the follow-ups that run as separate statements
// for the dialect.
func (st *statement) standaloneFollowUps(d dialect) []followUp {
	var out []followUp
	for _, f := range st.after {
		if d == dialectSQLite || f.junction {
			out = append(out, f)
		}
	}
	return out
}

// needsTransaction reports whether the PostgreSQL form cannot run as a
// single statement.
func (st *statement) needsTransaction() bool {
	return st.lock != "" || st.hasJunction()
}

func (st *statement) hasJunction() bool {
	for _, f := range st.after {
		if f.junction {
			return true
		}
	}
	return false
}
