package mutation

import (
	"fmt"
	"strings"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/authz"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

func newStatement(kind model.Kind, action audit.Action, who identity.Identity, target int64) *statement {
	return &statement{
		kind:   kind,
		action: action,
		target: target,
		args: map[string]interface{}{
			"caller": who.UserID,
			"id":     target,
		},
	}
}

func (st *statement) requireWriter() {
	st.allowed = authz.RoleOnScopeBook("roles")
	st.args["roles"] = authz.WriteRoles()
}

func (st *statement) requireOwner() {
	st.allowed = authz.RoleOnScopeBook("roles")
	st.args["roles"] = authz.OwnerRoles()
}

func (st *statement) addRef(kind model.Kind, body string) {
	st.refs = append(st.refs, ref{kind: kind, body: body})
}

// setColumns turns assignments into an UPDATE of the target row that also
// touches updated_at. Values are bound as @set_<column>.
func (st *statement) setColumns(table string, as field.Assignments) {
	sets := make([]string, 0, len(as)+1)
	for _, a := range as {
		sets = append(sets, a.Column+" = @set_"+a.Column)
		st.args["set_"+a.Column] = a.Value
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	st.write = write{
		sql:   "UPDATE " + table + " SET " + strings.Join(sets, ", "),
		where: "id = @id",
	}
}

func (st *statement) deleteTarget(table string) {
	st.write = write{sql: "DELETE FROM " + table, where: "id = @id"}
}

func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// deleteStatement dispatches a delete to its kind.
func deleteStatement(kind model.Kind, who identity.Identity, id int64) (*statement, error) {
	switch kind {
	case model.KindBook:
		return deleteBook(who, id), nil
	case model.KindBaseCategory:
		return deleteBaseCategory(who, id), nil
	case model.KindSubCategory:
		return deleteSubCategory(who, id), nil
	case model.KindRecord:
		return deleteRecord(who, id), nil
	case model.KindUser:
		return deleteUser(who, id), nil
	case model.KindConnect:
		return deleteConnect(who, id), nil
	case model.KindBookRole:
		return deleteBookRole(who, id), nil
	default:
		return nil, fmt.Errorf("delete: unknown kind %s", kind)
	}
}
