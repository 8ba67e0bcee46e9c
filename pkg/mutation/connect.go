package mutation

import (
	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/authz"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

const connectScope = "SELECT c.id, NULL AS book_id, c.user_id AS owner_id FROM connects c WHERE c.id = @id"

// NewConnect creates a connect (a counterparty records can be tagged with).
// Names are unique across all users; only the creator may change it.
type NewConnect struct {
	Name string `yaml:"name" json:"name"`
}

func (NewConnect) Kind() model.Kind { return model.KindConnect }

func (p NewConnect) create(_ *Engine, who identity.Identity) (*statement, error) {
	st := newStatement(model.KindConnect, audit.ActionCreate, who, 0)
	st.allowed = authz.ActiveCaller()
	st.dup = "SELECT 1 FROM connects c WHERE c.name = @name"
	st.args["name"] = p.Name
	st.write = write{
		sql:        "INSERT INTO connects (name, user_id) SELECT @name, @caller",
		onConflict: true,
	}
	return st, nil
}

type ConnectPatch struct {
	Name field.Update[string] `yaml:"name" json:"name"`
}

func (ConnectPatch) Kind() model.Kind { return model.KindConnect }

func (p ConnectPatch) IsEmpty() bool { return p.Name.IsUnchanged() }

func (p ConnectPatch) update(_ *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "name"}, p.Name); err != nil {
		return nil, err
	}

	st := newStatement(model.KindConnect, audit.ActionUpdate, who, id)
	st.scope = connectScope
	st.allowed = authz.CallerIsColumn("owner_id")
	if p.Name.IsSet() {
		st.dup = "SELECT 1 FROM connects o JOIN scope s ON o.id <> s.id WHERE o.name = @set_name"
	}
	st.setColumns("connects", as)
	return st, nil
}

func deleteConnect(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindConnect, audit.ActionDelete, who, id)
	st.scope = connectScope
	st.allowed = authz.CallerIsColumn("owner_id")
	st.deleteTarget("connects")
	return st
}
