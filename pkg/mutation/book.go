package mutation

import (
	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/authz"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

const bookScope = "SELECT b.id, b.id AS book_id FROM books b WHERE b.id = @id"

// NewBook creates a book owned by the caller.
type NewBook struct {
	Name string `yaml:"name" json:"name"`
}

func (NewBook) Kind() model.Kind { return model.KindBook }

func (p NewBook) create(_ *Engine, who identity.Identity) (*statement, error) {
	st := newStatement(model.KindBook, audit.ActionCreate, who, 0)
	st.allowed = authz.ActiveCaller()
	st.args["name"] = p.Name
	st.write = write{sql: "INSERT INTO books (name) SELECT @name"}
	st.after = []followUp{{
		sql: "INSERT INTO book_roles (book_id, user_id, role) SELECT a.id, @caller, 'owner' FROM applied a",
	}}
	return st, nil
}

type BookPatch struct {
	Name field.Update[string] `yaml:"name" json:"name"`
}

func (BookPatch) Kind() model.Kind { return model.KindBook }

func (p BookPatch) IsEmpty() bool { return p.Name.IsUnchanged() }

func (p BookPatch) update(_ *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "name"}, p.Name); err != nil {
		return nil, err
	}

	st := newStatement(model.KindBook, audit.ActionUpdate, who, id)
	st.scope = bookScope
	st.requireWriter()
	st.setColumns("books", as)
	return st, nil
}

func deleteBook(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindBook, audit.ActionDelete, who, id)
	st.scope = bookScope
	st.requireOwner()
	st.deleteTarget("books")
	return st
}
