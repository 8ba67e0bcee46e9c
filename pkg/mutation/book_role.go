package mutation

import (
	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

const (
	bookRoleScope = "SELECT br.id, br.book_id, br.role FROM book_roles br WHERE br.id = @id"

	// lastOwner yields a row when the scoped assignment is the book's only owner.
	lastOwner = "SELECT 1 FROM scope s WHERE s.role = 'owner' AND NOT EXISTS " +
		"(SELECT 1 FROM book_roles o WHERE o.book_id = s.book_id AND o.role = 'owner' AND o.id <> s.id)"

	// lockOwners locks the owner rows of the assignment's book, so owner
	// changes on one book run one at a time.
	lockOwners = "SELECT o.id FROM book_roles o WHERE o.book_id = " +
		"(SELECT br.book_id FROM book_roles br WHERE br.id = @id) AND o.role = 'owner' ORDER BY o.id FOR UPDATE"
)

// NewBookRole shares a book with another active user. Only owners share.
type NewBookRole struct {
	BookID int64      `yaml:"book_id" json:"book_id"`
	UserID int64      `yaml:"user_id" json:"user_id"`
	Role   model.Role `yaml:"role" json:"role"`
}

func (NewBookRole) Kind() model.Kind { return model.KindBookRole }

func (p NewBookRole) create(_ *Engine, who identity.Identity) (*statement, error) {
	st := newStatement(model.KindBookRole, audit.ActionCreate, who, 0)
	st.scope = "SELECT b.id, b.id AS book_id FROM books b WHERE b.id = @book_id"
	st.requireOwner()
	st.dup = "SELECT 1 FROM book_roles br JOIN scope s ON br.book_id = s.book_id WHERE br.user_id = @user_id"
	st.addRef(model.KindUser, "SELECT 1 FROM users u WHERE u.id = @user_id AND u.is_active")
	st.args["book_id"] = p.BookID
	st.args["user_id"] = p.UserID
	st.args["role"] = p.Role.String()
	st.write = write{
		sql:        "INSERT INTO book_roles (book_id, user_id, role) SELECT s.book_id, @user_id, @role",
		from:       "scope s",
		onConflict: true,
	}
	return st, nil
}

// BookRolePatch changes the role of an assignment. Demoting the last owner
// of a book is a Conflict.
type BookRolePatch struct {
	Role field.Update[model.Role] `yaml:"role" json:"role"`
}

func (BookRolePatch) Kind() model.Kind { return model.KindBookRole }

func (p BookRolePatch) IsEmpty() bool { return p.Role.IsUnchanged() }

func (p BookRolePatch) update(_ *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "role"}, p.Role); err != nil {
		return nil, err
	}

	st := newStatement(model.KindBookRole, audit.ActionUpdate, who, id)
	st.scope = bookRoleScope
	st.requireOwner()
	if role, ok := p.Role.Value(); ok && role != model.RoleOwner {
		st.dup = lastOwner
		st.lock = lockOwners
	}
	st.setColumns("book_roles", as)
	return st, nil
}

// deleteBookRole revokes an assignment. The last owner cannot be removed.
func deleteBookRole(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindBookRole, audit.ActionDelete, who, id)
	st.scope = bookRoleScope
	st.requireOwner()
	st.dup = lastOwner
	st.lock = lockOwners
	st.deleteTarget("book_roles")
	return st
}
