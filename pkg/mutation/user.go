package mutation

import (
	"fmt"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/authz"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

// Deactivated users are treated as missing.
const userScope = "SELECT u.id, NULL AS book_id FROM users u WHERE u.id = @id AND u.is_active"

// NewUser registers a user. Any caller, including an anonymous one, may
// register; the name must be free.
type NewUser struct {
	Name     string `yaml:"name" json:"name"`
	Password string `yaml:"password" json:"password"`
}

func (NewUser) Kind() model.Kind { return model.KindUser }

func (p NewUser) create(e *Engine, who identity.Identity) (*statement, error) {
	hash, err := e.hash(p.Password)
	if err != nil {
		return nil, err
	}

	st := newStatement(model.KindUser, audit.ActionCreate, who, 0)
	st.dup = "SELECT 1 FROM users u WHERE u.name = @name"
	st.args["name"] = p.Name
	st.args["password_hash"] = hash
	st.write = write{
		sql:        "INSERT INTO users (name, password_hash) SELECT @name, @password_hash",
		onConflict: true,
	}
	return st, nil
}

// UserPatch changes the caller's own name or password.
type UserPatch struct {
	Name     field.Update[string] `yaml:"name" json:"name"`
	Password field.Update[string] `yaml:"password" json:"password"`
}

func (UserPatch) Kind() model.Kind { return model.KindUser }

func (p UserPatch) IsEmpty() bool {
	return p.Name.IsUnchanged() && p.Password.IsUnchanged()
}

func (p UserPatch) update(e *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "name"}, p.Name); err != nil {
		return nil, err
	}

	var hashed field.Update[string]
	switch {
	case p.Password.IsClear():
		hashed = field.Clear[string]()
	case p.Password.IsSet():
		plain, _ := p.Password.Value()
		hash, err := e.hash(plain)
		if err != nil {
			return nil, err
		}
		hashed = field.Set(hash)
	}
	if err := field.Collect(&as, field.Column{Name: "password_hash"}, hashed); err != nil {
		return nil, err
	}

	st := newStatement(model.KindUser, audit.ActionUpdate, who, id)
	st.scope = userScope
	st.allowed = authz.CallerIsColumn("id")
	if p.Name.IsSet() {
		st.dup = "SELECT 1 FROM users o JOIN scope s ON o.id <> s.id WHERE o.name = @set_name"
	}
	st.setColumns("users", as)
	return st, nil
}

// deleteUser deactivates the caller's own account.
func deleteUser(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindUser, audit.ActionDelete, who, id)
	st.scope = userScope
	st.allowed = authz.CallerIsColumn("id")
	st.write = write{
		sql:   "UPDATE users SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP",
		where: "id = @id",
	}
	return st
}

func (e *Engine) hash(password string) (string, error) {
	if e.hasher == nil {
		return "", ErrNoHasher
	}
	hash, err := e.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
