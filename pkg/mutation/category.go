package mutation

import (
	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

const (
	baseCategoryScope = "SELECT c.id, c.book_id FROM base_categories c WHERE c.id = @id"
	subCategoryScope  = "SELECT sc.id, c.book_id, sc.base_category_id FROM sub_categories sc " +
		"JOIN base_categories c ON c.id = sc.base_category_id WHERE sc.id = @id"
)

// NewBaseCategory creates a category in a book. The name must be free among
// the book's categories and the global ones.
type NewBaseCategory struct {
	BookID int64   `yaml:"book_id" json:"book_id"`
	Name   string  `yaml:"name" json:"name"`
	Color  *string `yaml:"color" json:"color"`
}

func (NewBaseCategory) Kind() model.Kind { return model.KindBaseCategory }

func (p NewBaseCategory) create(_ *Engine, who identity.Identity) (*statement, error) {
	st := newStatement(model.KindBaseCategory, audit.ActionCreate, who, 0)
	st.scope = "SELECT b.id, b.id AS book_id FROM books b WHERE b.id = @book_id"
	st.requireWriter()
	st.dup = "SELECT 1 FROM base_categories c JOIN scope s ON c.book_id = s.book_id OR c.book_id IS NULL " +
		"WHERE c.name = @name"
	st.args["book_id"] = p.BookID
	st.args["name"] = p.Name
	st.args["color"] = nullable(p.Color)
	st.write = write{
		sql:        "INSERT INTO base_categories (book_id, name, color) SELECT s.book_id, @name, @color",
		from:       "scope s",
		onConflict: true,
	}
	return st, nil
}

type BaseCategoryPatch struct {
	Name  field.Update[string] `yaml:"name" json:"name"`
	Color field.Update[string] `yaml:"color" json:"color"`
}

func (BaseCategoryPatch) Kind() model.Kind { return model.KindBaseCategory }

func (p BaseCategoryPatch) IsEmpty() bool {
	return p.Name.IsUnchanged() && p.Color.IsUnchanged()
}

func (p BaseCategoryPatch) update(_ *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "name"}, p.Name); err != nil {
		return nil, err
	}
	if err := field.Collect(&as, field.Column{Name: "color", Nullable: true}, p.Color); err != nil {
		return nil, err
	}

	st := newStatement(model.KindBaseCategory, audit.ActionUpdate, who, id)
	st.scope = baseCategoryScope
	st.requireWriter()
	if p.Name.IsSet() {
		st.dup = "SELECT 1 FROM base_categories c JOIN scope s ON c.id <> s.id " +
			"AND (c.book_id = s.book_id OR c.book_id IS NULL) WHERE c.name = @set_name"
	}
	st.setColumns("base_categories", as)
	return st, nil
}

func deleteBaseCategory(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindBaseCategory, audit.ActionDelete, who, id)
	st.scope = baseCategoryScope
	st.requireOwner()
	st.deleteTarget("base_categories")
	return st
}

// NewSubCategory creates a sub-category under a book's base category. A
// global base category has no book, so no caller may extend it.
type NewSubCategory struct {
	BaseCategoryID int64  `yaml:"base_category_id" json:"base_category_id"`
	Name           string `yaml:"name" json:"name"`
}

func (NewSubCategory) Kind() model.Kind { return model.KindSubCategory }

func (p NewSubCategory) create(_ *Engine, who identity.Identity) (*statement, error) {
	st := newStatement(model.KindSubCategory, audit.ActionCreate, who, 0)
	st.scope = "SELECT c.id, c.book_id FROM base_categories c WHERE c.id = @base_category_id"
	st.requireWriter()
	st.dup = "SELECT 1 FROM sub_categories sc JOIN scope s ON sc.base_category_id = s.id WHERE sc.name = @name"
	st.args["base_category_id"] = p.BaseCategoryID
	st.args["name"] = p.Name
	st.write = write{
		sql:        "INSERT INTO sub_categories (base_category_id, name) SELECT s.id, @name",
		from:       "scope s",
		onConflict: true,
	}
	return st, nil
}

type SubCategoryPatch struct {
	Name field.Update[string] `yaml:"name" json:"name"`
}

func (SubCategoryPatch) Kind() model.Kind { return model.KindSubCategory }

func (p SubCategoryPatch) IsEmpty() bool { return p.Name.IsUnchanged() }

func (p SubCategoryPatch) update(_ *Engine, who identity.Identity, id int64) (*statement, error) {
	var as field.Assignments
	if err := field.Collect(&as, field.Column{Name: "name"}, p.Name); err != nil {
		return nil, err
	}

	st := newStatement(model.KindSubCategory, audit.ActionUpdate, who, id)
	st.scope = subCategoryScope
	st.requireWriter()
	if p.Name.IsSet() {
		st.dup = "SELECT 1 FROM sub_categories o JOIN scope s ON o.base_category_id = s.base_category_id " +
			"AND o.id <> s.id WHERE o.name = @set_name"
	}
	st.setColumns("sub_categories", as)
	return st, nil
}

func deleteSubCategory(who identity.Identity, id int64) *statement {
	st := newStatement(model.KindSubCategory, audit.ActionDelete, who, id)
	st.scope = subCategoryScope
	st.requireOwner()
	st.deleteTarget("sub_categories")
	return st
}
