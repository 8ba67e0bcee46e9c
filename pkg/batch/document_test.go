package batch

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
)

const household = `
as: 1
steps:
  - create: base_category
    with: {book_id: 1, name: Rent, color: red}
  - update: record
    id: 9
    set:
      memo: !clear
      amount: "12.50"
      connect_ids: [3, 4]
  - delete: book
    id: 4
  - create: book_role
    as: 2
    with: {book_id: 1, user_id: 3, role: editor}
  - update: book
    id: 1
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(household))
	require.NoError(t, err)

	assert.Equal(t, int64(1), doc.As)
	require.Len(t, doc.Steps, 5)

	create := doc.Steps[0]
	assert.Equal(t, audit.ActionCreate, create.Action())
	assert.Equal(t, model.KindBaseCategory, create.Kind())
	cat, ok := create.payload.(mutation.NewBaseCategory)
	require.True(t, ok)
	assert.Equal(t, "Rent", cat.Name)
	require.NotNil(t, cat.Color)
	assert.Equal(t, "red", *cat.Color)

	update := doc.Steps[1]
	assert.Equal(t, "update record 9", update.String())
	patch, ok := update.patch.(mutation.RecordPatch)
	require.True(t, ok)
	assert.True(t, patch.Memo.IsClear())
	amount, _ := patch.Amount.Value()
	assert.True(t, decimal.RequireFromString("12.5").Equal(amount))
	ids, _ := patch.ConnectIDs.Value()
	assert.Equal(t, []int64{3, 4}, ids)
	assert.True(t, patch.SubCategoryID.IsUnchanged())

	assert.Equal(t, "delete book 4", doc.Steps[2].String())

	share := doc.Steps[3]
	require.NotNil(t, share.As)
	assert.Equal(t, int64(2), *share.As)
	role, ok := share.payload.(mutation.NewBookRole)
	require.True(t, ok)
	assert.Equal(t, model.RoleEditor, role.Role)

	// an update without set is an empty patch
	assert.True(t, doc.Steps[4].patch.IsEmpty())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "steps: [unclosed"},
		{"no action", "steps:\n  - id: 1\n"},
		{"two actions", "steps:\n  - create: book\n    delete: book\n    id: 1\n"},
		{"unknown kind", "steps:\n  - create: ledger\n"},
		{"asset create", "steps:\n  - create: asset\n"},
		{"update without id", "steps:\n  - update: book\n    set: {name: x}\n"},
		{"delete without id", "steps:\n  - delete: book\n"},
		{"bad role", "steps:\n  - create: book_role\n    with: {book_id: 1, user_id: 2, role: admin}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Steps)
}
