package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind  Kind
		name  string
		table string
	}{
		{KindBook, "book", "books"},
		{KindBaseCategory, "base_category", "base_categories"},
		{KindSubCategory, "sub_category", "sub_categories"},
		{KindRecord, "record", "records"},
		{KindUser, "user", "users"},
		{KindConnect, "connect", "connects"},
		{KindBookRole, "book_role", "book_roles"},
		{KindAsset, "asset", "assets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.table, tt.kind.Table())

			parsed, err := KindString(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, parsed)
		})
	}

	_, err := KindString("secret")
	assert.Error(t, err)
}

func TestRolesAreOrdered(t *testing.T) {
	assert.Less(t, int(RoleViewer), int(RoleEditor))
	assert.Less(t, int(RoleEditor), int(RoleOwner))
}

func TestRoleScan(t *testing.T) {
	var r Role
	require.NoError(t, r.Scan("editor"))
	assert.Equal(t, RoleEditor, r)

	require.NoError(t, r.Scan([]byte("owner")))
	assert.Equal(t, RoleOwner, r)

	v, err := RoleViewer.Value()
	require.NoError(t, err)
	assert.Equal(t, "viewer", v)

	assert.Error(t, r.Scan("admin"))
}
