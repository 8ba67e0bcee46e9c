package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewStore(gormDB), mock
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role      model.Role
		ok        bool
		wantWrite bool
		wantOwner bool
	}{
		{model.RoleViewer, true, false, false},
		{model.RoleEditor, true, true, false},
		{model.RoleOwner, true, true, true},
		{model.RoleOwner, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.Equal(t, tt.wantWrite, WriteCapable(tt.role, tt.ok))
			assert.Equal(t, tt.wantOwner, OwnerCapable(tt.role, tt.ok))
		})
	}
}

func TestRoleLists(t *testing.T) {
	assert.Equal(t, []string{"editor", "owner"}, WriteRoles())
	assert.Equal(t, []string{"owner"}, OwnerRoles())
}

func TestResolve(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT br.role\s+FROM book_roles br`).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("editor"))

	role, ok, err := s.Resolve(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.RoleEditor, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNoRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT br.role`).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	_, ok, err := s.Resolve(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT br.role`).WillReturnError(errors.New("connection refused"))

	_, _, err := s.Resolve(context.Background(), 3, 7)
	assert.ErrorContains(t, err, "resolve role of user 3 on book 7")
}

func TestFragments(t *testing.T) {
	assert.Contains(t, RoleOnScopeBook("write_roles"), "br.role IN @write_roles")
	assert.Contains(t, ActiveCaller(), "u.id = @caller")
	assert.Contains(t, CallerIsColumn("owner_id"), "s.owner_id = @caller")
}
