package mutation

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/outcome"
)

var flagColumnNames = []string{"found", "authorized", "is_unique", "missing_ref", "applied_id"}

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	e, err := New(gormDB, WithHasher(plainHasher{}), WithAuditor(audit.Discard), WithLogger(discardLogger()))
	require.NoError(t, err)
	return e, mock
}

func TestPostgresSingleStatement(t *testing.T) {
	tests := []struct {
		name string
		row  []driver.Value
		want outcome.Outcome
	}{
		{"applied", []driver.Value{true, true, true, nil, int64(12)}, outcome.Success(model.KindBaseCategory, 12)},
		{"missing book", []driver.Value{false, false, true, nil, nil}, outcome.NotFound(model.KindBaseCategory)},
		{"not a writer", []driver.Value{true, false, false, nil, nil}, outcome.Unauthorized(model.KindBaseCategory)},
		{"name taken", []driver.Value{true, true, false, nil, nil}, outcome.Conflict(model.KindBaseCategory)},
		{"lost race", []driver.Value{true, true, true, nil, nil}, outcome.Conflict(model.KindBaseCategory)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mock := newMockEngine(t)
			mock.ExpectQuery(`WITH scope AS`).
				WillReturnRows(sqlmock.NewRows(flagColumnNames).AddRow(tt.row...))

			o := e.AttemptCreate(context.Background(), identity.ForUser(1), NewBaseCategory{BookID: 1, Name: "Rent"})
			assert.Equal(t, tt.want, o)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresMissingReference(t *testing.T) {
	e, mock := newMockEngine(t)
	mock.ExpectQuery(`WITH scope AS`).
		WillReturnRows(sqlmock.NewRows(flagColumnNames).AddRow(true, true, true, "asset", nil))

	o := e.AttemptUpdate(context.Background(), identity.ForUser(1), 3, RecordPatch{AssetID: field.Set[int64](8)})
	assert.Equal(t, outcome.NotFound(model.KindAsset), o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJunctionRunsInTransaction(t *testing.T) {
	e, mock := newMockEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`WITH scope AS`).
		WillReturnRows(sqlmock.NewRows(flagColumnNames).AddRow(true, true, true, nil, int64(21)))
	mock.ExpectExec(`WITH applied AS \(SELECT CAST\(.+ AS BIGINT\) AS id\)\s+INSERT INTO record_connects`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	o := e.AttemptCreate(context.Background(), identity.ForUser(1), NewRecord{
		BookID: 1, SubCategoryID: 2, Amount: decimal.NewFromInt(5), ConnectIDs: []int64{4, 5},
	})
	assert.Equal(t, outcome.Success(model.KindRecord, 21), o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJunctionSkippedWhenRejected(t *testing.T) {
	e, mock := newMockEngine(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`WITH scope AS`).
		WillReturnRows(sqlmock.NewRows(flagColumnNames).AddRow(true, true, true, "connect", nil))
	mock.ExpectCommit()

	o := e.AttemptCreate(context.Background(), identity.ForUser(1), NewRecord{
		BookID: 1, SubCategoryID: 2, Amount: decimal.NewFromInt(5), ConnectIDs: []int64{99},
	})
	assert.Equal(t, outcome.NotFound(model.KindConnect), o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want outcome.Status
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, outcome.StatusConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, outcome.StatusNotFound},
		{"connection reset", errors.New("connection reset by peer"), outcome.StatusStorageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mock := newMockEngine(t)
			mock.ExpectQuery(`WITH scope AS`).WillReturnError(tt.err)

			o := e.AttemptDelete(context.Background(), model.KindSubCategory, identity.ForUser(1), 5)
			assert.Equal(t, tt.want, o.Status)
			assert.Equal(t, model.KindSubCategory, o.Kind)
			if tt.want == outcome.StatusStorageError {
				assert.NotEmpty(t, o.Correlation)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresBookCreateHasNoTransaction(t *testing.T) {
	e, mock := newMockEngine(t)
	mock.ExpectQuery(`WITH allowed AS .+after_0 AS`).
		WillReturnRows(sqlmock.NewRows(flagColumnNames).AddRow(true, true, true, nil, int64(3)))

	o := e.AttemptCreate(context.Background(), identity.ForUser(1), NewBook{Name: "Household"})
	assert.Equal(t, outcome.Success(model.KindBook, 3), o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLostRenameRaceIsConflict(t *testing.T) {
	e, mock := newMockEngine(t)
	mock.ExpectQuery(`WITH scope AS .+UPDATE base_categories SET name`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "base_categories_book_name_key"})

	o := e.AttemptUpdate(context.Background(), identity.ForUser(1), 5, BaseCategoryPatch{Name: field.Set("Rent")})
	assert.Equal(t, outcome.Conflict(model.KindBaseCategory), o)
	assert.Empty(t, o.Correlation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookRoleLocksOwners(t *testing.T) {
	tests := []struct {
		name string
		run  func(e *Engine) outcome.Outcome
	}{
		{"demote", func(e *Engine) outcome.Outcome {
			return e.AttemptUpdate(context.Background(), identity.ForUser(1), 7, BookRolePatch{Role: field.Set(model.RoleEditor)})
		}},
		{"revoke", func(e *Engine) outcome.Outcome {
			return e.AttemptDelete(context.Background(), model.KindBookRole, identity.ForUser(1), 7)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mock := newMockEngine(t)
			mock.ExpectBegin()
			mock.ExpectExec(`SELECT o.id FROM book_roles o WHERE o.book_id = \(SELECT br.book_id FROM book_roles br WHERE br.id = .+\) AND o.role = 'owner' ORDER BY o.id FOR UPDATE`).
				WillReturnResult(sqlmock.NewResult(0, 2))
			mock.ExpectQuery(`WITH scope AS .+dup AS`).
				WillReturnRows(sqlmock.NewRows(flagColumnNames).AddRow(true, true, false, nil, nil))
			mock.ExpectCommit()

			assert.Equal(t, outcome.Conflict(model.KindBookRole), tt.run(e))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
