package mutation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/config"
	"github.com/ledgerbook/ledger-in-go/pkg/db"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/outcome"
)

// plainHasher stores passwords with a visible prefix so tests can assert on
// what reached the users table.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

// recordingAuditor keeps every event it is handed.
type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Log(_ context.Context, e audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) mutations() []audit.MutationEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []audit.MutationEvent
	for _, e := range a.events {
		if m, ok := e.(audit.MutationEvent); ok {
			out = append(out, m)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openSQLite returns a migrated pool on a fresh database file.
func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")

	gdb, err := db.Connect(db.Config{URL: path, Driver: config.DriverSQLite, MaxOpenConns: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, db.Migrate(sqlDB, config.DriverSQLite))
	return gdb
}

func newSQLiteEngine(t *testing.T, opts ...Option) (*Engine, *gorm.DB) {
	t.Helper()
	gdb := openSQLite(t)
	base := []Option{
		WithHasher(plainHasher{}),
		WithAuditor(audit.Discard),
		WithLogger(discardLogger()),
		WithStatementTimeout(10 * time.Second),
	}
	e, err := New(gdb, append(base, opts...)...)
	require.NoError(t, err)
	return e, gdb
}

// fixture is a book shared with one user per role, plus a registered user
// holding no role on it.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	engine *Engine
	db     *gorm.DB

	owner    identity.Identity
	editor   identity.Identity
	viewer   identity.Identity
	stranger identity.Identity

	book int64
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	e, gdb := newSQLiteEngine(t, opts...)
	f := &fixture{t: t, ctx: context.Background(), engine: e, db: gdb}

	f.owner = f.register("olivia")
	f.editor = f.register("eddie")
	f.viewer = f.register("vera")
	f.stranger = f.register("sam")

	f.book = f.mustCreate(f.owner, NewBook{Name: "Household"})
	f.mustCreate(f.owner, NewBookRole{BookID: f.book, UserID: f.editor.UserID, Role: model.RoleEditor})
	f.mustCreate(f.owner, NewBookRole{BookID: f.book, UserID: f.viewer.UserID, Role: model.RoleViewer})
	return f
}

func (f *fixture) register(name string) identity.Identity {
	f.t.Helper()
	id := f.mustCreate(identity.Anonymous(), NewUser{Name: name, Password: name + "-secret"})
	return identity.ForUser(id)
}

func (f *fixture) mustCreate(who identity.Identity, p Payload) int64 {
	f.t.Helper()
	o := f.engine.AttemptCreate(f.ctx, who, p)
	require.Equal(f.t, outcome.StatusSuccess, o.Status, "create %s: %s", p.Kind(), o)
	require.Positive(f.t, o.ID)
	return o.ID
}

func (f *fixture) create(who identity.Identity, p Payload) outcome.Outcome {
	return f.engine.AttemptCreate(f.ctx, who, p)
}

func (f *fixture) update(who identity.Identity, id int64, p Patch) outcome.Outcome {
	return f.engine.AttemptUpdate(f.ctx, who, id, p)
}

func (f *fixture) delete(who identity.Identity, kind model.Kind, id int64) outcome.Outcome {
	return f.engine.AttemptDelete(f.ctx, kind, who, id)
}

// lookup returns the id of the row in table with the given name.
func (f *fixture) lookup(table, name string) int64 {
	f.t.Helper()
	var id int64
	require.NoError(f.t, f.db.Raw("SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id).Error)
	require.Positive(f.t, id, "%s %q", table, name)
	return id
}

func (f *fixture) count(query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Raw(query, args...).Scan(&n).Error)
	return n
}

func (f *fixture) updatedAt(table string, id int64) time.Time {
	f.t.Helper()
	var ts time.Time
	require.NoError(f.t, f.db.Raw("SELECT updated_at FROM "+table+" WHERE id = ?", id).Scan(&ts).Error)
	return ts
}

// addAsset inserts an attachment row directly; assets have no mutation kind.
func (f *fixture) addAsset(book int64, key string) int64 {
	f.t.Helper()
	require.NoError(f.t, f.db.Exec("INSERT INTO assets (book_id, object_key) VALUES (?, ?)", book, key).Error)
	var id int64
	require.NoError(f.t, f.db.Raw("SELECT id FROM assets WHERE object_key = ?", key).Scan(&id).Error)
	return id
}

// category creates a base category with one sub-category in the fixture book.
func (f *fixture) category(base, sub string) (int64, int64) {
	f.t.Helper()
	baseID := f.mustCreate(f.owner, NewBaseCategory{BookID: f.book, Name: base})
	subID := f.mustCreate(f.owner, NewSubCategory{BaseCategoryID: baseID, Name: sub})
	return baseID, subID
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
