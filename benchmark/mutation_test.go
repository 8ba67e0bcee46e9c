package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/config"
	"github.com/ledgerbook/ledger-in-go/pkg/db"
	"github.com/ledgerbook/ledger-in-go/pkg/field"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func setup(b *testing.B) (*mutation.Engine, identity.Identity, int64) {
	b.Helper()

	database, err := db.Connect(db.Config{
		Driver:       config.DriverSQLite,
		URL:          filepath.Join(b.TempDir(), "bench.db"),
		MaxOpenConns: 4,
	})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = db.Close(database) })

	sqlDB, err := database.DB()
	if err != nil {
		b.Fatal(err)
	}
	if err := db.Migrate(sqlDB, config.DriverSQLite); err != nil {
		b.Fatal(err)
	}

	engine, err := mutation.New(database,
		mutation.WithHasher(plainHasher{}),
		mutation.WithAuditor(audit.Discard),
		mutation.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	user := engine.AttemptCreate(ctx, identity.Anonymous(), mutation.NewUser{Name: "bench", Password: "bench-password"})
	if err := user.Err(); err != nil {
		b.Fatal(err)
	}
	who := identity.ForUser(user.ID)
	book := engine.AttemptCreate(ctx, who, mutation.NewBook{Name: "Bench"})
	if err := book.Err(); err != nil {
		b.Fatal(err)
	}
	return engine, who, book.ID
}

func BenchmarkAttempt(b *testing.B) {
	b.Run("create base_category", func(b *testing.B) {
		engine, who, bookID := setup(b)
		ctx := context.Background()

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			o := engine.AttemptCreate(ctx, who, mutation.NewBaseCategory{BookID: bookID, Name: fmt.Sprintf("category %d", i)})
			if !o.OK() {
				b.Fatal(o)
			}
		}
	})

	b.Run("create conflicting base_category", func(b *testing.B) {
		engine, who, bookID := setup(b)
		ctx := context.Background()
		engine.AttemptCreate(ctx, who, mutation.NewBaseCategory{BookID: bookID, Name: "Rent"})

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			engine.AttemptCreate(ctx, who, mutation.NewBaseCategory{BookID: bookID, Name: "Rent"})
		}
	})

	b.Run("update book", func(b *testing.B) {
		engine, who, bookID := setup(b)
		ctx := context.Background()

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			o := engine.AttemptUpdate(ctx, who, bookID, mutation.BookPatch{Name: field.Set(fmt.Sprintf("Bench %d", i))})
			if !o.OK() {
				b.Fatal(o)
			}
		}
	})

	b.Run("update empty patch", func(b *testing.B) {
		engine, who, bookID := setup(b)
		ctx := context.Background()

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			engine.AttemptUpdate(ctx, who, bookID, mutation.BookPatch{})
		}
	})

	b.Run("delete missing", func(b *testing.B) {
		engine, who, _ := setup(b)
		ctx := context.Background()

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			engine.AttemptDelete(ctx, model.KindBook, who, -32)
		}
	})
}
