package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/outcome"
)

// ErrNoHasher is returned when a password must be stored but the engine was
// built without a Hasher.
var ErrNoHasher = errors.New("no password hasher configured")

// Hasher turns a plain password into the stored hash.
type Hasher interface {
	Hash(password string) (string, error)
}

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func dialectOf(db *gorm.DB) (dialect, error) {
	switch name := db.Dialector.Name(); name {
	case "postgres":
		return dialectPostgres, nil
	case "sqlite":
		return dialectSQLite, nil
	default:
		return 0, fmt.Errorf("unsupported dialect %q", name)
	}
}

// Engine runs authorization-gated mutations against the ledger store. It is
// safe for concurrent use and holds no state besides its configuration.
type Engine struct {
	db      *gorm.DB
	dialect dialect
	hasher  Hasher
	auditor audit.Auditor
	log     *slog.Logger
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithHasher sets the password hasher used by user creates and updates.
func WithHasher(h Hasher) Option {
	return func(e *Engine) { e.hasher = h }
}

// WithAuditor sets where mutation audit events go. Defaults to audit.Default().
func WithAuditor(a audit.Auditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// WithLogger sets the process logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithStatementTimeout bounds every attempt. Zero leaves only the caller's
// context deadline.
func WithStatementTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New creates an Engine on an open connection pool.
func New(db *gorm.DB, opts ...Option) (*Engine, error) {
	d, err := dialectOf(db)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		db:      db,
		dialect: d,
		auditor: audit.Default(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Payload is the full set of fields for a create.
type Payload interface {
	Kind() model.Kind
	create(e *Engine, who identity.Identity) (*statement, error)
}

// Patch is a sparse set of field updates.
type Patch interface {
	Kind() model.Kind
	// IsEmpty reports whether every field is Unchanged.
	IsEmpty() bool
	update(e *Engine, who identity.Identity, id int64) (*statement, error)
}

// AttemptCreate inserts a new entity if its parent exists, the caller may
// write to it, the name is free in its scope and every reference resolves.
func (e *Engine) AttemptCreate(ctx context.Context, who identity.Identity, p Payload) outcome.Outcome {
	st, err := p.create(e, who)
	if err != nil {
		return e.finish(ctx, who, audit.ActionCreate, p.Kind(), 0, e.unexpected(ctx, p.Kind(), 0, err))
	}
	return e.finish(ctx, who, audit.ActionCreate, p.Kind(), 0, e.execute(ctx, st))
}

// AttemptUpdate writes exactly the Set and Clear fields of the patch. An
// empty patch returns NoFieldsProvided without touching the store.
func (e *Engine) AttemptUpdate(ctx context.Context, who identity.Identity, id int64, p Patch) outcome.Outcome {
	if p.IsEmpty() {
		return e.finish(ctx, who, audit.ActionUpdate, p.Kind(), id, outcome.NoFieldsProvided(p.Kind()))
	}
	st, err := p.update(e, who, id)
	if err != nil {
		return e.finish(ctx, who, audit.ActionUpdate, p.Kind(), id, e.unexpected(ctx, p.Kind(), id, err))
	}
	return e.finish(ctx, who, audit.ActionUpdate, p.Kind(), id, e.execute(ctx, st))
}

// AttemptDelete removes an entity (users are deactivated instead).
func (e *Engine) AttemptDelete(ctx context.Context, kind model.Kind, who identity.Identity, id int64) outcome.Outcome {
	st, err := deleteStatement(kind, who, id)
	if err != nil {
		return e.finish(ctx, who, audit.ActionDelete, kind, id, e.unexpected(ctx, kind, id, err))
	}
	return e.finish(ctx, who, audit.ActionDelete, kind, id, e.execute(ctx, st))
}

func (e *Engine) execute(ctx context.Context, st *statement) outcome.Outcome {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var (
		flags outcome.Flags
		err   error
	)
	switch e.dialect {
	case dialectPostgres:
		flags, err = e.runPostgres(ctx, st)
	default:
		flags, err = e.runSQLite(ctx, st)
	}
	if err != nil {
		return e.storageFailure(ctx, st, err)
	}
	return outcome.Classify(st.kind, flags)
}

func (e *Engine) runPostgres(ctx context.Context, st *statement) (outcome.Flags, error) {
	db := e.db.WithContext(ctx)
	if !st.needsTransaction() {
		return queryFlags(db, st.postgres(), st.args)
	}

	var flags outcome.Flags
	err := db.Transaction(func(tx *gorm.DB) error {
		if st.lock != "" {
			if err := tx.Exec(st.lock, st.args).Error; err != nil {
				return err
			}
		}
		var err error
		flags, err = queryFlags(tx, st.postgres(), st.args)
		if err != nil || !flags.Applied {
			return err
		}
		return runFollowUps(tx, st.standaloneFollowUps(dialectPostgres), st.args, flags.ID)
	})
	return flags, err
}

// runSQLite runs the check and the write in one BEGIN IMMEDIATE transaction
// (the pool's DSN sets _txlock=immediate), so the write lock is held from the
// flags read until commit.
func (e *Engine) runSQLite(ctx context.Context, st *statement) (outcome.Flags, error) {
	var flags outcome.Flags
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		flags, err = queryFlags(tx, st.sqliteCheck(), st.args)
		if err != nil || !checksPassed(flags) {
			return err
		}

		var row appliedRow
		if err := tx.Raw(st.sqliteWrite(), st.args).Scan(&row).Error; err != nil {
			return err
		}
		if row.ID == 0 {
			return nil
		}
		flags.ID, flags.Applied = row.ID, true
		return runFollowUps(tx, st.standaloneFollowUps(dialectSQLite), st.args, row.ID)
	})
	return flags, err
}

type flagsRow struct {
	Found      bool    `gorm:"column:found"`
	Authorized bool    `gorm:"column:authorized"`
	IsUnique   bool    `gorm:"column:is_unique"`
	MissingRef *string `gorm:"column:missing_ref"`
	AppliedID  *int64  `gorm:"column:applied_id"`
}

type appliedRow struct {
	ID int64 `gorm:"column:id"`
}

func queryFlags(db *gorm.DB, sql string, args map[string]interface{}) (outcome.Flags, error) {
	var row flagsRow
	if err := db.Raw(sql, args).Scan(&row).Error; err != nil {
		return outcome.Flags{}, err
	}

	flags := outcome.Flags{
		Found:      row.Found,
		Authorized: row.Authorized,
		Unique:     row.IsUnique,
		Reachable:  row.MissingRef == nil,
	}
	if row.MissingRef != nil {
		kind, err := model.KindString(*row.MissingRef)
		if err != nil {
			return flags, fmt.Errorf("flags row: %w", err)
		}
		flags.MissingRef = kind
	}
	if row.AppliedID != nil {
		flags.ID, flags.Applied = *row.AppliedID, true
	}
	return flags, nil
}

func checksPassed(f outcome.Flags) bool {
	return f.Found && f.Authorized && f.Unique && f.Reachable
}

func runFollowUps(tx *gorm.DB, after []followUp, args map[string]interface{}, id int64) error {
	if len(after) == 0 {
		return nil
	}
	bound := make(map[string]interface{}, len(args)+1)
	for k, v := range args {
		bound[k] = v
	}
	bound["applied_id"] = id

	for _, f := range after {
		if err := tx.Exec(f.standalone(), bound).Error; err != nil {
			return err
		}
	}
	return nil
}

// storageFailure classifies an error from the store. Row queries bypass
// gorm's TranslateError, so the dialect's translator is applied here.
func (e *Engine) storageFailure(ctx context.Context, st *statement, err error) outcome.Outcome {
	if tr, ok := e.db.Dialector.(gorm.ErrorTranslator); ok {
		err = tr.Translate(err)
	}
	if o, ok := outcome.Translate(st.kind, err); ok {
		e.log.DebugContext(ctx, "mutation rejected by constraint",
			"kind", st.kind.String(), "id", st.target, "action", string(st.action), "status", o.Status.String())
		return o
	}
	correlation := uuid.NewString()
	e.log.ErrorContext(ctx, "mutation failed in store",
		"kind", st.kind.String(), "id", st.target, "action", string(st.action),
		"correlation", correlation, "error", err)
	return outcome.StorageError(st.kind, correlation)
}

func (e *Engine) unexpected(ctx context.Context, kind model.Kind, id int64, err error) outcome.Outcome {
	correlation := uuid.NewString()
	e.log.ErrorContext(ctx, "mutation could not be built",
		"kind", kind.String(), "id", id, "correlation", correlation, "error", err)
	return outcome.Unexpected(kind, correlation)
}

func (e *Engine) finish(ctx context.Context, who identity.Identity, action audit.Action, kind model.Kind, id int64, o outcome.Outcome) outcome.Outcome {
	if o.OK() && o.ID > 0 {
		id = o.ID
	}
	e.log.DebugContext(ctx, "mutation attempted",
		"kind", kind.String(), "id", id, "action", string(action), "user", who.String(), "status", o.Status.String())
	e.auditor.Log(ctx, audit.MutationEvent{
		Action:      action,
		Kind:        kind.String(),
		EntityID:    id,
		UserID:      who.String(),
		ClientIP:    who.ClientIP(),
		RequestID:   who.RequestID,
		Status:      o.Status.String(),
		Correlation: o.Correlation,
		Success:     o.OK(),
	})
	return o
}
