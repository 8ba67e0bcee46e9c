package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

const insertMessage = `
	INSERT INTO audit_messages (
		facility, severity, "timestamp", hostname, appname, procid, msgid, sdata, message,
		user_id, kind, entity_id, result, correlation
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

// Store persists audit events to the audit_messages table of a PostgreSQL
// database. The subject of each event gets columns of its own so a
// correlation ID from a StorageError can be looked up directly.
type Store struct {
	db       *sql.DB
	hostname string
	procid   string
}

// Open connects a Store to the PostgreSQL database at url. The connection is
// established lazily on the first Save.
func Open(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB creates a store on an existing connection pool.
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{
		db:       db,
		hostname: hostname,
		procid:   strconv.Itoa(os.Getpid()),
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts one row for event.
func (s *Store) Save(ctx context.Context, event Event) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return fmt.Errorf("failed to encode structured data: %w", err)
	}

	subject := event.Subject()
	_, err = s.db.ExecContext(ctx, insertMessage,
		event.Facility(),
		int(event.Severity()),
		time.Now().UTC(),
		s.hostname,
		appName,
		s.procid,
		event.MessageID(),
		sdata,
		event.Message(),
		nullString(subject.User),
		nullString(subject.Kind),
		nullID(subject.EntityID),
		nullString(subject.Result),
		nullString(subject.Correlation),
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}
