package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ledgerbook/ledger-in-go/pkg/config"
)

const appName = "ledger"

// SDID constants for structured data IDs (RFC5424)
// 32473 is the documentation Private Enterprise Number from RFC 5612.
const (
	LedgerPEN   = 32473
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
	SDIDBatch   = "batch@32473"
)

// Syslog facility constants
const (
	FacilityUser     = 1  // LOG_USER - user-level messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
	Subject() Subject
}

// Auditor receives audit events. The mutation engine reports every attempt
// to one.
type Auditor interface {
	Log(ctx context.Context, event Event)
}

// AuditorFunc adapts a function to the Auditor interface.
type AuditorFunc func(ctx context.Context, event Event)

func (f AuditorFunc) Log(ctx context.Context, event Event) { f(ctx, event) }

// Discard drops every event.
var Discard Auditor = AuditorFunc(func(context.Context, Event) {})

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
}

// NewLogger creates a new audit logger
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  appName,
		pid:      os.Getpid(),
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Log writes an audit event in RFC5424 syslog format
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	logLine := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.writer.Write([]byte(logLine))
}

// formatStructuredData formats the structured data according to RFC5424
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
// SD-IDs and params are sorted so a line is stable across runs.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for sdid := range sd {
		ids = append(ids, sdid)
	}
	sort.Strings(ids)

	var parts []string
	for _, sdid := range ids {
		params := sd[sdid]
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		paramParts := []string{sdid}
		for _, key := range keys {
			paramParts = append(paramParts, fmt.Sprintf("%s=%s", key, escapeSDValue(params[key])))
		}
		parts = append(parts, "["+strings.Join(paramParts, " ")+"]")
	}
	return strings.Join(parts, "")
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// DefaultLogger receives every event while auditing is enabled.
var DefaultLogger = NewLogger()

var (
	mu      sync.RWMutex
	enabled = true
	store   *Store
)

// Setup applies the audit settings of cfg. With AuditDatabaseURL set, events
// are also persisted there. A store opened by an earlier Setup is closed.
func Setup(cfg *config.LedgerConfig) error {
	var next *Store
	if cfg.AuditDatabaseURL != "" {
		s, err := Open(cfg.AuditDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		next = s
	}

	mu.Lock()
	prev := store
	enabled, store = cfg.AuditEnabled, next
	mu.Unlock()

	if prev != nil {
		return prev.Close()
	}
	return nil
}

// Shutdown closes the audit store, if any. Events after Shutdown only reach
// DefaultLogger.
func Shutdown() error {
	mu.Lock()
	s := store
	store = nil
	mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}

// IsEnabled returns whether audit logging is enabled.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled turns audit logging on or off.
func SetEnabled(on bool) {
	mu.Lock()
	enabled = on
	mu.Unlock()
}

// Log writes an event to DefaultLogger and to the store set up by Setup.
// The store write ignores cancellation of ctx: an attempt is recorded even
// when its request was abandoned.
func Log(ctx context.Context, event Event) {
	mu.RLock()
	on, s := enabled, store
	mu.RUnlock()
	if !on {
		return
	}

	DefaultLogger.Log(event)
	if s == nil {
		return
	}
	if err := s.Save(context.WithoutCancel(ctx), event); err != nil {
		slog.WarnContext(ctx, "audit: failed to save event", "msgid", event.MessageID(), "error", err)
	}
}

// Default returns an Auditor backed by the package-level Log.
func Default() Auditor {
	return AuditorFunc(Log)
}
