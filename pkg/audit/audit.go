package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// SDID constants for structured data IDs (RFC5424)
// 32473 is the documentation Private Enterprise Number (RFC5612)
const (
	PEN         = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// AppName is the RFC5424 APP-NAME of every audit record.
const AppName = "notes"

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
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
}

// Logger writes audit events as RFC5424 syslog lines.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	pid      int
}

// NewLogger returns a logger writing to stdout.
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		pid:      os.Getpid(),
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Log writes one line per event.
func (l *Logger) Log(event Event) {
	line := newMessage(event, l.hostname, l.pid, time.Now()).Format()

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line+"\n")
}

// Format renders m as <PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG.
func (m Message) Format() string {
	sd := formatStructuredData(m.Sdata)
	if sd == "" {
		sd = "-"
	}
	return fmt.Sprintf("<%d>1 %s %s %s %s %s %s %s",
		m.Facility*8+m.Severity,
		m.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		nilValue(m.Hostname),
		nilValue(m.Appname),
		nilValue(m.Procid),
		nilValue(m.Msgid),
		sd,
		m.Message,
	)
}

func nilValue(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatStructuredData formats the structured data according to RFC5424
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
// Elements and params are sorted so identical events produce identical lines.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var parts []string
	for _, sdid := range sortedKeys(sd) {
		params := sd[sdid]
		paramParts := []string{sdid}
		for _, key := range sortedKeys(params) {
			// Escape special characters per RFC5424 section 6.3.3
			paramParts = append(paramParts, fmt.Sprintf("%s=%s", key, escapeSDValue(params[key])))
		}
		parts = append(parts, "["+strings.Join(paramParts, " ")+"]")
	}
	return strings.Join(parts, "")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	// Escape backslash, double quote, and closing bracket
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// Default logger instance
var DefaultLogger = NewLogger()

// Default store for database persistence (nil if AUDIT_DATABASE_URL not set)
var DefaultStore *Store

// Audit enabled state, defaults to true.
// Can be disabled via NOTES_AUDIT_ENABLED=false
var (
	auditEnabled     atomic.Bool
	auditEnabledOnce sync.Once
	storeInitOnce    sync.Once
)

// IsEnabled returns whether audit logging is enabled
func IsEnabled() bool {
	auditEnabledOnce.Do(func() {
		enabled := true
		if env := os.Getenv("NOTES_AUDIT_ENABLED"); env != "" {
			enabled = env != "false" && env != "0" && env != "no"
		}
		auditEnabled.Store(enabled)
	})
	return auditEnabled.Load()
}

// SetEnabled allows programmatic control of audit logging.
// It overrides NOTES_AUDIT_ENABLED and may be called at any time, e.g. on config reload.
func SetEnabled(enabled bool) {
	auditEnabledOnce.Do(func() {})
	auditEnabled.Store(enabled)
}

// Log writes an event to the default logger and store (if audit is enabled)
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	DefaultLogger.Log(event)

	// Initialize store on first use
	storeInitOnce.Do(func() {
		var err error
		DefaultStore, err = NewStore()
		if err != nil {
			// Log error but don't fail - audit DB is optional
			fmt.Fprintf(os.Stderr, "audit: failed to connect to audit database: %v\n", err)
		}
	})

	// Persist to database if store is available
	if DefaultStore != nil {
		if err := DefaultStore.Save(event); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save event: %v\n", err)
		}
	}
}
