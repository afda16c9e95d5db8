package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseURLEnv names the connection string of the optional audit sink.
const DatabaseURLEnv = "AUDIT_DATABASE_URL"

const saveTimeout = 5 * time.Second

// Message is one audit record as persisted in the messages table.
type Message struct {
	Facility  int                          `json:"facility"`
	Severity  int                          `json:"severity"`
	Timestamp time.Time                    `json:"timestamp"`
	Hostname  string                       `json:"hostname"`
	Appname   string                       `json:"appname"`
	Procid    string                       `json:"procid"`
	Msgid     string                       `json:"msgid"`
	Sdata     map[string]map[string]string `json:"sdata"`
	Message   string                       `json:"message"`
}

func newMessage(event Event, hostname string, pid int, now time.Time) Message {
	return Message{
		Facility:  event.Facility(),
		Severity:  int(event.Severity()),
		Timestamp: now.UTC(),
		Hostname:  hostname,
		Appname:   AppName,
		Procid:    fmt.Sprint(pid),
		Msgid:     event.MessageID(),
		Sdata:     event.StructuredData(),
		Message:   event.Message(),
	}
}

// Store persists audit messages to Postgres.
type Store struct {
	db       *sql.DB
	hostname string
}

// NewStore opens the audit database named by AUDIT_DATABASE_URL.
// It returns a nil Store when the variable is unset.
func NewStore() (*Store, error) {
	dbURL := os.Getenv(DatabaseURLEnv)
	if dbURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB wraps an open connection.
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, hostname: hostname}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts event into the messages table.
func (s *Store) Save(event Event) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.Insert(newMessage(event, s.hostname, os.Getpid(), time.Now()))
}

// Insert writes a prepared message.
func (s *Store) Insert(m Message) error {
	sdata, err := json.Marshal(m.Sdata)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.Facility, m.Severity, m.Timestamp, m.Hostname, m.Appname, m.Procid, m.Msgid, sdata, m.Message,
	)
	return err
}

// Recent returns up to limit messages, newest first. An empty msgid matches
// every kind of event.
func (s *Store) Recent(ctx context.Context, msgid string, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message
		FROM messages
		WHERE $1 = '' OR msgid = $1
		ORDER BY timestamp DESC
		LIMIT $2`,
		msgid, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	messages := []Message{}
	for rows.Next() {
		var (
			m     Message
			sdata []byte
		)
		if err := rows.Scan(&m.Facility, &m.Severity, &m.Timestamp, &m.Hostname, &m.Appname, &m.Procid, &m.Msgid, &sdata, &m.Message); err != nil {
			return nil, err
		}
		if len(sdata) > 0 {
			if err := json.Unmarshal(sdata, &m.Sdata); err != nil {
				return nil, fmt.Errorf("decode sdata of %s message: %w", m.Msgid, err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
