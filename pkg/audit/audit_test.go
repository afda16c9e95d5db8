package audit

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(DeviceEvent{
		Principal: "alice",
		ClientIP:  "192.168.1.1",
		Alias:     "laptop",
		Operation: "register",
		Success:   true,
	})

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^<86>1 \S+ \S+ notes \d+ device `), line)
	assert.Contains(t, line, `[action@32473 operation="register" result="success"][auth@32473 user="alice"][client@32473 ip="192.168.1.1"][subject@32473 device="laptop"]`)
	assert.Contains(t, line, "alice registered device laptop\n")
}

func TestEscapeSDValue(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\]d"`, escapeSDValue(`a"b\c]d`))
}

func TestFormatStructuredDataEmpty(t *testing.T) {
	assert.Equal(t, "", formatStructuredData(nil))
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantMsg   string
		wantSev   Severity
		wantMsgID string
	}{
		{
			name:      "device registered",
			event:     DeviceEvent{Principal: "alice", Alias: "A1", Operation: "register", Success: true},
			wantMsg:   "alice registered device A1",
			wantSev:   SeverityInfo,
			wantMsgID: "device",
		},
		{
			name:      "device delete failed",
			event:     DeviceEvent{Principal: "alice", Alias: "A1", Operation: "delete", ErrorMessage: "boom"},
			wantMsg:   "alice tried to delete device A1: boom",
			wantSev:   SeverityWarning,
			wantMsgID: "device",
		},
		{
			name:      "seed",
			event:     SecretEvent{Principal: "alice", PublicKeys: []string{"pk1"}, Operation: "seed", Success: true},
			wantMsg:   "alice seeded the note secret",
			wantSev:   SeverityInfo,
			wantMsgID: "secret",
		},
		{
			name:      "upload failed",
			event:     SecretEvent{Principal: "alice", PublicKeys: []string{"pk1", "pk2"}, Operation: "upload", ErrorMessage: "unknown public key"},
			wantMsg:   "alice tried to distribute the note secret to 2 key(s): unknown public key",
			wantSev:   SeverityWarning,
			wantMsgID: "secret",
		},
		{
			name:      "fetch",
			event:     SecretEvent{Principal: "alice", Operation: "fetch", Success: true},
			wantMsg:   "alice fetched the encrypted note secret",
			wantSev:   SeverityInfo,
			wantMsgID: "secret",
		},
		{
			name:      "note added",
			event:     NoteEvent{Principal: "alice", NoteID: "3", Operation: "add", Success: true},
			wantMsg:   "alice added note 3",
			wantSev:   SeverityInfo,
			wantMsgID: "note",
		},
		{
			name:      "note add failed",
			event:     NoteEvent{Principal: "alice", Operation: "add", ErrorMessage: "note too large"},
			wantMsg:   "alice tried to add a note: note too large",
			wantSev:   SeverityWarning,
			wantMsgID: "note",
		},
		{
			name:      "note updated",
			event:     NoteEvent{Principal: "alice", NoteID: "7", Operation: "update", Success: true},
			wantMsg:   "alice updated note 7",
			wantSev:   SeverityInfo,
			wantMsgID: "note",
		},
		{
			name:      "rejected token",
			event:     AuthenticateEvent{ClientIP: "10.0.0.1", ErrorMessage: "token is expired"},
			wantMsg:   "unknown caller failed to authenticate: token is expired",
			wantSev:   SeverityWarning,
			wantMsgID: "authn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.event.Message())
			assert.Equal(t, tt.wantSev, tt.event.Severity())
			assert.Equal(t, tt.wantMsgID, tt.event.MessageID())
			assert.Equal(t, FacilityAuthPriv, tt.event.Facility())
			assert.Contains(t, tt.event.StructuredData(), SDIDAction)
		})
	}
}

func TestNoteEventNeverCarriesCiphertext(t *testing.T) {
	sd := NoteEvent{Principal: "alice", NoteID: "1", Operation: "update", Success: true}.StructuredData()
	assert.Equal(t, map[string]string{"note": "1"}, sd[SDIDSubject])
}

func TestSetEnabled(t *testing.T) {
	defer SetEnabled(true)

	SetEnabled(false)
	assert.False(t, IsEnabled())
	SetEnabled(true)
	assert.True(t, IsEnabled())
}

func TestMessageFormat(t *testing.T) {
	m := Message{
		Facility:  FacilityAuth,
		Severity:  int(SeverityWarning),
		Timestamp: time.Date(2026, 9, 1, 12, 0, 0, 5_000_000, time.UTC),
		Appname:   AppName,
		Procid:    "42",
		Msgid:     "secret",
		Message:   "alice failed to fetch secret",
	}
	assert.Equal(t, "<36>1 2026-09-01T12:00:00.005Z - notes 42 secret - alice failed to fetch secret", m.Format())
}
