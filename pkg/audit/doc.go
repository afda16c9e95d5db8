// Package audit provides audit logging for note server operations.
//
// Events are written as RFC5424 syslog lines to stdout and, when
// AUDIT_DATABASE_URL is set, persisted to the messages table.
//
// # Event Types
//
//   - DeviceEvent: device registration and deletion
//   - SecretEvent: seed upload, secret distribution and secret fetch
//   - NoteEvent: note creation, update and deletion
//   - AuthenticateEvent: rejected bearer tokens
//
// # Usage
//
//	audit.Log(audit.DeviceEvent{
//	    Principal: principal,
//	    ClientIP:  ip,
//	    Alias:     alias,
//	    Operation: "register",
//	    Success:   true,
//	})
//
// Set NOTES_AUDIT_ENABLED=false to disable audit logging.
package audit
