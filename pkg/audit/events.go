package audit

import "fmt"

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func withError(msg, errorMessage string) string {
	if errorMessage != "" {
		return msg + ": " + errorMessage
	}
	return msg
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

// DeviceEvent records a device registration or deletion
type DeviceEvent struct {
	Principal    string
	ClientIP     string
	Alias        string
	Operation    string // "register", "delete"
	Success      bool
	ErrorMessage string
}

func (e DeviceEvent) MessageID() string {
	return "device"
}

func (e DeviceEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %sed device %s", e.Principal, trimE(e.Operation), e.Alias)
	}
	return withError(fmt.Sprintf("%s tried to %s device %s", e.Principal, e.Operation, e.Alias), e.ErrorMessage)
}

func (e DeviceEvent) Severity() Severity {
	return severity(e.Success)
}

func (e DeviceEvent) Facility() int {
	return FacilityAuthPriv
}

func (e DeviceEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Principal,
		},
		SDIDSubject: {
			"device": e.Alias,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}

// trimE prepares an operation name for the "ed" suffix.
func trimE(op string) string {
	if len(op) > 0 && op[len(op)-1] == 'e' {
		return op[:len(op)-1]
	}
	return op
}

// SecretEvent records a ledger operation
type SecretEvent struct {
	Principal    string
	ClientIP     string
	PublicKeys   []string
	Operation    string // "seed", "upload", "fetch"
	Success      bool
	ErrorMessage string
}

func (e SecretEvent) MessageID() string {
	return "secret"
}

func (e SecretEvent) Message() string {
	var did, try string
	switch e.Operation {
	case "seed":
		did, try = "seeded the note secret", "seed the note secret"
	case "upload":
		n := len(e.PublicKeys)
		did = fmt.Sprintf("distributed the note secret to %d key(s)", n)
		try = fmt.Sprintf("distribute the note secret to %d key(s)", n)
	default:
		did, try = "fetched the encrypted note secret", "fetch the encrypted note secret"
	}
	if e.Success {
		return fmt.Sprintf("%s %s", e.Principal, did)
	}
	return withError(fmt.Sprintf("%s tried to %s", e.Principal, try), e.ErrorMessage)
}

func (e SecretEvent) Severity() Severity {
	return severity(e.Success)
}

func (e SecretEvent) Facility() int {
	return FacilityAuthPriv
}

func (e SecretEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Principal,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if len(e.PublicKeys) > 0 {
		sd[SDIDSubject] = map[string]string{
			"keys": fmt.Sprintf("%d", len(e.PublicKeys)),
		}
	}
	return sd
}

// NoteEvent records a note mutation. Note contents are never logged.
type NoteEvent struct {
	Principal    string
	ClientIP     string
	NoteID       string
	Operation    string // "add", "update", "delete"
	Success      bool
	ErrorMessage string
}

func (e NoteEvent) MessageID() string {
	return "note"
}

func (e NoteEvent) Message() string {
	target := "a note"
	if e.NoteID != "" {
		target = "note " + e.NoteID
	}
	if e.Success {
		return fmt.Sprintf("%s %sed %s", e.Principal, trimE(e.Operation), target)
	}
	return withError(fmt.Sprintf("%s tried to %s %s", e.Principal, e.Operation, target), e.ErrorMessage)
}

func (e NoteEvent) Severity() Severity {
	return severity(e.Success)
}

func (e NoteEvent) Facility() int {
	return FacilityAuthPriv
}

func (e NoteEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Principal,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.NoteID != "" {
		sd[SDIDSubject] = map[string]string{"note": e.NoteID}
	}
	return sd
}

// AuthenticateEvent records a rejected bearer token
type AuthenticateEvent struct {
	Principal    string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	who := e.Principal
	if who == "" {
		who = "unknown caller"
	}
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated", who)
	}
	return withError(fmt.Sprintf("%s failed to authenticate", who), e.ErrorMessage)
}

func (e AuthenticateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user":          e.Principal,
			"authenticator": "token",
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
}
