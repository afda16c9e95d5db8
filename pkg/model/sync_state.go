package model

//go:generate go run github.com/dmarkham/enumer -type SyncState -trimprefix SyncState -json -text -output sync_state.gen.go

// SyncState describes how far the note key has been distributed across a
// principal's devices.
type SyncState int

const (
	// SyncStateUnseeded means no device is registered.
	SyncStateUnseeded SyncState = iota
	// SyncStateSeededUnsynced means devices exist but no secret was uploaded.
	SyncStateSeededUnsynced
	// SyncStatePartiallySynced means some registered keys have no secret yet.
	SyncStatePartiallySynced
	// SyncStateFullySynced means every registered key holds the secret.
	SyncStateFullySynced
)

// SyncStateOf derives the state from the number of distinct registered keys
// and the number of ledger entries.
func SyncStateOf(registeredKeys, ledgerEntries int) SyncState {
	switch {
	case registeredKeys == 0:
		return SyncStateUnseeded
	case ledgerEntries == 0:
		return SyncStateSeededUnsynced
	case ledgerEntries < registeredKeys:
		return SyncStatePartiallySynced
	default:
		return SyncStateFullySynced
	}
}
