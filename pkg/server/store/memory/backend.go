package memory

// Backend bundles the in-memory registry, ledger and note store.
type Backend struct {
	Devices *Registry
	Secrets *Ledger
	Notes   *NoteStore
}

// NewBackend returns an empty backend. maxNoteBytes of zero means unlimited.
func NewBackend(maxNoteBytes int) *Backend {
	notes := NewNoteStore(maxNoteBytes)
	registry := NewRegistry(notes)
	ledger := NewLedger(registry)
	registry.ledger = ledger
	return &Backend{
		Devices: registry,
		Secrets: ledger,
		Notes:   notes,
	}
}

// HealthStore always reports the in-process backend as reachable.
type HealthStore struct{}

func (HealthStore) CheckConnectivity() error {
	return nil
}
