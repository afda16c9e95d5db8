// Package memory provides in-process implementations of the store interfaces.
//
// A Backend wires the three components together: the Registry notifies the
// NoteStore when a principal registers its first device, and drops Ledger
// entries when a device is deleted. Each component guards its own maps with a
// mutex. Locks are always taken in the order registry, ledger, notes.
//
// State can be captured with Backend.Snapshot and restored with
// Backend.Restore. A Persister writes snapshots to disk, optionally sealed.
package memory
