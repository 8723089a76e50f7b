// Package binding holds the staleness state shared by every object which can mirror
// the live environment.
package binding

// State tells whether an object was ever bound to the environment, is bound right now
// or was bound and has been detached since.
type State uint8

const (
	// Unbound objects were never touched by the environment binding and act as plain
	// value objects.
	Unbound State = iota
	// Bound objects read from and write through to the live environment.
	Bound
	// Stale objects were bound once. They hold a snapshot of the live state taken at
	// the moment they were detached. Mirrors refuse any further modification, whereas
	// envelopes act as ordinary copies of the snapshot.
	Stale
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// IsStale renders the state as a nullable flag: ok is false for Unbound objects.
func (s State) IsStale() (stale, ok bool) {
	return s == Stale, s != Unbound
}
