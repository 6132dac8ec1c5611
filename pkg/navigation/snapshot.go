package navigation

import "github.com/datatug/drivetug/pkg/drives"

// Snapshot is a copy of the controller state safe to hand to another goroutine.
type Snapshot struct {
	Generation uint64
	Stack      Stack
	// Listing is nil while loading or before the first successful refresh.
	Listing *drives.Listing
	Loading bool
	// Stale is set when the last refresh failed and Listing is the last known one.
	Stale bool
	Err   error
}

func (s Snapshot) Initialized() bool {
	return len(s.Stack) > 0
}

func (s Snapshot) CanAscend() bool {
	return len(s.Stack) > 1
}

func (s Snapshot) Current() (drives.Folder, bool) {
	return s.Stack.Current()
}
