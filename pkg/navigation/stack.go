package navigation

import (
	"strings"

	"github.com/datatug/drivetug/pkg/drives"
)

// Stack is the path from the drive's top-level folder (first) to the current folder (last).
type Stack []drives.Folder

func (s Stack) Len() int {
	return len(s)
}

func (s Stack) Root() (drives.Folder, bool) {
	if len(s) == 0 {
		return drives.Folder{}, false
	}
	return s[0], true
}

func (s Stack) Current() (drives.Folder, bool) {
	if len(s) == 0 {
		return drives.Folder{}, false
	}
	return s[len(s)-1], true
}

// Push returns a new stack; s is never modified.
func (s Stack) Push(f drives.Folder) Stack {
	next := make(Stack, len(s), len(s)+1)
	copy(next, s)
	return append(next, f)
}

// Pop returns s without its last element. The top-level folder is never popped.
func (s Stack) Pop() (Stack, bool) {
	if len(s) <= 1 {
		return s, false
	}
	return s.Clone()[:len(s)-1], true
}

func (s Stack) Clone() Stack {
	if s == nil {
		return nil
	}
	c := make(Stack, len(s))
	copy(c, s)
	return c
}

func (s Stack) IDs() []string {
	ids := make([]string, len(s))
	for i, f := range s {
		ids[i] = f.ID
	}
	return ids
}

func (s Stack) Path() string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return strings.Join(names, "/")
}
