package jfile

import "strings"

// Mode is the open mode of a file.
type Mode int

const (
	// ModeRead opens an existing file read-only.
	ModeRead Mode = iota
	// ModeCreate creates a new file and fails if it already exists.
	ModeCreate
	// ModeRecreate creates a new file, deleting any existing one first.
	ModeRecreate
	// ModeUpdate opens an existing file for writing, creating it if absent.
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "READ"
	case ModeCreate:
		return "CREATE"
	case ModeRecreate:
		return "RECREATE"
	case ModeUpdate:
		return "UPDATE"
	}
	return "READ"
}

// ParseMode maps an option string to a Mode. Case-insensitive; "NEW" is an
// alias for CREATE and anything unrecognized falls back to READ.
func ParseMode(option string) Mode {
	switch strings.ToUpper(strings.TrimSpace(option)) {
	case "NEW", "CREATE":
		return ModeCreate
	case "RECREATE":
		return ModeRecreate
	case "UPDATE":
		return ModeUpdate
	default:
		return ModeRead
	}
}

func (m Mode) writable() bool {
	return m == ModeCreate || m == ModeRecreate || m == ModeUpdate
}
