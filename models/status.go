package models

// Status is the progression status of a wizard
type Status uint8

const (
	// StatusProceeding lets the active step run
	StatusProceeding Status = iota
	// StatusBlocked pauses progression until an external approval arrives
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusProceeding:
		return "PROCEEDING"
	case StatusBlocked:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is PROCEEDING or BLOCKED
func (s Status) Valid() bool {
	return s == StatusProceeding || s == StatusBlocked
}
