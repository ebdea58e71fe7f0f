package relay

// State is a step of one relay invocation.
type State int

const (
	StateInit State = iota
	StateSpawned
	StateHeaderRead
	StateFormatResolved
	StateHeaderWritten
	StateStreaming
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:           "init",
	StateSpawned:        "spawned",
	StateHeaderRead:     "header-read",
	StateFormatResolved: "format-resolved",
	StateHeaderWritten:  "header-written",
	StateStreaming:      "streaming",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends an invocation.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
