package host

// State is the lifecycle state of a Session.
type State int32

const (
	// StateUninitialized is the state before Initialize.
	StateUninitialized State = iota
	// StateRunning is the state between Initialize and Shutdown.
	StateRunning
	// StateShutdown is terminal.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
