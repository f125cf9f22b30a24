package tui

// ConnectionStatus is the dashboard's link to the daemon
type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Connected
)

// String returns a human-readable string representation of the connection status
func (cs ConnectionStatus) String() string {
	switch cs {
	case Connected:
		return "live"
	case Disconnected:
		return "local"
	default:
		return "unknown"
	}
}
