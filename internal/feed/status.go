package feed

// Status lines shown to viewers after each poll.
const (
	StatusConnected = "Connected"
	StatusNewEvents = "New events received"
	StatusError     = "Connection error - retrying..."
)

// StatusFor returns the status line for a successful poll that produced d.
func StatusFor(d Diff) string {
	if len(d.Added) > 0 {
		return StatusNewEvents
	}
	return StatusConnected
}
