package workflow

// Decision is the workflow engine's contract to its caller. Notifications
// are advisory strings for an external dispatcher; the engine makes no
// delivery guarantee.
type Decision struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	NewStatus     string   `json:"new_status,omitempty"`
	Notifications []string `json:"notifications,omitempty"`
}

func failure(message string) *Decision {
	return &Decision{Success: false, Message: message}
}
