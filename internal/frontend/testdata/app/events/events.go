package events

type Login struct {
	User string
}

type audit struct{}

// Audit exposes an unexported event type.
func Audit() audit { return audit{} }
