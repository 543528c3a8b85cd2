package provider

import "fmt"

// Error is returned when the provider answers with a non-success status.
// Body carries the upstream response for logging; handlers must not leak
// it to clients.
type Error struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("OpenAI API error: %d", e.Status)
}
