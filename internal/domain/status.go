package domain

import "fmt"

// Status represents where a task sits in its lifecycle.
type Status string

// Valid statuses. The breakdown pipeline only ever produces StatusTodo;
// the remaining states exist for tasks the user has materialized.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// NewStatus creates a new Status value object with validation
func NewStatus(value string) (Status, error) {
	s := Status(value)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return nil
	default:
		return fmt.Errorf("invalid status %q: must be todo, in-progress, review, or done", string(s))
	}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}
