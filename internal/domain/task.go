// Package domain holds the task value objects shared by the breakdown
// pipeline, the task store, and the HTTP surface.
package domain

import "fmt"

// Task is a single actionable unit of work produced by a breakdown or
// created directly by a user.
type Task struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// Validate checks that the task has a usable title and valid enum fields.
func (t Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if err := t.Priority.Validate(); err != nil {
		return err
	}
	return t.Status.Validate()
}

// FallbackTasks returns the fixed task list substituted when the model's
// output cannot be parsed. The titles and priorities are part of the
// service contract and must not change.
func FallbackTasks() []Task {
	return []Task{
		{
			Title:       "Review and plan project requirements",
			Description: "Analyze the project description and create a detailed plan",
			Priority:    PriorityHigh,
			Status:      StatusTodo,
		},
		{
			Title:       "Set up development environment",
			Description: "Configure tools, frameworks, and dependencies needed",
			Priority:    PriorityHigh,
			Status:      StatusTodo,
		},
	}
}
