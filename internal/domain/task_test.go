package domain

import "testing"

func TestNewPriority(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"low is valid", "low", false},
		{"medium is valid", "medium", false},
		{"high is valid", "high", false},
		{"empty is invalid", "", true},
		{"uppercase is invalid", "HIGH", true},
		{"unknown is invalid", "urgent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriority(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPriority(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !PriorityHigh.IsHigherThan(PriorityMedium) {
		t.Error("high should rank above medium")
	}
	if !PriorityMedium.IsHigherThan(PriorityLow) {
		t.Error("medium should rank above low")
	}
	if PriorityLow.IsHigherThan(PriorityHigh) {
		t.Error("low should not rank above high")
	}
}

func TestNewStatus(t *testing.T) {
	for _, valid := range []string{"todo", "in-progress", "review", "done"} {
		if _, err := NewStatus(valid); err != nil {
			t.Errorf("NewStatus(%q) unexpected error: %v", valid, err)
		}
	}

	if _, err := NewStatus("archived"); err == nil {
		t.Error("NewStatus should reject unknown statuses")
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{
		Title:       "Set up CI",
		Description: "Add a pipeline that runs tests on every push",
		Priority:    PriorityMedium,
		Status:      StatusTodo,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid task failed validation: %v", err)
	}

	missingTitle := valid
	missingTitle.Title = ""
	if err := missingTitle.Validate(); err == nil {
		t.Error("task without title should fail validation")
	}

	badPriority := valid
	badPriority.Priority = "critical"
	if err := badPriority.Validate(); err == nil {
		t.Error("task with unknown priority should fail validation")
	}
}

func TestFallbackTasks(t *testing.T) {
	tasks := FallbackTasks()

	if len(tasks) != 2 {
		t.Fatalf("expected exactly 2 fallback tasks, got %d", len(tasks))
	}

	if tasks[0].Title != "Review and plan project requirements" {
		t.Errorf("unexpected first fallback title: %s", tasks[0].Title)
	}
	if tasks[1].Title != "Set up development environment" {
		t.Errorf("unexpected second fallback title: %s", tasks[1].Title)
	}

	for i, task := range tasks {
		if task.Priority != PriorityHigh {
			t.Errorf("fallback task %d priority = %s, want high", i, task.Priority)
		}
		if task.Status != StatusTodo {
			t.Errorf("fallback task %d status = %s, want todo", i, task.Status)
		}
		if err := task.Validate(); err != nil {
			t.Errorf("fallback task %d failed validation: %v", i, err)
		}
	}
}
