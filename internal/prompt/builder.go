// Package prompt builds the chat messages for a task-breakdown request.
package prompt

import (
	"fmt"

	"github.com/mattheweller/vibesana/internal/provider"
)

// systemInstructions encodes the output contract the model must follow.
// The parser depends on the "only the JSON array" clause; keep them in sync.
const systemInstructions = `You are a project management expert. Break down user project descriptions into specific, actionable tasks. 

Return your response as a JSON array of task objects with this exact structure:
[
  {
    "title": "Task title (concise, actionable)",
    "description": "Detailed description of what needs to be done",
    "priority": "low" | "medium" | "high",
    "status": "todo"
  }
]

Guidelines:
- Create 5-10 tasks maximum
- Make tasks specific and actionable
- Use appropriate priority levels (high for critical path, medium for important, low for nice-to-have)
- All tasks should start with status "todo"
- Focus on technical implementation steps
- Order tasks logically (dependencies first)

Return only the JSON array, no additional text.`

// BreakdownMessages returns the ordered message pair for a breakdown
// request. Pure function of the description; the caller is responsible
// for rejecting empty input before this stage.
func BreakdownMessages(description string) []provider.Message {
	return []provider.Message{
		{
			Role:    provider.RoleSystem,
			Content: systemInstructions,
		},
		{
			Role:    provider.RoleUser,
			Content: fmt.Sprintf("Break down this project: %s", description),
		},
	}
}
