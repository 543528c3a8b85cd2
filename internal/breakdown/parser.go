// Package breakdown turns a free-text project description into a list
// of tasks by prompting a language model, parsing its output, and
// recovering with a fixed fallback list when that output is unusable.
package breakdown

import (
	"encoding/json"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mattheweller/vibesana/internal/domain"
	"github.com/mattheweller/vibesana/internal/log"
)

// Source classifies where a task list came from.
type Source string

const (
	// SourceModel marks tasks parsed from the model's output.
	SourceModel Source = "model"
	// SourceFallback marks the fixed fallback list substituted when the
	// model's output could not be parsed or validated.
	SourceFallback Source = "fallback"
)

// Result is a non-empty task list tagged with its origin. The
// caller-visible shape is identical either way; the tag exists for
// tracing and tests.
type Result struct {
	Tasks  []domain.Task
	Source Source
}

// taskArraySchema pins down the shape the model was instructed to emit.
// An array that parses but does not match (wrong field names, unknown
// priority values, a status other than "todo") takes the fallback path.
const taskArraySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["title", "description", "priority", "status"],
    "properties": {
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "priority": {"enum": ["low", "medium", "high"]},
      "status": {"const": "todo"}
    }
  }
}`

var taskSchema = compileTaskSchema()

func compileTaskSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tasks.schema.json", strings.NewReader(taskArraySchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("tasks.schema.json")
}

// Parser converts raw assistant text into validated tasks.
type Parser struct {
	logger *log.Logger
}

// NewParser creates a Parser.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Parser{logger: logger}
}

// Parse attempts to read raw as a JSON array of tasks matching the
// schema. On any failure it substitutes the fixed fallback list instead
// of returning an error; the result is always non-empty.
func (p *Parser) Parse(raw string) Result {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		p.logger.Warn("failed to parse model output, using fallback", "error", err.Error())
		return Result{Tasks: domain.FallbackTasks(), Source: SourceFallback}
	}

	if err := taskSchema.Validate(decoded); err != nil {
		p.logger.Warn("model output failed schema validation, using fallback", "error", err.Error())
		return Result{Tasks: domain.FallbackTasks(), Source: SourceFallback}
	}

	var tasks []domain.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		p.logger.Warn("failed to decode task list, using fallback", "error", err.Error())
		return Result{Tasks: domain.FallbackTasks(), Source: SourceFallback}
	}

	return Result{Tasks: tasks, Source: SourceModel}
}
