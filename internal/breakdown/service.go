package breakdown

import (
	"context"
	"strings"
	"time"

	"github.com/mattheweller/vibesana/internal/errors"
	"github.com/mattheweller/vibesana/internal/log"
	"github.com/mattheweller/vibesana/internal/prompt"
	"github.com/mattheweller/vibesana/internal/provider"
	"github.com/mattheweller/vibesana/internal/telemetry"
)

// Service runs the breakdown pipeline: validate the description, prompt
// the model, parse the output, and record a best-effort trace. One
// provider attempt per call; there is no retry policy.
type Service struct {
	client   provider.Client
	parser   *Parser
	recorder *telemetry.Recorder
	logger   *log.Logger
	model    string
	timeout  time.Duration
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithModel sets the model identifier recorded in traces.
func WithModel(model string) ServiceOption {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTimeout bounds the completion call.
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewService creates a breakdown Service. The recorder is an explicit
// dependency so tests can exercise the tracing-absent path.
func NewService(client provider.Client, recorder *telemetry.Recorder, logger *log.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	if recorder == nil {
		recorder = telemetry.NewRecorder(logger)
	}

	s := &Service{
		client:   client,
		parser:   NewParser(logger),
		recorder: recorder,
		logger:   logger,
		model:    provider.DefaultModel,
		timeout:  60 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Breakdown decomposes a description into tasks. The returned task list
// is non-empty on success; a parse failure degrades to the fallback
// list rather than an error. Only validation and provider failures
// surface as errors.
func (s *Service) Breakdown(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, errors.NewDescriptionRequiredError()
	}

	s.logger.Info("processing task breakdown", "description", description)

	start := time.Now()
	ctx, span := s.recorder.StartBreakdown(ctx, description)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.client.Complete(callCtx, &provider.CompletionRequest{
		Messages: prompt.BreakdownMessages(description),
	})
	if err != nil {
		if provErr, ok := err.(*provider.Error); ok {
			// Upstream body only reaches the logs.
			s.logger.Error("OpenAI API error", "status", provErr.Status, "body", provErr.Body)
			s.recorder.RecordError(ctx, span, provErr.Error())
			return nil, errors.Wrap(errors.ErrCodeProviderAPI, provErr.Error(), provErr)
		}
		s.logger.WithError(err).Error("completion request failed")
		s.recorder.RecordError(ctx, span, err.Error())
		return nil, errors.Wrap(errors.ErrCodeProviderAPI, "completion request failed", err)
	}

	result := s.parser.Parse(completion.Content)

	model := completion.Model
	if model == "" {
		model = s.model
	}

	s.recorder.RecordSuccess(ctx, span, len(result.Tasks), string(result.Source),
		time.Since(start), model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	s.logger.Info("task breakdown complete",
		"task_count", len(result.Tasks),
		"source", string(result.Source),
		"duration_ms", time.Since(start).Milliseconds())

	return &result, nil
}
