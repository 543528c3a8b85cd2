package telemetry

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment (dev, staging, production)
	Environment string

	// Enabled determines whether tracing is enabled.
	// When false, a noop tracer is used.
	Enabled bool

	// Endpoint is the OTLP collector endpoint (host, optional)
	// If empty, traces are not exported
	Endpoint string

	// APIKey authenticates against the tracing service. Tracing is
	// enabled iff this is set; absence is not an error.
	APIKey string

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	// 1.0 means all traces are sampled
	SampleRate float64
}

// DefaultConfig returns a sensible default configuration.
// Tracing is disabled until a credential is supplied.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "vibesana",
		ServiceVersion: "dev",
		Environment:    "development",
		Enabled:        false,
		Endpoint:       "",
		SampleRate:     1.0,
	}
}

// ConfigFromCredential builds a tracing configuration from an optional
// API key. An empty key yields a disabled (noop) configuration.
func ConfigFromCredential(apiKey, endpoint, version string) Config {
	cfg := DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Endpoint = endpoint
	cfg.APIKey = apiKey
	cfg.Enabled = apiKey != ""
	return cfg
}
