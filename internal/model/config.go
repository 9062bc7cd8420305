package model

// Config is the full run configuration. Resolution order, highest first:
// CLI flags, EPEA_* environment variables, ~/.epea/config.yaml, defaults.
type Config struct {
	Engine      RunConfig         `json:"engine" yaml:"engine"`
	Output      OutputConfig      `json:"output" yaml:"output"`
	Concurrency ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	LLM         LLMConfig         `json:"llm" yaml:"llm"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	JSONPath string `json:"json_path" yaml:"json_path"`
	TextPath string `json:"text_path" yaml:"text_path"`
	Verbose  bool   `json:"verbose" yaml:"verbose"`
}

// ConcurrencyConfig controls batch-mode parallelism. A single analysis run is
// sequential; only independent corpora are processed in parallel.
type ConcurrencyConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// LLMConfig configures the optional commentary generator. Commentary never
// affects scoring and lives in a separate output file.
type LLMConfig struct {
	Provider          string `json:"provider,omitempty" yaml:"provider,omitempty"` // "openai" or "" (disabled)
	Model             string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey            string `json:"-" yaml:"-"` // environment only, never persisted
	BaseURL           string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // OpenAI-compatible endpoints (e.g. local ollama)
	MaxTokens         int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutSeconds    int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
}

// DefaultConfig returns the documented defaults. The surprisal threshold of
// 3.0 bits flags events with modeled probability below 12.5%.
func DefaultConfig() *Config {
	return &Config{
		Engine: RunConfig{
			Alpha:              0.5,
			MinMentions:        2,
			SurprisalThreshold: 3.0,
			TopK:               20,
			Lenient:            false,
		},
		Output: OutputConfig{
			JSONPath: "deviation_analysis.json",
			TextPath: "deviation_report.txt",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			MaxTokens:         1000,
			TimeoutSeconds:    30,
			RequestsPerMinute: 20,
		},
	}
}
