package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values that would break at runtime.
// Validation failures report every problem at once so users fix the file in
// one edit.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	if strings.TrimSpace(c.TMDB.BaseURL) == "" {
		problems = append(problems, "tmdb.base_url must be set")
	}
	if c.Recognizer.Concurrency < 1 {
		problems = append(problems, "recognizer.concurrency must be at least 1")
	}
	if c.Recognizer.Concurrency > 64 {
		problems = append(problems, "recognizer.concurrency must not exceed 64")
	}
	if c.Recognizer.RetryMaxAttempts < 1 {
		problems = append(problems, "recognizer.retry_max_attempts must be at least 1")
	}
	if c.Recognizer.RetryBaseDelayMS < 0 || c.Recognizer.RetryMaxDelayMS < 0 {
		problems = append(problems, "recognizer retry delays must not be negative")
	}
	if c.Recognizer.RetryMaxDelayMS > 0 && c.Recognizer.RetryBaseDelayMS > c.Recognizer.RetryMaxDelayMS {
		problems = append(problems, "recognizer.retry_base_delay_ms must not exceed retry_max_delay_ms")
	}
	if c.LLM.TimeoutSeconds < 0 {
		problems = append(problems, "llm.timeout_seconds must not be negative")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
