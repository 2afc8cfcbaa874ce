package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: "~/media/library",
			DataDir:    "~/.local/share/reelsort",
			LogDir:     "~/.local/share/reelsort/logs",
		},
		TMDB: TMDB{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "en-US",
		},
		LLM: LLM{
			BaseURL:        "https://openrouter.ai/api/v1/chat/completions",
			Model:          "openai/gpt-4o-mini",
			TimeoutSeconds: 15,
		},
		Recognizer: Recognizer{
			Concurrency:      4,
			RetryMaxAttempts: 4,
			RetryBaseDelayMS: 500,
			RetryMaxDelayMS:  8000,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
