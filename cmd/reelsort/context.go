package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"reelsort/internal/config"
	"reelsort/internal/logging"
	"reelsort/internal/recognizer"
	"reelsort/internal/rules"
	"reelsort/internal/services/llm"
	"reelsort/internal/services/tmdb"
	"reelsort/internal/storage"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, jsonFlag: jsonFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the process logger from the loaded config. Before the
// config is available (or when loading failed) commands get a nop logger.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		format := cfg.Logging.Format
		if format == "" {
			format = "json"
			if isatty.IsTerminal(os.Stderr.Fd()) {
				format = "console"
			}
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: format,
			Output: os.Stderr,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openRuleStore() (*rules.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return rules.Open(cfg)
}

func (c *commandContext) localAdapter() (*storage.Local, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewLocal(cfg.Paths.LibraryDir, c.ensureLogger())
}

func (c *commandContext) newRecognizer() (*recognizer.Recognizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	searcher, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, err
	}

	opts := []recognizer.Option{
		recognizer.WithConcurrency(cfg.Recognizer.Concurrency),
		recognizer.WithRetryPolicy(
			cfg.Recognizer.RetryMaxAttempts,
			time.Duration(cfg.Recognizer.RetryBaseDelayMS)*time.Millisecond,
			time.Duration(cfg.Recognizer.RetryMaxDelayMS)*time.Millisecond,
		),
	}
	if cfg.LLMEnabled() {
		opts = append(opts, recognizer.WithInferrer(llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})))
	}
	return recognizer.New(searcher, c.ensureLogger(), opts...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for cur := cmd; cur != nil; cur = cur.Parent() {
		if cur.Annotations != nil && cur.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
