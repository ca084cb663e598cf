// Package config loads interviewiz settings from a YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, INTERVIEWIZ_*
// environment variables. API keys are read from the environment only.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/logging"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
)

// Config is the full application configuration.
type Config struct {
	Interview InterviewConfig `yaml:"interview"`
	LLM       LLMConfig       `yaml:"llm"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// InterviewConfig bounds a single interview.
type InterviewConfig struct {
	MaxQuestions int           `yaml:"max_questions" validate:"gte=0,lte=100"`
	MaxDuration  time.Duration `yaml:"max_duration" validate:"gte=0"`
	WindowSize   int           `yaml:"window_size" validate:"gte=1,lte=10"`
	// MaxHistory caps the conversation turns sent to the model.
	MaxHistory  int     `yaml:"max_history" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider" validate:"oneof=anthropic openai gemini openrouter mock"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
}

// StoreConfig selects the session backend.
type StoreConfig struct {
	Backend string      `yaml:"backend" validate:"oneof=sqlite file redis memory"`
	DBPath  string      `yaml:"db_path"`
	Dir     string      `yaml:"dir"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0,lte=15"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	sc := session.DefaultConfig()
	iv := interviewer.DefaultOptions()
	lc := llm.DefaultConfig()
	return Config{
		Interview: InterviewConfig{
			MaxQuestions: sc.MaxQuestions,
			MaxDuration:  sc.MaxDuration,
			WindowSize:   sc.WindowSize,
			MaxHistory:   iv.MaxHistory,
			Temperature:  iv.Temperature,
		},
		LLM: LLMConfig{
			Provider:    lc.Provider,
			Timeout:     lc.Timeout,
			MaxAttempts: lc.Retry.MaxAttempts,
		},
		Store: StoreConfig{
			Backend: store.BackendSQLite,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: logging.FormatText},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/interviewiz/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if p := os.Getenv("INTERVIEWIZ_CONFIG"); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "interviewiz", "config.yaml"), nil
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path uses DefaultPath, where a missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == store.BackendRedis && c.Store.Redis.Addr == "" {
		return errors.New("invalid config: store.redis.addr is required for the redis backend")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "Config.store.backend"; drop the root type.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	if fe.Param() != "" {
		return fmt.Sprintf("%s must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s must satisfy %s (got %v)", field, fe.Tag(), fe.Value())
}

// applyEnv overlays INTERVIEWIZ_* variables.
func applyEnv(c *Config) error {
	var errs []error
	envInt(&c.Interview.MaxQuestions, "INTERVIEWIZ_MAX_QUESTIONS", &errs)
	envDuration(&c.Interview.MaxDuration, "INTERVIEWIZ_MAX_DURATION", &errs)

	envString(&c.LLM.Provider, "INTERVIEWIZ_LLM_PROVIDER")
	envString(&c.LLM.Model, "INTERVIEWIZ_LLM_MODEL")
	envDuration(&c.LLM.Timeout, "INTERVIEWIZ_LLM_TIMEOUT", &errs)

	envString(&c.Store.Backend, "INTERVIEWIZ_STORE")
	envString(&c.Store.DBPath, "INTERVIEWIZ_DB")
	envString(&c.Store.Dir, "INTERVIEWIZ_SESSION_DIR")
	envString(&c.Store.Redis.Addr, "INTERVIEWIZ_REDIS_ADDR")
	envString(&c.Store.Redis.Password, "INTERVIEWIZ_REDIS_PASSWORD")

	envString(&c.Server.Addr, "INTERVIEWIZ_ADDR")

	envString(&c.Log.Level, "INTERVIEWIZ_LOG_LEVEL")
	envString(&c.Log.Format, "INTERVIEWIZ_LOG_FORMAT")
	return errors.Join(errs...)
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func envDuration(dst *time.Duration, key string, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

// SessionConfig returns the engine limits.
func (c *Config) SessionConfig() session.Config {
	sc := session.DefaultConfig()
	sc.MaxQuestions = c.Interview.MaxQuestions
	sc.MaxDuration = c.Interview.MaxDuration
	sc.WindowSize = c.Interview.WindowSize
	return sc
}

// InterviewerOptions returns the conversational model settings.
func (c *Config) InterviewerOptions() interviewer.Options {
	opts := interviewer.DefaultOptions()
	opts.MaxHistory = c.Interview.MaxHistory
	opts.Temperature = c.Interview.Temperature
	opts.Timeout = c.LLM.Timeout
	return opts
}

// LLMConfig returns the provider configuration with API keys taken from
// the environment.
func (c *Config) LLMConfig() llm.Config {
	lc := llm.DefaultConfig()
	lc.Provider = c.LLM.Provider
	lc.Timeout = c.LLM.Timeout
	lc.Retry.MaxAttempts = c.LLM.MaxAttempts
	llm.ApplyEnv(&lc)
	llm.DiscoverKeys(&lc)

	if m := c.LLM.Model; m != "" {
		switch lc.Provider {
		case llm.ProviderAnthropic:
			lc.Anthropic.Model = m
		case llm.ProviderOpenAI:
			lc.OpenAI.Model = m
		case llm.ProviderGemini:
			lc.Gemini.Model = m
		case llm.ProviderOpenRouter:
			lc.OpenRouter.Model = m
		}
	}
	if u := c.LLM.BaseURL; u != "" {
		switch lc.Provider {
		case llm.ProviderOpenAI:
			lc.OpenAI.BaseURL = u
		case llm.ProviderOpenRouter:
			lc.OpenRouter.BaseURL = u
		}
	}
	return lc
}

// StoreOptions returns the backend selection.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Store.Backend,
		DBPath:  c.Store.DBPath,
		Dir:     c.Store.Dir,
		Redis: store.RedisOptions{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			TTL:      c.Store.Redis.TTL,
		},
	}
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
