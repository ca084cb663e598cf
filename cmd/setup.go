package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abhisek/interviewiz/internal/config"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/logging"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
)

// appRuntime holds everything a command needs to run interviews.
type appRuntime struct {
	backend  *store.Backend
	engine   *session.Engine
	provider llm.Provider
	// extractor is set even without a provider; it then uses heuristics.
	extractor *profile.Extractor
}

// runtimeOptions controls which parts openRuntime builds.
type runtimeOptions struct {
	// RequireLLM fails when no provider can be built. Otherwise the
	// runtime is returned without an interviewer.
	RequireLLM bool
	// NoLLM skips the provider for commands that only read sessions.
	NoLLM  bool
	Logger *slog.Logger
}

func newLogger(c *config.Config) (*slog.Logger, error) {
	return logging.New(c.LoggingConfig())
}

// fileLogger appends to path, for the TUI where stderr is the screen.
func fileLogger(c *config.Config, path string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	lc := c.LoggingConfig()
	lc.Output = f
	l, err := logging.New(lc)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return l, f, nil
}

// openRuntime opens the session backend and wires the engine to the
// configured model.
func openRuntime(ctx context.Context, c *config.Config, opts runtimeOptions) (*appRuntime, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	backend, err := store.OpenBackend(ctx, c.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rt := &appRuntime{backend: backend}
	engineOpts := session.Options{
		Config: c.SessionConfig(),
		Store:  backend.Sessions,
		Events: backend.Events,
		Logger: log,
	}

	if opts.NoLLM {
		rt.extractor = profile.NewExtractor(nil, log)
		rt.engine = session.NewEngine(engineOpts)
		return rt, nil
	}

	provider, err := llm.NewProvider(ctx, c.LLMConfig(), backend.Events, log)
	switch {
	case err == nil:
		rt.provider = provider
		engineOpts.Interviewer = interviewer.New(provider, c.InterviewerOptions())
	case opts.RequireLLM:
		backend.Close()
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	default:
		log.Warn("LLM provider not configured", slog.Any("error", err))
	}

	rt.extractor = profile.NewExtractor(rt.provider, log)
	rt.engine = session.NewEngine(engineOpts)
	return rt, nil
}

func (rt *appRuntime) Close() error {
	return rt.backend.Close()
}

// readProfile extracts a candidate profile from a resume file. An empty
// path yields no profile.
func (rt *appRuntime) readProfile(ctx context.Context, path string) (*profile.Profile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	return rt.extractor.Extract(ctx, string(data))
}
