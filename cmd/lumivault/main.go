package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/fotkaminsk-creator/LumiVault/internal/command"
	"github.com/fotkaminsk-creator/LumiVault/internal/config"
	"github.com/fotkaminsk-creator/LumiVault/internal/gemini"
	"github.com/fotkaminsk-creator/LumiVault/internal/scheduler"
	"github.com/fotkaminsk-creator/LumiVault/internal/secrets"
	"github.com/fotkaminsk-creator/LumiVault/internal/state"
	"github.com/fotkaminsk-creator/LumiVault/internal/tui"
	"github.com/fotkaminsk-creator/LumiVault/internal/voice"
)

const voicePersona = "You are Lumi, a cheerful vault spirit who helps the user " +
	"manage their budget and save for their dream. Keep spoken replies short, " +
	"warm, and upbeat."

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logger := openLogger(cfg.UI.LogPath)

	apiKey := resolveAPIKey(cfg)
	if apiKey == "" {
		logger.Warn().Str("env", cfg.Gemini.APIKeyEnv).Msg("no API key; Lumi will run offline")
	}

	client := gemini.NewClient("", apiKey, cfg.Gemini.Model, logger)

	store := state.NewStore(state.Seed(), client.FetchAdvice, logger)
	defer store.Close()

	router := command.NewRouter(store, logger)

	var session *voice.Session
	if apiKey != "" {
		dial := func(ctx context.Context) (voice.Transport, error) {
			return voice.DialLive(ctx, voice.LiveConfig{
				Host:    cfg.Gemini.LiveHost,
				APIKey:  apiKey,
				Model:   cfg.Gemini.LiveModel,
				Voice:   cfg.Voice.Name,
				Persona: voicePersona,
			}, logger)
		}
		mic := voice.NewMicCapture(cfg.Voice.InputRate, cfg.Voice.FrameSize)
		speaker := voice.NewSpeaker(cfg.Voice.OutputRate, cfg.Voice.FrameSize)
		session = voice.NewSession(dial, mic, speaker, logger)
		defer session.Stop()
	}

	sched := scheduler.NewScheduler(ctx, store, logger)
	if err := sched.RegisterAll(scheduler.AdviceSpec, scheduler.WindDownSpec); err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: %v\n", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	p := tea.NewProgram(tui.New(ctx, cfg, store, client, router, session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func openLogger(path string) zerolog.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(f).With().Timestamp().Logger()
}

func resolveAPIKey(cfg config.Config) string {
	env := strings.TrimSpace(cfg.Gemini.APIKeyEnv)
	if env == "" {
		env = "GEMINI_API_KEY"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if s, err := secrets.Open(); err == nil {
		if k, err := s.Get("gemini"); err == nil {
			return k
		}
	}
	return strings.TrimSpace(cfg.Gemini.APIKey)
}
