package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lumen-cli/internal/config"
	"lumen-cli/internal/events"
	"lumen-cli/internal/history"
	"lumen-cli/internal/logger"
	"lumen-cli/internal/session"
	"lumen-cli/internal/term"
	"lumen-cli/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger.Configure()
	log := logger.Named("main")

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = logger.DefaultLogPath
	}
	if closer, path, err := logger.SetupFile(logPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer closer.Close()
		log.Infof("logging to %s", path)
	}

	queue := events.NewQueue(64)
	defer queue.Close()
	gateway := newDemoGateway(queue)
	stream := queue.Subscribe()

	adapter, err := term.Open(os.Stdin, os.Stdout)
	if errors.Is(err, term.ErrNotTTY) {
		log.Info("no tty detected, using plain mode")
		return runPlain(cfg, gateway, stream)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "open terminal: %v\n", err)
		return 1
	}
	if err := adapter.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "start terminal: %v\n", err)
		return 1
	}
	defer adapter.Close()
	adapter.SetWindowTitle(cfg.WindowTitle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	prompts, err := history.NewDefault()
	if err != nil {
		log.Warnf("prompt history unavailable: %v", err)
	}
	sessions, err := session.NewDefault()
	if err != nil {
		log.Warnf("session store unavailable: %v", err)
	}

	app := tui.New(cfg, adapter, gateway, stream, tui.Options{
		Prompts:  prompts,
		Sessions: sessions,
	})
	if prompts != nil {
		if texts, err := prompts.LoadTexts(); err != nil {
			log.Warnf("load prompt history: %v", err)
		} else {
			app.Editor().SetHistory(texts)
		}
	}
	if os.Getenv("LUMEN_RESUME") != "" && sessions != nil {
		snap, err := sessions.Latest()
		if err != nil {
			log.Warnf("resume: no saved session: %v", err)
		} else {
			app.Resume(snap)
		}
	}
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warnf("session ended with error: %v", err)
		return 1
	}
	return 0
}
