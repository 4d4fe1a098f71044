package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"brainbox/internal/config"
	"brainbox/internal/repository"
	"brainbox/internal/responder"
	"brainbox/internal/usecase"
)

const flushTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("brainbox exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only warnings reach stderr; stdout carries the conversation.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	kv, err := repository.OpenSQLiteKV(cfg.DBPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	store, err := repository.NewTranscriptStore(kv, cfg.StorageKey, logger)
	if err != nil {
		return err
	}
	chat, err := usecase.NewChatService(responder.New(), store, usecase.Options{
		ThinkingDelay:    cfg.ThinkingDelay,
		MaxMessageLength: cfg.MaxMessageLength,
		Logger:           logger,
	})
	if err != nil {
		return err
	}
	if err := chat.Restore(ctx); err != nil {
		return err
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	historyFile := filepath.Join(filepath.Dir(cfg.DBPath), "input_history")
	loadHistory(line, historyFile)

	sh := newShell(chat, os.Stdout)
	sh.banner()
	if n := len(chat.Transcript().Messages); n > 0 {
		fmt.Fprintln(os.Stdout, infoStyle.Render(fmt.Sprintf("Restored %d messages. /history shows them.", n)))
	}

	for ctx.Err() == nil {
		input, err := line.Prompt("you> ")
		if err != nil {
			// liner.ErrPromptAborted on Ctrl+C, io.EOF on Ctrl+D.
			fmt.Println()
			break
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !sh.handle(ctx, input) {
			break
		}
	}

	saveHistory(line, historyFile)
	line.Close()

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := chat.Flush(flushCtx); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

func saveHistory(line *liner.State, path string) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
