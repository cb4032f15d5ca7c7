package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0xcro3dile/docqa-go/internal/bootstrap"
	"github.com/0xcro3dile/docqa-go/internal/config"
	httpserver "github.com/0xcro3dile/docqa-go/internal/infrastructure/http"
	"github.com/0xcro3dile/docqa-go/internal/infrastructure/tui"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const usage = `Usage:
  docqa                     interactive terminal session
  docqa serve               browser session on DOCQA_LISTEN_ADDR
  docqa ask [-file PATH] QUESTION
                            upload (optional), ask once and print the transcript`

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := "tui"
	var args []string
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	var err error
	switch cmd {
	case "tui":
		err = runTUI(ctx, cfg)
	case "serve":
		err = runServe(ctx, cfg)
	case "ask":
		err = runAsk(ctx, cfg, args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI owns the terminal, so logs go to the file only.
func runTUI(ctx context.Context, cfg *config.Config) error {
	container := bootstrap.NewContainer(cfg, logger.NewIsolatedLogger(cfg.App.LogFilePath))
	defer container.Close()

	container.CheckBackend(ctx)
	if err := container.StartAutoUpload(ctx); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.Watch.Dir, err)
	}

	updates, err := container.Bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	m := tui.NewModel(ctx, container.Session, container.Loader, updates)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	container := bootstrap.NewContainer(cfg, logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction()))
	defer container.Close()

	if !container.CheckBackend(ctx) {
		log.Printf("[WARN] backend at %s is not healthy yet", cfg.Backend.BaseURL)
	}
	if err := container.StartAutoUpload(ctx); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.Watch.Dir, err)
	}

	srv := httpserver.NewServer(
		container.Session,
		container.Bus,
		container.Backend,
		container.Logger,
		cfg.App.ListenAddr,
		cfg.App.CorsAllowedOrigins,
	)
	log.Printf("[INFO] Open http://%s in your browser", cfg.App.ListenAddr)
	return srv.Start(ctx)
}

func runAsk(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	file := fs.String("file", "", "document to upload before asking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 && *file == "" {
		return fmt.Errorf("nothing to do\n\n%s", usage)
	}

	container := bootstrap.NewContainer(cfg, logger.NewIsolatedLogger(cfg.App.LogFilePath))
	defer container.Close()

	snap, err := ask(ctx, container.Session, container.Loader, *file, joinArgs(fs.Args()))
	if err != nil {
		return err
	}
	printTranscript(os.Stdout, snap)
	return nil
}
