package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/infrastructure/tui"
)

// session is what the one-shot mode drives.
type session interface {
	Snapshot() entities.Snapshot
	SubmitQuestion(ctx context.Context, text string) (<-chan struct{}, error)
	SubmitUpload(ctx context.Context, file entities.FileUpload) (<-chan struct{}, error)
}

// ask optionally uploads path, then asks question, waiting for each to settle.
// Either may be empty.
func ask(ctx context.Context, s session, loader ports.FileLoader, path, question string) (entities.Snapshot, error) {
	if path != "" {
		file, err := loader.Load(ctx, path)
		if err != nil {
			return entities.Snapshot{}, err
		}
		done, err := s.SubmitUpload(ctx, *file)
		if err != nil {
			return entities.Snapshot{}, err
		}
		if err := waitDone(ctx, done); err != nil {
			return entities.Snapshot{}, err
		}
	}

	if strings.TrimSpace(question) != "" {
		done, err := s.SubmitQuestion(ctx, question)
		if err != nil {
			return entities.Snapshot{}, err
		}
		if err := waitDone(ctx, done); err != nil {
			return entities.Snapshot{}, err
		}
	}
	return s.Snapshot(), nil
}

func waitDone(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgYellow, color.Bold)
	systemColor    = color.New(color.FgGreen)
	errorColor     = color.New(color.FgRed, color.Bold)
	matchColor     = color.New(color.FgGreen, color.Bold)
	dimColor       = color.New(color.Faint)
)

// printTranscript writes every message with all sources expanded.
func printTranscript(w io.Writer, snap entities.Snapshot) {
	for _, e := range snap.Entries {
		msg := e.Message
		switch msg.Kind {
		case entities.KindUser:
			userColor.Fprint(w, "You: ")
			fmt.Fprintln(w, msg.Content)
		case entities.KindAssistant:
			assistantColor.Fprint(w, "Assistant: ")
			fmt.Fprintln(w, msg.Content)
		case entities.KindSystem:
			systemColor.Fprintln(w, msg.Content)
		case entities.KindError:
			errorColor.Fprintln(w, msg.Content)
		default:
			fmt.Fprintln(w, msg.Content)
		}

		if msg.HasSources() {
			dimColor.Fprintf(w, "  %d Sources\n", len(msg.Sources))
			for i, src := range msg.Sources {
				matchColor.Fprintf(w, "  [%d] %d%% match\n", i+1, src.DisplayPercent())
				fmt.Fprintf(w, "      %s\n", src.Excerpt(tui.ExcerptRunes))
			}
		}
	}
}
