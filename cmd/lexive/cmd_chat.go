package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lexive/cmd/lexive/chat"
	"lexive/internal/watch"
)

// chatCmd starts the interactive session
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long: `Opens a terminal chat where every line is answered the way the bot
answers a direct message. Content files are watched and reloaded on change
when watch.enabled is set in the configuration.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	d, cleanup, err := newDispatcher(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(chat.New(d, chat.Options{Guild: guildID, Title: cfg.Name}),
		tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Watch.Enabled {
		w, err := watch.New(d.WatchDirs(), cfg.GetDebounce(), func(ctx context.Context) error {
			err := d.Reload(ctx)
			p.Send(chat.ReloadedMsg{Err: err})
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	logger.Info("Starting chat", zap.Int("guild", guildID))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}
