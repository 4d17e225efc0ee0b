// Command helio is the interactive search terminal. It connects a streaming
// search session to a Bubble Tea TUI; logs go to a file because the TUI owns
// the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/helio-search/helio"
	"github.com/helio-search/helio/internal/config"
	logpkg "github.com/helio-search/helio/internal/logger"
	"github.com/helio-search/helio/internal/tui"
	"github.com/helio-search/helio/internal/version"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	logPath := flag.String("log", "helio.log", "log file path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("helio %s (%s)\n", version.Version, version.Commit)
		return
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewFileLogger(*logPath, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting helio",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	opts := []helio.Option{
		helio.WithBaseURL(cfg.Backend.BaseURL),
		helio.WithAPIKey(cfg.Backend.APIKey),
		helio.WithLogger(logger),
	}
	if len(cfg.Database.Addrs) > 0 {
		opts = append(opts,
			helio.WithRedis(cfg.Database.Addrs[0], cfg.Database.Password),
			helio.WithUsageLimits(cfg.Usage.DailySearchLimit, cfg.Usage.MonthlySearchLimit),
		)
	}

	client, err := helio.New(context.Background(), opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create client:", err)
		os.Exit(1)
	}
	defer client.Close()

	p := tea.NewProgram(tui.New(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI exited with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
