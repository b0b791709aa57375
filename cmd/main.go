package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dosada05/challengehub-cli/auth"
	"github.com/Dosada05/challengehub-cli/commands"
	"github.com/Dosada05/challengehub-cli/config"
	"github.com/Dosada05/challengehub-cli/credstore"
	"github.com/Dosada05/challengehub-cli/gateway"
	"github.com/Dosada05/challengehub-cli/poller"
	"github.com/Dosada05/challengehub-cli/services"
	"github.com/Dosada05/challengehub-cli/wizard"
)

func main() {
	level := slog.LevelWarn
	if os.Getenv("CHALLENGEHUB_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		fail(logger, "failed to load configuration", err)
	}

	credPath := cfg.CredentialFile
	if credPath == "" {
		credPath, err = credstore.DefaultPath()
		if err != nil {
			fail(logger, "failed to resolve credential path", err)
		}
	}
	store, err := credstore.OpenFileStore(credPath)
	if err != nil {
		fail(logger, "failed to open credential store", err)
	}

	gw := gateway.New(gateway.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Store:   store,
		Logger:  logger,
	})

	app := &commands.App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Auth:        auth.NewService(gw, store, logger),
		Teams:       services.NewTeamService(gw, logger),
		Challenges:  services.NewChallengeService(gw, logger),
		Submissions: services.NewSubmissionService(gw, logger),
		Leaderboard: services.NewLeaderboardService(gw, logger),
		Wizard:      wizard.New(gw, store, logger),
		Poller:      poller.New(cfg.PollInterval, logger),
		Out:         os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := commands.NewRoot(app)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "error: session expired, run `hubctl login`")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func fail(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
