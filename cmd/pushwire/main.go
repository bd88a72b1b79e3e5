// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/pushwire/pushwire/lib/config"
	"github.com/pushwire/pushwire/lib/process"
	"github.com/pushwire/pushwire/lib/service"
	"github.com/pushwire/pushwire/lib/version"
	"github.com/pushwire/pushwire/notify"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var listenOverride string
	var debug bool

	flagSet := pflag.NewFlagSet("pushwire", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (secrets still come from the environment)")
	flagSet.StringVar(&listenOverride, "listen", "", "TCP listen address, overrides PUSHWIRE_LISTEN and the config file")
	flagSet.BoolVar(&debug, "debug", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("pushwire")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configuration is validated in full before anything listens: a
	// relay with no GITLAB_TOKEN or no credentials must refuse to
	// start instead of rejecting every delivery at runtime.
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer cfg.Close()

	if listenOverride != "" {
		cfg.ListenAddress = listenOverride
	}

	notifier := notify.NewNotifier(notify.NotifierConfig{
		Homeserver: cfg.MatrixServer,
		User:       cfg.MatrixUser,
		Password:   cfg.MatrixPassword,
		DeviceID:   cfg.MatrixDeviceID,
		RoomID:     cfg.MatrixRoomID,
		Logger:     logger,
	})

	webhookHandler := NewWebhookHandler(cfg.GitlabToken, notifier, logger)

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.ListenAddress,
		Handler: newMux(webhookHandler, notifier, logger),
		Logger:  logger,
	})

	httpDone := make(chan error, 1)
	go func() {
		httpDone <- httpServer.Serve(ctx)
	}()

	select {
	case <-httpServer.Ready():
		logger.Info("webhook listener ready",
			"address", httpServer.Addr().String(),
			"matrix_server", cfg.MatrixServer,
			"matrix_user", cfg.MatrixUser,
			"room_id", cfg.MatrixRoomID,
			"version", version.Short(),
		)
	case err := <-httpDone:
		// Bind failure: Serve returned before signalling readiness.
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	return <-httpDone
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `pushwire — GitLab push webhook to Matrix relay.

Listens for GitLab "Push Hook" deliveries, verifies the X-Gitlab-Token
shared secret, and posts a notice about the newest commit to a Matrix
room. Endpoints: POST / (webhook), GET /up (liveness).

Usage:
  pushwire [flags]

Flags:
%s
Environment:
  PUSHWIRE_LISTEN      TCP listen address (default %s)
  GITLAB_TOKEN         webhook shared secret (or GITLAB_TOKEN_FILE)
  MATRIX_SERVER        homeserver base URL
  MATRIX_USER          relay account user ID (@local:server)
  MATRIX_PASSWORD      relay account password (or MATRIX_PASSWORD_FILE)
  MATRIX_DEVICE_ID     device ID reused across logins (optional)
  MATRIX_ROOM_ID       target room ID (!opaque:server)
`, flagSet.FlagUsages(), config.DefaultListenAddress)
}
