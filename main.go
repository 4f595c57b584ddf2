package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nasti/booking-client/config"
	"github.com/nasti/booking-client/internal/app"
	"github.com/nasti/booking-client/internal/booking"
	"github.com/nasti/booking-client/internal/cli"
	"github.com/nasti/booking-client/internal/device"
	"github.com/nasti/booking-client/internal/session"
	"github.com/nasti/booking-client/internal/setup"
	"github.com/nasti/booking-client/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Try to load existing .env file
	config.LoadEnvFile()

	if len(args) > 0 && args[0] == "setup" {
		if !setup.IsInteractiveTerminal() {
			setup.FatalWithWait("setup needs an interactive terminal")
		}
		if !setup.RunWizard(os.Stdout) {
			return 1
		}
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		setup.FatalWithWait("invalid configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		setup.FatalWithWait("invalid log level %q", cfg.LogLevel)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			setup.FatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("store", cfg.Store).Msg("failed to open preference store")
		return 1
	}
	defer stores.close()

	installationID, err := device.InstallationID(stores.device)
	if err != nil {
		log.Error().Err(err).Msg("failed to load installation id")
		return 1
	}

	sess := session.New(stores.session)
	api := booking.NewClient(booking.ClientOpts{
		BaseURL:        cfg.APIURL,
		Tokens:         sess,
		InstallationID: installationID,
		Timeout:        cfg.Timeout,
		SuggestRate:    cfg.SuggestRate,
	})
	log.Debug().Str("apiURL", cfg.APIURL).Str("installationID", installationID).Msg("client initialized")

	deps := cli.Deps{App: app.New(sess, api), Out: os.Stdout}
	if setup.IsInteractiveTerminal() {
		deps.Prompt = setup.PromptPassword
	}

	err = cli.Run(ctx, args, deps)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		return 2
	case errors.Is(err, app.ErrLoginRequired):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

type prefStores struct {
	session storage.Prefs
	device  storage.Prefs
	close   func()
}

func openStores(ctx context.Context, cfg config.Config) (*prefStores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return &prefStores{
			session: storage.NewMemoryPrefs(),
			device:  storage.NewMemoryPrefs(),
			close:   func() {},
		}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: %w", storage.ErrRedisUnavailable, err)
		}
		return &prefStores{
			session: storage.NewRedisPrefs(client, config.AppName, storage.SessionNamespace),
			device:  storage.NewRedisPrefs(client, config.AppName, storage.DeviceNamespace),
			close:   func() { client.Close() },
		}, nil

	default:
		var key []byte
		if cfg.TokenKey != "" {
			var err error
			key, err = storage.DeriveKey(cfg.TokenKey)
			if err != nil {
				return nil, fmt.Errorf("failed to derive encryption key: %w", err)
			}
		}
		store, err := storage.NewSQLiteStore(cfg.DBPath, key)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("dbPath", cfg.DBPath).Bool("encrypted", key != nil).Msg("preference store initialized")
		return &prefStores{
			session: store.Prefs(storage.SessionNamespace),
			device:  store.Prefs(storage.DeviceNamespace),
			close:   func() { store.Close() },
		}, nil
	}
}
