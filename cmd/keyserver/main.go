package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/ssh-key-server/api/keyhandler"
	"github.com/ruteri/ssh-key-server/cmd/flags"
	"github.com/ruteri/ssh-key-server/cryptoutils"
	"github.com/ruteri/ssh-key-server/httpserver"
	"github.com/ruteri/ssh-key-server/storage"
	"github.com/urfave/cli/v2"
)

var cliFlags = append([]cli.Flag{
	flags.KeyDirFlag,
	flags.ConfigDirFlag,
	flags.ListenAddrFlag,
	flags.LogServiceFlagFn("keyserver"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "keyserver",
		Usage: "Serve SSH public keys organized by host and user",
		Flags: cliFlags,
		Action: func(cCtx *cli.Context) error {
			settings, err := flags.LoadSettings(cCtx)
			if err != nil {
				return fmt.Errorf("could not load configuration: %w", err)
			}

			logger := flags.NewLogger(settings.Log, cCtx.Bool(flags.LogUidFlag.Name))

			if err := storage.CheckKeyDir(settings.KeyDir); err != nil {
				logger.Error("Invalid key directory", "keyDir", settings.KeyDir, "err", err)
				return err
			}

			store, err := storage.NewFileKeyStore(settings.KeyDir, cryptoutils.NewMagicDetector(), logger)
			if err != nil {
				logger.Error("Failed to load key store", "err", err)
				return err
			}

			handler := keyhandler.NewHandler(store, logger)

			server, err := httpserver.New(flags.ConfigureServer(settings, logger), handler, store)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server", "keyDir", store.BaseDir())
			server.RunInBackground()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

			logger.Info("Server is running, press Ctrl+C to stop")
			for s := range sig {
				if s == syscall.SIGHUP {
					logger.Info("Reload signal received")
					if err := server.Reload(context.Background()); err != nil {
						logger.Error("Reload failed", "err", err)
					}
					continue
				}
				break
			}
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
