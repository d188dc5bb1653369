// Command server serves bit generator sessions over gRPC. It is configured
// from the environment (BITGEN_*) and an optional .env file.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtding233/bitgen/internal/config"
	"github.com/xtding233/bitgen/internal/logging"
	"github.com/xtding233/bitgen/internal/server"
)

func main() {
	dotenv := flag.String("env", ".env", "dotenv file loaded before the environment is parsed")
	flag.Parse()

	cfg, err := config.LoadServerEnv(*dotenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(cfg.ConfigDir)
	if names, err := loader.Names(); err != nil {
		log.Warn().Err(err).Msg("list profiles")
	} else {
		log.Info().Str("dir", loader.Paths().ProfileDir()).Strs("profiles", names).Msg("profiles found")
	}

	// hot reload: any profile change drops the merged cache
	if cfg.WatchInterval > 0 {
		w := config.NewListWatcher(loader.Files, cfg.WatchInterval, func(path string) {
			loader.Invalidate()
			log.Info().Str("path", path).Msg("profile changed, cache invalidated")
		})
		w.Start()
		defer w.Stop()
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Addr).Msg("listen")
		stop()
		os.Exit(1)
	}

	svc := server.NewService(server.Options{Loader: loader, Logger: &log, MaxSessions: cfg.MaxSessions})
	if err := server.New(svc, log).Serve(ctx, lis); err != nil {
		log.Error().Err(err).Msg("serve")
		stop()
		os.Exit(1)
	}
}
