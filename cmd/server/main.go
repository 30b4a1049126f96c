// Command server runs the respkv listener on 0.0.0.0:6379. It takes no
// flags: address and port are fixed, matching the Rust original's
// bin/server.rs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/akashmaji946/respkv/internal/command"
	"github.com/akashmaji946/respkv/internal/logging"
	"github.com/akashmaji946/respkv/internal/metrics"
	"github.com/akashmaji946/respkv/internal/server"
	"github.com/akashmaji946/respkv/internal/store"
)

const listenAddr = "0.0.0.0:6379"

func main() {
	log := logging.New()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	s := store.New()
	reg := metrics.New()
	s.OnExpire(func(n int) { reg.ExpiredKeys.Add(float64(n)) })

	sv := server.New(listenAddr, s, command.NewRegistry(), log, reg)

	if err := sv.ListenAndServe(ctx); err != nil {
		log.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
