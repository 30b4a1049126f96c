// Package server implements the listener/supervisor and the
// per-connection handler: accept loop, context-cancellation shutdown
// broadcast, and a sync.WaitGroup completion token standing in for the
// Rust original's drop-a-sender-and-wait-for-EOF channel pattern.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/akashmaji946/respkv/internal/command"
	"github.com/akashmaji946/respkv/internal/diagnostics"
	"github.com/akashmaji946/respkv/internal/logging"
	"github.com/akashmaji946/respkv/internal/metrics"
	"github.com/akashmaji946/respkv/internal/store"
)

// Supervisor owns the listening socket and every background goroutine
// (reaper, diagnostics, one per connection) that must quiesce before
// shutdown is considered complete.
type Supervisor struct {
	Addr     string
	Store    *store.Store
	Registry *command.Registry
	Log      *logging.Logger
	Metrics  *metrics.Registry
}

// New builds a Supervisor bound to addr.
func New(addr string, s *store.Store, reg *command.Registry, log *logging.Logger, m *metrics.Registry) *Supervisor {
	return &Supervisor{Addr: addr, Store: s, Registry: reg, Log: log, Metrics: m}
}

// ListenAndServe binds Addr and serves until ctx is canceled. Cancellation
// is the shutdown broadcast: it closes the listener (no more accepts),
// closes every connection blocked in a read, and stops the reaper and
// diagnostics loops. ListenAndServe returns only once every one of those
// goroutines has exited, equivalent to the Rust original waiting on
// shutdown_complete_rx until every sender clone has dropped.
func (sv *Supervisor) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", sv.Addr)
	if err != nil {
		return err
	}
	return sv.Serve(ctx, ln)
}

// Serve runs the accept loop against an already-bound listener. Split
// out from ListenAndServe so tests can bind to an ephemeral port
// ("127.0.0.1:0") and read back the assigned address before serving.
func (sv *Supervisor) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		store.RunReaper(ctx, sv.Store)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		diagnostics.Run(ctx, sv.Log, sv.Metrics, sv.Store)
	}()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	sv.Log.Info("listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			sv.Log.Error("accept failed", zap.Error(err))
			continue
		}

		sv.Metrics.ConnectionsReceived.Inc()
		wg.Add(1)
		go func() {
			defer wg.Done()
			handleConn(ctx, conn, sv.Registry, sv.Store, sv.Log, sv.Metrics)
		}()
	}

	sv.Log.Info("shutdown: waiting for in-flight connections and background loops to quiesce")
	wg.Wait()
	sv.Log.Info("shutdown complete")
	return nil
}
