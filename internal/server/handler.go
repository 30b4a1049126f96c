package server

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/akashmaji946/respkv/internal/command"
	"github.com/akashmaji946/respkv/internal/logging"
	"github.com/akashmaji946/respkv/internal/metrics"
	"github.com/akashmaji946/respkv/internal/resp"
	"github.com/akashmaji946/respkv/internal/store"
)

// handleConn runs the decode-dispatch-encode loop for one connection
// until the peer disconnects, a protocol error forces a close, or ctx is
// canceled out from under a blocked read, the three exits the Rust
// original's Handler::run also distinguished.
func handleConn(ctx context.Context, conn net.Conn, reg *command.Registry, s *store.Store, log *logging.Logger, m *metrics.Registry) {
	defer conn.Close()

	unblock := make(chan struct{})
	defer close(unblock)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-unblock:
		}
	}()

	dec := resp.NewDecoder(conn)
	enc := resp.NewEncoder(conn)

	for {
		req, err := dec.Decode()
		if err != nil {
			if err == resp.ErrConnectionClosed {
				return
			}
			if ctx.Err() != nil {
				return // shutdown forced the read to unblock
			}
			log.Warn("protocol error, closing connection",
				zap.Error(err), zap.String("remote", conn.RemoteAddr().String()))
			_ = enc.Encode(resp.Err("Protocol error"))
			return
		}

		m.CommandsExecuted.Inc()
		reply := reg.Dispatch(req, s)
		if err := enc.Encode(reply); err != nil {
			if ctx.Err() == nil {
				log.Warn("write failed, closing connection",
					zap.Error(err), zap.String("remote", conn.RemoteAddr().String()))
			}
			return
		}
	}
}
