// Package command implements the dispatcher: a name-to-handler registry
// consuming a resp.Cursor over the already-decoded request array and
// operating on a store.Store, the way the teacher's handlers.go and
// Handlers map did, generalized to this server's command set.
package command

import (
	"github.com/akashmaji946/respkv/internal/resp"
	"github.com/akashmaji946/respkv/internal/store"
)

// Handler executes one command against args (already positioned past the
// command name) and s, producing the reply Value.
type Handler func(args *resp.Cursor, s *store.Store) resp.Value

// Registry is the command-name lookup table.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a Registry with every command this server supports
// registered.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.register("GET", handleGet)
	r.register("SET", handleSet)
	r.register("APPEND", handleAppend)
	r.register("DEL", handleDel)
	r.register("EXISTS", handleExists)
	r.register("TTL", handleTTL)
	r.register("PTTL", handlePTTL)
	r.register("EXPIRE", handleExpire)
	r.register("PEXPIRE", handlePExpire)
	r.register("PERSIST", handlePersist)
	r.register("PING", handlePing)
	r.register("GETEX", handleGetEx)
	return r
}

func (r *Registry) register(name string, h Handler) {
	r.handlers[name] = h
}

// Dispatch decodes the command name from req (a top-level RESP Array)
// and runs the matching handler. Any failure to even identify a command
// name — req isn't an array, or its first element isn't string-like —
// is itself reported as a command error reply rather than a protocol
// error: the frame was well-formed, it just doesn't name a command.
func (r *Registry) Dispatch(req resp.Value, s *store.Store) resp.Value {
	cur, ok := resp.NewCursor(req)
	if !ok {
		return resp.Err("invalid request: expected a non-empty array")
	}
	name, _, err := cur.NextStringUpper()
	if err != nil {
		return resp.Err("invalid request: command name must be a bulk string")
	}

	h, found := r.handlers[name]
	if !found {
		return resp.Errf("Unknown or disabled command '%s'", name)
	}
	return h(cur, s)
}
