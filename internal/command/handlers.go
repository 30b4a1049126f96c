package command

import (
	"strings"
	"time"

	"github.com/akashmaji946/respkv/internal/resp"
	"github.com/akashmaji946/respkv/internal/store"
)

// errWrongArgs is the fixed arity-error text §4.3 specifies, deliberately
// not parameterized by command name.
func errWrongArgs() resp.Value {
	return resp.Err("wrong number of arguments for command")
}

func errSyntax() resp.Value { return resp.Err("syntax error") }

func errNotInteger() resp.Value { return resp.Err("value is not an integer or out of range") }

func errInvalidExpire(cmd string) resp.Value {
	return resp.Errf("invalid expire time in '%s' command", strings.ToLower(cmd))
}

// remainingKeys drains every remaining cursor element as a key, failing
// the whole command if any element is not string-like.
func remainingKeys(args *resp.Cursor) ([]string, bool) {
	keys := make([]string, 0, args.Len())
	for {
		b, ok, err := args.NextBulkBytes()
		if err != nil {
			return nil, false
		}
		if !ok {
			return keys, true
		}
		keys = append(keys, string(b))
	}
}

func handleGet(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil {
		return errSyntax()
	}
	if !ok {
		return errWrongArgs()
	}
	if args.Len() != 0 {
		return errWrongArgs()
	}
	v, found := s.Get(string(key))
	if !found {
		return resp.Null()
	}
	return resp.BulkBytes(v)
}

func handleSet(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	value, ok, err := args.NextBulkBytes()
	if err != nil {
		return errSyntax()
	}
	if !ok {
		return errWrongArgs()
	}

	var (
		cond       = store.SetAlways
		haveCond   bool
		keepTTL    bool
		getFlag    bool
		haveGet    bool
		haveExpire bool
		ttl        time.Duration
	)

	for {
		tok, ok, err := args.NextStringUpper()
		if err != nil {
			return errSyntax()
		}
		if !ok {
			break
		}
		switch tok {
		case "NX", "XX":
			if haveCond {
				return errSyntax()
			}
			haveCond = true
			if tok == "NX" {
				cond = store.SetIfNotExists
			} else {
				cond = store.SetIfExists
			}
		case "GET":
			if haveGet {
				return errSyntax()
			}
			haveGet = true
			getFlag = true
		case "KEEPTTL":
			if haveExpire || keepTTL {
				return errSyntax()
			}
			keepTTL = true
		case "EX", "PX":
			if haveExpire || keepTTL {
				return errSyntax()
			}
			n, ok, err := args.NextInt64()
			if err != nil {
				return errNotInteger()
			}
			if !ok {
				return errSyntax()
			}
			if n <= 0 {
				return errInvalidExpire("set")
			}
			haveExpire = true
			if tok == "EX" {
				ttl = time.Duration(n) * time.Second
			} else {
				ttl = time.Duration(n) * time.Millisecond
			}
		default:
			return errSyntax()
		}
	}

	var ttlPtr *time.Duration
	if haveExpire {
		ttlPtr = &ttl
	}

	old, hadOld, applied := s.Set(string(key), value, cond, ttlPtr, keepTTL, getFlag)
	if getFlag {
		if hadOld {
			return resp.BulkBytes(old)
		}
		return resp.Null()
	}
	if applied {
		return resp.OK()
	}
	return resp.Null()
}

func handleAppend(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	value, ok, err := args.NextBulkBytes()
	if err != nil {
		return errSyntax()
	}
	if !ok {
		return errWrongArgs()
	}
	if args.Len() != 0 {
		return errWrongArgs()
	}
	return resp.Int(int64(s.Append(string(key), value)))
}

func handleDel(args *resp.Cursor, s *store.Store) resp.Value {
	if args.Len() == 0 {
		return errWrongArgs()
	}
	keys, ok := remainingKeys(args)
	if !ok {
		return errSyntax()
	}
	return resp.Int(int64(s.Del(keys...)))
}

func handleExists(args *resp.Cursor, s *store.Store) resp.Value {
	if args.Len() == 0 {
		return errWrongArgs()
	}
	keys, ok := remainingKeys(args)
	if !ok {
		return errSyntax()
	}
	return resp.Int(int64(s.ExistsCount(keys...)))
}

func handleTTL(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	if args.Len() != 0 {
		return errWrongArgs()
	}
	d, status := s.TTL(string(key))
	switch status {
	case store.TTLNoKey:
		return resp.Int(-2)
	case store.TTLNoExpire:
		return resp.Int(-1)
	default:
		return resp.Int(int64(d.Round(time.Second) / time.Second))
	}
}

func handlePTTL(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	if args.Len() != 0 {
		return errWrongArgs()
	}
	d, status := s.TTL(string(key))
	switch status {
	case store.TTLNoKey:
		return resp.Int(-2)
	case store.TTLNoExpire:
		return resp.Int(-1)
	default:
		return resp.Int(int64(d.Round(time.Millisecond) / time.Millisecond))
	}
}

func parseExpireCondition(args *resp.Cursor) (store.ExpireCondition, bool, resp.Value) {
	tok, ok, err := args.NextStringUpper()
	if err != nil {
		return 0, false, errSyntax()
	}
	if !ok {
		return store.ExpireAlways, false, resp.Value{}
	}
	switch tok {
	case "NX":
		return store.ExpireIfNoTTL, false, resp.Value{}
	case "XX":
		return store.ExpireIfHasTTL, false, resp.Value{}
	case "GT":
		return store.ExpireIfGreater, false, resp.Value{}
	case "LT":
		return store.ExpireIfLess, false, resp.Value{}
	default:
		return 0, true, errSyntax()
	}
}

func handleExpire(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	seconds, ok, err := args.NextInt64()
	if err != nil {
		return errNotInteger()
	}
	if !ok {
		return errWrongArgs()
	}
	cond, bad, errVal := parseExpireCondition(args)
	if bad {
		return errVal
	}
	if args.Len() != 0 {
		return errSyntax()
	}
	at := time.Now().Add(time.Duration(seconds) * time.Second)
	exists, applied := s.Expire(string(key), at, cond)
	if !exists || !applied {
		return resp.Int(0)
	}
	return resp.Int(1)
}

func handlePExpire(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	millis, ok, err := args.NextInt64()
	if err != nil {
		return errNotInteger()
	}
	if !ok {
		return errWrongArgs()
	}
	cond, bad, errVal := parseExpireCondition(args)
	if bad {
		return errVal
	}
	if args.Len() != 0 {
		return errSyntax()
	}
	at := time.Now().Add(time.Duration(millis) * time.Millisecond)
	exists, applied := s.Expire(string(key), at, cond)
	if !exists || !applied {
		return resp.Int(0)
	}
	return resp.Int(1)
}

func handlePersist(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}
	if args.Len() != 0 {
		return errWrongArgs()
	}
	if s.Persist(string(key)) {
		return resp.Int(1)
	}
	return resp.Int(0)
}

func handlePing(args *resp.Cursor, s *store.Store) resp.Value {
	msg, ok, err := args.NextBulkBytes()
	if err != nil {
		return errSyntax()
	}
	if !ok {
		return resp.Pong()
	}
	if args.Len() != 0 {
		return errWrongArgs()
	}
	return resp.BulkBytes(msg)
}

func handleGetEx(args *resp.Cursor, s *store.Store) resp.Value {
	key, ok, err := args.NextBulkBytes()
	if err != nil || !ok {
		return errWrongArgs()
	}

	var opts store.GetExOptions
	var haveOption bool

	for {
		tok, ok, err := args.NextStringUpper()
		if err != nil {
			return errSyntax()
		}
		if !ok {
			break
		}
		if haveOption {
			return errSyntax()
		}
		switch tok {
		case "PERSIST":
			haveOption = true
			opts.Persist = true
		case "EX", "PX":
			n, ok, err := args.NextInt64()
			if err != nil {
				return errNotInteger()
			}
			if !ok {
				return errSyntax()
			}
			if n <= 0 {
				return errInvalidExpire("getex")
			}
			haveOption = true
			var at time.Time
			if tok == "EX" {
				at = time.Now().Add(time.Duration(n) * time.Second)
			} else {
				at = time.Now().Add(time.Duration(n) * time.Millisecond)
			}
			opts.SetExpireAt = &at
		default:
			return errSyntax()
		}
	}

	v, found := s.GetEx(string(key), opts)
	if !found {
		return resp.Null()
	}
	return resp.BulkBytes(v)
}
