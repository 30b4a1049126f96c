// Package clientio holds the bits cmd/client's REPL shares with tests:
// turning a typed line into a RESP command array, and rendering a
// decoded reply back to text, the way the Rust original's client.rs
// split stdin on whitespace and recursively rendered display_data.
package clientio

import (
	"strconv"
	"strings"

	"github.com/akashmaji946/respkv/internal/resp"
)

// Prompt is printed before reading each line, matching the original
// client's command_pronpt().
const Prompt = "> "

// EncodeRequest turns a whitespace-split input line into the RESP Array
// of Bulk strings a command request is. It returns false for a blank
// line, which the REPL should simply re-prompt on.
func EncodeRequest(line string) (resp.Value, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return resp.Value{}, false
	}
	items := make([]resp.Value, len(fields))
	for i, f := range fields {
		items[i] = resp.BulkString(f)
	}
	return resp.Arr(items...), true
}

// RenderReply formats a decoded reply the way the original client's
// display_data did: SimpleString and Bulk print their bytes as UTF-8
// verbatim, Error prints its payload, Integer its decimal form, and
// Array recursively renders each element on its own line.
func RenderReply(v resp.Value) string {
	return renderAt(v, 0)
}

func renderAt(v resp.Value, depth int) string {
	switch v.Kind {
	case resp.SimpleString:
		return string(v.Str)
	case resp.Error:
		return string(v.Msg)
	case resp.Integer:
		return strconv.FormatInt(v.Int, 10)
	case resp.Bulk:
		return string(v.Bulk)
	case resp.NullBulk, resp.NullArray:
		return "(nil)"
	case resp.Array:
		if len(v.Items) == 0 {
			return ""
		}
		var b strings.Builder
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(renderAt(item, depth+1))
		}
		return b.String()
	default:
		return ""
	}
}
