// Package resp implements the wire framing used by the server and the
// client: length-prefixed bulk strings, arrays, simple strings, errors,
// integers, and the explicit null markers used in place of Go's nil.
//
// The grammar and the byte-exactness requirement are taken from the
// RESP spec Redis clients speak; see https://redis.io/topics/protocol.
package resp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	SimpleString Kind = iota
	Error
	Integer
	Bulk
	NullBulk
	Array
	NullArray
)

// Protocol size bounds (spec I4).
const (
	MaxBulkBytes = 512_000_000
	MaxArraySize = 1000
)

// ErrProtocol marks a malformed frame: invalid length, array or bulk too
// large, unexpected element type, or a missing CRLF terminator. The
// connection that produced it must be closed.
var ErrProtocol = errors.New("resp: protocol error")

// ErrConnectionClosed marks a clean peer disconnect, whether it lands on
// a frame boundary or mid-frame. It is not logged as a failure.
var ErrConnectionClosed = errors.New("resp: connection closed")

// Value is the single wire data type. Only the field matching Kind is
// meaningful; the zero Value is an empty SimpleString.
type Value struct {
	Kind  Kind
	Str   []byte  // SimpleString payload
	Msg   []byte  // Error payload; Err leaves off the "ERR " prefix the encoder adds, a decoded Error keeps whatever prefix arrived on the wire
	Int   int64   // Integer payload
	Bulk  []byte  // Bulk payload
	Items []Value // Array elements
}

// OK returns the canonical SimpleString("OK") reply.
func OK() Value { return Value{Kind: SimpleString, Str: []byte("OK")} }

// Pong returns the canonical SimpleString("PONG") reply.
func Pong() Value { return Value{Kind: SimpleString, Str: []byte("PONG")} }

// Err builds an Error value. msg must not include the "ERR " prefix: the
// encoder adds it, matching real Redis error replies.
func Err(msg string) Value { return Value{Kind: Error, Msg: []byte(msg)} }

// Errf is Err with fmt.Sprintf formatting.
func Errf(format string, args ...interface{}) Value { return Err(fmt.Sprintf(format, args...)) }

// SimpleStr builds a SimpleString value.
func SimpleStr(s string) Value { return Value{Kind: SimpleString, Str: []byte(s)} }

// BulkBytes builds a Bulk value from a byte slice.
func BulkBytes(b []byte) Value { return Value{Kind: Bulk, Bulk: b} }

// BulkString builds a Bulk value from a string.
func BulkString(s string) Value { return Value{Kind: Bulk, Bulk: []byte(s)} }

// Null returns the NullBulk sentinel ("key does not exist").
func Null() Value { return Value{Kind: NullBulk} }

// NullArr returns the NullArray sentinel.
func NullArr() Value { return Value{Kind: NullArray} }

// Int builds an Integer value.
func Int(n int64) Value { return Value{Kind: Integer, Int: n} }

// Arr builds an Array value from its elements.
func Arr(items ...Value) Value { return Value{Kind: Array, Items: items} }

// Equal reports whether two Values are structurally identical. Used by
// tests; not used on the serving path.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case SimpleString:
		return string(a.Str) == string(b.Str)
	case Error:
		return string(a.Msg) == string(b.Msg)
	case Integer:
		return a.Int == b.Int
	case Bulk:
		return string(a.Bulk) == string(b.Bulk)
	case NullBulk, NullArray:
		return true
	case Array:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Encoder serializes Values to an underlying writer, the way writer.go
// did in the teacher repo, but byte-exact to the grammar in spec.md §4.1
// rather than that repo's ad hoc fmt.Sprintf construction.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w with a buffered writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes v and flushes. Arrays never nest in what this server
// emits, but the encoder does not enforce that; it just serializes
// whatever tree it is given.
func (e *Encoder) Encode(v Value) error {
	if err := e.encode(v); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) encode(v Value) error {
	switch v.Kind {
	case SimpleString:
		return e.line('+', v.Str)
	case Error:
		return e.line('-', append([]byte("ERR "), v.Msg...))
	case Integer:
		return e.line(':', []byte(strconv.FormatInt(v.Int, 10)))
	case Bulk:
		if err := e.line('$', []byte(strconv.Itoa(len(v.Bulk)))); err != nil {
			return err
		}
		if _, err := e.w.Write(v.Bulk); err != nil {
			return err
		}
		_, err := e.w.WriteString("\r\n")
		return err
	case NullBulk:
		_, err := e.w.WriteString("$-1\r\n")
		return err
	case NullArray:
		_, err := e.w.WriteString("*-1\r\n")
		return err
	case Array:
		if err := e.line('*', []byte(strconv.Itoa(len(v.Items)))); err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := e.encode(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("resp: encode: unknown kind %d", v.Kind)
	}
}

func (e *Encoder) line(prefix byte, payload []byte) error {
	if err := e.w.WriteByte(prefix); err != nil {
		return err
	}
	if _, err := e.w.Write(payload); err != nil {
		return err
	}
	_, err := e.w.WriteString("\r\n")
	return err
}

// Decoder parses one framed Value per Decode call from a buffered byte
// stream, the way protocol/resp.rs's Decoder does in the original
// implementation.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r. If r is not already buffered, it is wrapped in a
// bufio.Reader.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// Decode reads exactly one value. A clean peer disconnect, whether at a
// frame boundary or mid-frame, is reported as ErrConnectionClosed rather
// than ErrProtocol.
func (d *Decoder) Decode() (Value, error) {
	return d.decode()
}

func (d *Decoder) decode() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	if len(line) == 0 {
		return Value{}, ErrProtocol
	}

	switch line[0] {
	case '+':
		return Value{Kind: SimpleString, Str: clone(line[1:])}, nil
	case '-':
		return Value{Kind: Error, Msg: clone(line[1:])}, nil
	case ':':
		n, err := strconv.ParseInt(string(line[1:]), 10, 64)
		if err != nil {
			return Value{}, ErrProtocol
		}
		return Value{Kind: Integer, Int: n}, nil
	case '$':
		return d.decodeBulk(line[1:])
	case '*':
		return d.decodeArray(line[1:])
	default:
		return Value{}, ErrProtocol
	}
}

func (d *Decoder) decodeBulk(lenBytes []byte) (Value, error) {
	n, err := strconv.ParseInt(string(lenBytes), 10, 64)
	if err != nil {
		return Value{}, ErrProtocol
	}
	if n < 0 {
		return Value{Kind: NullBulk}, nil
	}
	if n > MaxBulkBytes {
		return Value{}, ErrProtocol
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return Value{}, mapReadErr(err)
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Value{}, ErrProtocol
	}
	return Value{Kind: Bulk, Bulk: buf[:n]}, nil
}

func (d *Decoder) decodeArray(lenBytes []byte) (Value, error) {
	n, err := strconv.ParseInt(string(lenBytes), 10, 64)
	if err != nil {
		return Value{}, ErrProtocol
	}
	if n < 0 {
		return Value{Kind: NullArray}, nil
	}
	if n > MaxArraySize {
		return Value{}, ErrProtocol
	}

	items := make([]Value, 0, n)
	for i := int64(0); i < n; i++ {
		item, err := d.decode()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	return Value{Kind: Array, Items: items}, nil
}

// readLine reads one CRLF-terminated line, without the terminator. EOF,
// whether at the start of a line or partway through one, is a clean
// connection close; a line ending in a bare LF is a protocol error.
func (d *Decoder) readLine() ([]byte, error) {
	line, err := d.r.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 && isEOF(err) {
			return nil, ErrConnectionClosed
		}
		return nil, mapReadErr(err)
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrProtocol
	}
	return line[:len(line)-2], nil
}

func mapReadErr(err error) error {
	if isEOF(err) {
		return ErrConnectionClosed
	}
	return err
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Cursor walks the elements of a command request, which the decoder
// always hands up as a top-level Array of Bulk (or SimpleString)
// elements. It centralizes the bytes-then-uppercase path the dispatcher
// and every option-parsing handler share, the way the original
// Parser::next_string / next_u64 did.
type Cursor struct {
	items []Value
	pos   int
}

// NewCursor builds a Cursor over a request Value. ok is false if v is not
// a non-empty Array; the command dispatcher answers that case with an
// error reply instead of dispatching.
func NewCursor(v Value) (*Cursor, bool) {
	if v.Kind != Array || len(v.Items) == 0 {
		return nil, false
	}
	return &Cursor{items: v.Items}, true
}

// Len reports how many elements remain unconsumed.
func (c *Cursor) Len() int { return len(c.items) - c.pos }

func (c *Cursor) next() (Value, bool) {
	if c.pos >= len(c.items) {
		return Value{}, false
	}
	v := c.items[c.pos]
	c.pos++
	return v, true
}

func bulkLike(v Value) ([]byte, bool) {
	switch v.Kind {
	case Bulk:
		return v.Bulk, true
	case SimpleString:
		return v.Str, true
	default:
		return nil, false
	}
}

// NextBulkBytes returns the next element's payload. ok is false when the
// array is exhausted; err is non-nil when an element is present but is
// not a string-like type (Integer, Array, or either null marker).
func (c *Cursor) NextBulkBytes() (data []byte, ok bool, err error) {
	v, present := c.next()
	if !present {
		return nil, false, nil
	}
	b, isStr := bulkLike(v)
	if !isStr {
		return nil, true, ErrProtocol
	}
	return b, true, nil
}

// NextStringUpper is NextBulkBytes with ASCII-only uppercasing applied,
// the single path command-name lookup and option-keyword matching
// (EX/PX/NX/XX/GT/LT/KEEPTTL/GET/PERSIST) both go through.
func (c *Cursor) NextStringUpper() (s string, ok bool, err error) {
	b, present, err := c.NextBulkBytes()
	if err != nil || !present {
		return "", present, err
	}
	return asciiUpper(b), true, nil
}

// NextUint64 parses the next element as an unsigned base-10 integer.
func (c *Cursor) NextUint64() (n uint64, ok bool, err error) {
	b, present, err := c.NextBulkBytes()
	if err != nil || !present {
		return 0, present, err
	}
	n, parseErr := strconv.ParseUint(string(b), 10, 64)
	if parseErr != nil {
		return 0, true, ErrProtocol
	}
	return n, true, nil
}

// NextInt64 parses the next element as a signed base-10 integer.
func (c *Cursor) NextInt64() (n int64, ok bool, err error) {
	b, present, err := c.NextBulkBytes()
	if err != nil || !present {
		return 0, present, err
	}
	n, parseErr := strconv.ParseInt(string(b), 10, 64)
	if parseErr != nil {
		return 0, true, ErrProtocol
	}
	return n, true, nil
}

func asciiUpper(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
