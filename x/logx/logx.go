// Package logx is a tagged line logger that avoids fmt, so it can run on the
// MCU build. Lines look like
//
//	[board] spi0 claimed baud=62500000
//
// Output defaults to stdout; the firmware points it at the UART console.
package logx

import (
	"io"
	"os"
	"sync"
	"time"

	"gametiger-go/x/conv"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects every Logger. A nil w discards output.
func SetOutput(w io.Writer) {
	mu.Lock()
	if w == nil {
		w = io.Discard
	}
	out = w
	mu.Unlock()
}

// Hex marks a byte to be printed as 0xNN.
type Hex byte

// Logger prefixes each line with its tag.
type Logger struct{ tag string }

func New(tag string) Logger { return Logger{tag: tag} }

// Println writes one line with the arguments separated by spaces.
func (l Logger) Println(a ...any) {
	buf := make([]byte, 0, 64)
	if l.tag != "" {
		buf = append(buf, '[')
		buf = append(buf, l.tag...)
		buf = append(buf, ']')
	}
	for i, v := range a {
		if i > 0 || l.tag != "" {
			buf = append(buf, ' ')
		}
		buf = appendValue(buf, v)
	}
	buf = append(buf, '\n')

	mu.Lock()
	_, _ = out.Write(buf)
	mu.Unlock()
}

func appendValue(buf []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(buf, x...)
	case []byte:
		for i, b := range x {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = conv.AppendHex8(buf, b)
		}
		return buf
	case Hex:
		return conv.AppendHex8(buf, byte(x))
	case error:
		return append(buf, x.Error()...)
	case bool:
		if x {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case int:
		return conv.AppendInt(buf, int64(x))
	case int8:
		return conv.AppendInt(buf, int64(x))
	case int16:
		return conv.AppendInt(buf, int64(x))
	case int32:
		return conv.AppendInt(buf, int64(x))
	case int64:
		return conv.AppendInt(buf, x)
	case uint:
		return conv.AppendUint(buf, uint64(x))
	case uint8:
		return conv.AppendUint(buf, uint64(x))
	case uint16:
		return conv.AppendUint(buf, uint64(x))
	case uint32:
		return conv.AppendUint(buf, uint64(x))
	case uint64:
		return conv.AppendUint(buf, x)
	case time.Duration:
		return append(buf, x.String()...)
	case interface{ String() string }:
		return append(buf, x.String()...)
	case nil:
		return append(buf, "<nil>"...)
	default:
		return append(buf, '?')
	}
}
