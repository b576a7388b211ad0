package busdisplay

import (
	"time"

	"gametiger-go/errcode"
	"gametiger-go/x/conv"
)

// Init sequences are packed as
//
//	cmd, flags|len, data[len]..., [delay]
//
// Bit 7 of the second byte marks a trailing delay byte in ms; 255 means 500 ms.
const (
	Delay         = 0x80
	lenMask       = 0x7F
	longDelayCode = 255
	longDelay     = 500 * time.Millisecond
)

// Record is one decoded command of an init sequence.
type Record struct {
	Cmd   byte
	Data  []byte
	Delay time.Duration
}

// Parse decodes seq in order. Data slices alias seq.
func Parse(seq []byte) ([]Record, error) {
	var out []Record
	for i := 0; i < len(seq); {
		if i+2 > len(seq) {
			return nil, truncated(i)
		}
		r := Record{Cmd: seq[i]}
		n := int(seq[i+1] & lenMask)
		hasDelay := seq[i+1]&Delay != 0
		i += 2
		if i+n > len(seq) {
			return nil, truncated(i)
		}
		r.Data = seq[i : i+n : i+n]
		i += n
		if hasDelay {
			if i >= len(seq) {
				return nil, truncated(i)
			}
			r.Delay = delayOf(seq[i])
			i++
		}
		out = append(out, r)
	}
	return out, nil
}

// Encode packs records back into wire form. Delays are rounded down to whole
// ms; 500 ms and above use the long-delay code.
func Encode(recs []Record) []byte {
	var out []byte
	for _, r := range recs {
		flags := byte(len(r.Data)) & lenMask
		if r.Delay > 0 {
			flags |= Delay
		}
		out = append(out, r.Cmd, flags)
		out = append(out, r.Data...)
		if r.Delay > 0 {
			out = append(out, delayCode(r.Delay))
		}
	}
	return out
}

func delayOf(b byte) time.Duration {
	if b == longDelayCode {
		return longDelay
	}
	return time.Duration(b) * time.Millisecond
}

func delayCode(d time.Duration) byte {
	if d >= longDelay {
		return longDelayCode
	}
	ms := d / time.Millisecond
	if ms >= longDelayCode {
		ms = longDelayCode - 1
	}
	return byte(ms)
}

func truncated(at int) error {
	return errcode.New(errcode.InvalidParams, "initseq",
		string(conv.AppendInt([]byte("truncated at offset "), int64(at))))
}
