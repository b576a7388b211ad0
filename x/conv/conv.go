// Package conv holds allocation-light number formatting for MCU builds,
// where fmt and strconv cost too much flash.
package conv

const hexDigits = "0123456789ABCDEF"

// AppendUint appends the base-10 form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 form of n to dst, with a leading '-' when negative.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// two's complement keeps math.MinInt64 correct
		return AppendUint(dst, uint64(^n)+1)
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex8 appends b as "0x" plus two uppercase hex digits.
func AppendHex8(dst []byte, b byte) []byte {
	return append(dst, '0', 'x', hexDigits[b>>4], hexDigits[b&0x0F])
}
