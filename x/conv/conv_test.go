package conv

import (
	"math"
	"testing"
)

func TestAppendInt(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-42, "-42"},
		{62_500_000, "62500000"},
		{math.MinInt64, "-9223372036854775808"},
		{math.MaxInt64, "9223372036854775807"},
	}
	for _, c := range cases {
		if got := string(AppendInt(nil, c.n)); got != c.want {
			t.Errorf("AppendInt(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestAppendUint(t *testing.T) {
	if got := string(AppendUint([]byte("n="), math.MaxUint64)); got != "n=18446744073709551615" {
		t.Fatalf("got %q", got)
	}
}

func TestAppendHex8(t *testing.T) {
	for b, want := range map[byte]string{0x00: "0x00", 0x2A: "0x2A", 0xE1: "0xE1", 0xFF: "0xFF"} {
		if got := string(AppendHex8(nil, b)); got != want {
			t.Errorf("AppendHex8(%d) = %q, want %q", b, got, want)
		}
	}
}
