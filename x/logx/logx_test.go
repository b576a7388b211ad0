package logx

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	return &buf
}

func TestPrintlnFormatsValues(t *testing.T) {
	buf := capture(t)
	New("board").Println("spi0", "baud=", uint32(62_500_000), "pol", 0, Hex(0x2A), true)
	want := "[board] spi0 baud= 62500000 pol 0 0x2A true\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPrintlnErrorsDurationsAndBytes(t *testing.T) {
	buf := capture(t)
	New("seq").Println(errors.New("boom"), 120*time.Millisecond, []byte{0x36, 0x70})
	want := "[seq] boom 120ms 0x36 0x70\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUntaggedLogger(t *testing.T) {
	buf := capture(t)
	New("").Println("boot", -1)
	if got := buf.String(); got != "boot -1\n" {
		t.Fatalf("got %q", got)
	}
}
