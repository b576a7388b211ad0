package setups

import (
	"bytes"
	"testing"
	"time"

	"gametiger-go/drivers/busdisplay"
	"gametiger-go/pins"
	"gametiger-go/services/board/internal/platform/boards"
)

func TestInitSequenceDecodes(t *testing.T) {
	recs, err := busdisplay.Parse(GameTigerInitSequence)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantCmds := []byte{0x01, 0x11, 0x36, 0x3A, 0xB2, 0xB7, 0xBB, 0xC0, 0xC2, 0xC3, 0xC4, 0xC6, 0xD0, 0xE0, 0xE1, 0x29}
	if len(recs) != len(wantCmds) {
		t.Fatalf("records = %d, want %d", len(recs), len(wantCmds))
	}
	var delayed []byte
	for i, r := range recs {
		if r.Cmd != wantCmds[i] {
			t.Fatalf("record %d cmd = %#x, want %#x", i, r.Cmd, wantCmds[i])
		}
		if r.Delay != 0 {
			if r.Delay != 120*time.Millisecond {
				t.Fatalf("record %d delay = %v", i, r.Delay)
			}
			delayed = append(delayed, r.Cmd)
		}
	}
	if !bytes.Equal(delayed, []byte{0x01, 0x11, 0x29}) {
		t.Fatalf("delayed commands = % x", delayed)
	}
	if !bytes.Equal(recs[4].Data, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}) {
		t.Fatalf("PORCTRL = % x", recs[4].Data)
	}
	if len(recs[13].Data) != 14 || len(recs[14].Data) != 14 {
		t.Fatal("gamma tables must carry 14 bytes")
	}
	// Re-encoding must reproduce the literal byte for byte.
	if got := busdisplay.Encode(recs); !bytes.Equal(got, GameTigerInitSequence) {
		t.Fatalf("re-encoded sequence differs:\n got % x\nwant % x", got, GameTigerInitSequence)
	}
}

func TestDisplayParameters(t *testing.T) {
	d := GameTigerDisplay
	if d.Transport.BaudRate != 62_500_000 || d.Transport.Polarity != 0 || d.Transport.Phase != 0 {
		t.Fatalf("transport = %+v", d.Transport)
	}
	p := d.Panel
	if p.Width != 320 || p.Height != 240 || p.Rotation != 0 || p.ColorDepth != 16 {
		t.Fatalf("geometry = %dx%d rot %d depth %d", p.Width, p.Height, p.Rotation, p.ColorDepth)
	}
	if p.SetColumnCommand != 0x2A || p.SetRowCommand != 0x2B || p.WriteRAMCommand != 0x2C {
		t.Fatalf("addressing opcodes = %#x %#x %#x", p.SetColumnCommand, p.SetRowCommand, p.WriteRAMCommand)
	}
	if !p.ReversePixelsInWord || p.BytesPerCell != 1 || p.Grayscale || p.SingleByteBounds || p.DataAsCommands || p.SH1107Addressing {
		t.Fatalf("packing flags = %+v", p)
	}
	if !p.AutoRefresh || p.NativeFramesPerSecond != 60 {
		t.Fatal("auto-refresh at 60 fps expected")
	}
	if p.BacklightPin != pins.NoPin || p.BrightnessCommand != busdisplay.NoBrightnessCommand || p.Brightness != 1.0 {
		t.Fatal("backlight must be unwired at full brightness")
	}
	if p.BacklightPWMFrequency != 50_000 || !p.BacklightOnHigh {
		t.Fatal("backlight pwm parameters changed")
	}
	if d.DC != int(pins.LCD_DC) || d.CS != int(pins.LCD_CS) || d.RST != int(pins.LCD_RESET) {
		t.Fatal("control lines do not match the pin table")
	}
}

func TestPlanFitsRP2040(t *testing.T) {
	for _, s := range GameTigerPlan.SPI {
		if !boards.RP2040.CanSPI(s.ID, s.SCK, s.SDO, s.SDI) {
			t.Fatalf("%s cannot be muxed to %d/%d/%d", s.ID, s.SCK, s.SDO, s.SDI)
		}
	}
	for _, u := range GameTigerPlan.UART {
		if !boards.RP2040.CanUART(u.ID, u.TX, u.RX) {
			t.Fatalf("%s cannot be muxed to %d/%d", u.ID, u.TX, u.RX)
		}
	}
	if _, ok := GameTigerPlan.SPIByID(GameTigerDisplay.Bus); !ok {
		t.Fatal("display bus missing from plan")
	}
	if _, ok := GameTigerPlan.UARTByID(ConsoleUART); !ok {
		t.Fatal("console uart missing from plan")
	}
}
