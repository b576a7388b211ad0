// Package fourwire frames display traffic on a SPI bus with chip-select,
// data/command and reset lines.
//
// A transaction is BeginTransaction, any mix of WriteCommand/WriteData, then
// EndTransaction. The bus clock, polarity and phase are applied at the start
// of every transaction so the bus can be shared with other devices.
package fourwire

import (
	"sync"
	"time"

	"gametiger-go/errcode"
	"gametiger-go/x/timex"

	"tinygo.org/x/drivers"
)

// SPI is a bus that can be reclocked between transactions.
type SPI interface {
	drivers.SPI
	// Configure sets the clock and SPI mode (0..3).
	Configure(baud uint32, mode uint8) error
}

// OutputPin is the subset of a GPIO handle the transport drives.
type OutputPin interface {
	ConfigureOutput(initial bool) error
	Set(level bool)
}

// Config is the electrical setup of the bus for this device.
type Config struct {
	BaudRate uint32
	Polarity uint8 // 0 or 1
	Phase    uint8 // 0 or 1

	// Sleep is used for reset timing. Defaults to time.Sleep.
	Sleep timex.Sleeper
}

// Mode returns the SPI mode number for the polarity/phase pair.
func (c Config) Mode() uint8 { return c.Polarity<<1 | c.Phase }

const resetPulse = time.Millisecond

// FourWire is the framed transport.
type FourWire struct {
	mu sync.Mutex

	spi SPI
	dc  OutputPin
	cs  OutputPin
	rst OutputPin // nil when not wired
	cfg Config

	inTx bool
}

// New configures the control lines and resets the panel. rst may be nil.
func New(spi SPI, dc, cs, rst OutputPin, cfg Config) (*FourWire, error) {
	if spi == nil || dc == nil || cs == nil {
		return nil, errcode.New(errcode.InvalidParams, "fourwire", "spi, dc and cs are required")
	}
	if cfg.BaudRate == 0 {
		return nil, errcode.New(errcode.InvalidParams, "fourwire", "baud rate is zero")
	}
	if cfg.Polarity > 1 || cfg.Phase > 1 {
		return nil, errcode.New(errcode.InvalidParams, "fourwire", "polarity and phase must be 0 or 1")
	}
	cfg.Sleep = cfg.Sleep.Or()

	if err := cs.ConfigureOutput(true); err != nil {
		return nil, errcode.Wrap("fourwire_cs", err)
	}
	if err := dc.ConfigureOutput(true); err != nil {
		return nil, errcode.Wrap("fourwire_dc", err)
	}
	if rst != nil {
		if err := rst.ConfigureOutput(true); err != nil {
			return nil, errcode.Wrap("fourwire_rst", err)
		}
	}

	f := &FourWire{spi: spi, dc: dc, cs: cs, rst: rst, cfg: cfg}
	if err := f.Reset(); err != nil {
		return nil, err
	}
	return f, nil
}

// Config reports the bus parameters as given to New.
func (f *FourWire) Config() Config { return f.cfg }

// HasReset reports whether a reset line is wired.
func (f *FourWire) HasReset() bool { return f.rst != nil }

// Reset pulses the reset line low. It is a no-op without one.
func (f *FourWire) Reset() error {
	if f.rst == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rst.Set(false)
	f.cfg.Sleep(resetPulse)
	f.rst.Set(true)
	f.cfg.Sleep(resetPulse)
	return nil
}

// BeginTransaction takes the bus, reclocks it and asserts CS.
func (f *FourWire) BeginTransaction() error {
	f.mu.Lock()
	if err := f.spi.Configure(f.cfg.BaudRate, f.cfg.Mode()); err != nil {
		f.mu.Unlock()
		return errcode.Wrap("fourwire_configure", err)
	}
	f.inTx = true
	f.cs.Set(false)
	return nil
}

// WriteCommand sends bytes with D/C low.
func (f *FourWire) WriteCommand(cmd ...byte) error {
	return f.send(false, cmd)
}

// WriteData sends bytes with D/C high.
func (f *FourWire) WriteData(data []byte) error {
	return f.send(true, data)
}

func (f *FourWire) send(data bool, b []byte) error {
	if !f.inTx {
		return errcode.New(errcode.Busy, "fourwire", "write outside transaction")
	}
	if len(b) == 0 {
		return nil
	}
	f.dc.Set(data)
	return f.spi.Tx(b, nil)
}

// EndTransaction releases CS and the bus.
func (f *FourWire) EndTransaction() {
	if !f.inTx {
		return
	}
	f.cs.Set(true)
	f.inTx = false
	f.mu.Unlock()
}
