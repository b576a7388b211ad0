//go:build !rp2040

package provider

import (
	"sync"

	"gametiger-go/errcode"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/provider/setups"
	"gametiger-go/x/conv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Periph drives a real panel from a Linux SBC through periph.io. Board GPIO
// numbers are mapped to host pin names; SPI controllers to spidev ports.
type Periph struct {
	// Ports maps a plan bus id to a spireg name ("" picks the first port).
	Ports map[string]string
	// PinName maps a board GPIO number to a gpioreg name. Defaults to "GPIO<n>".
	PinName func(n int) string

	// Hooks for tests; default to spireg.Open and gpioreg.ByName.
	OpenPort func(name string) (spi.PortCloser, error)
	ByName   func(name string) gpio.PinIO
}

var _ Backend = (*Periph)(nil)

// NewPeriph initialises the host drivers once.
func NewPeriph(ports map[string]string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap("periph_init", err)
	}
	return &Periph{Ports: ports}, nil
}

func (p *Periph) pinName(n int) string {
	if p.PinName != nil {
		return p.PinName(n)
	}
	return string(conv.AppendInt([]byte("GPIO"), int64(n)))
}

func (p *Periph) byName(name string) gpio.PinIO {
	if p.ByName != nil {
		return p.ByName(name)
	}
	return gpioreg.ByName(name)
}

func (p *Periph) GPIO(n int) (core.GPIOHandle, error) {
	pin := p.byName(p.pinName(n))
	if pin == nil {
		return nil, errcode.UnknownPin
	}
	return &periphGPIO{p: pin, n: n}, nil
}

func (p *Periph) ResetPin(n int) {
	if pin := p.byName(p.pinName(n)); pin != nil {
		_ = pin.In(gpio.PullNoChange, gpio.NoEdge)
	}
}

func (p *Periph) OpenSPI(pl setups.SPIPlan) (core.SPIHandle, error) {
	open := p.OpenPort
	if open == nil {
		open = spireg.Open
	}
	port, err := open(p.Ports[pl.ID])
	if err != nil {
		return nil, err
	}
	return &periphSPI{id: core.ResourceID(pl.ID), port: port, sck: pl.SCK, sdo: pl.SDO, sdi: pl.SDI}, nil
}

// OpenSerial is not offered on the bench; the console goes to stdout.
func (p *Periph) OpenSerial(setups.UARTPlan) (core.SerialPort, error) {
	return nil, errcode.Unsupported
}

// -----------------------------------------------------------------------------
// GPIO handle
// -----------------------------------------------------------------------------

type periphGPIO struct {
	p gpio.PinIO
	n int
}

func (g *periphGPIO) Number() int { return g.n }

func (g *periphGPIO) ConfigureInput(pull core.Pull) error {
	pp := gpio.Float
	switch pull {
	case core.PullUp:
		pp = gpio.PullUp
	case core.PullDown:
		pp = gpio.PullDown
	}
	return g.p.In(pp, gpio.NoEdge)
}

func (g *periphGPIO) ConfigureOutput(initial bool) error { return g.p.Out(gpio.Level(initial)) }
func (g *periphGPIO) Set(b bool)                         { _ = g.p.Out(gpio.Level(b)) }
func (g *periphGPIO) Get() bool                          { return g.p.Read() == gpio.High }

// -----------------------------------------------------------------------------
// SPI handle
// -----------------------------------------------------------------------------

// periphSPI connects on the first Configure. A spidev connection is fixed
// once made, so a later Configure with different settings is refused.
type periphSPI struct {
	mu            sync.Mutex
	id            core.ResourceID
	port          spi.PortCloser
	sck, sdo, sdi int

	conn spi.Conn
	baud uint32
	mode uint8
}

func (s *periphSPI) ID() core.ResourceID       { return s.id }
func (s *periphSPI) Pins() (sck, sdo, sdi int) { return s.sck, s.sdo, s.sdi }

func (s *periphSPI) Configure(baud uint32, mode uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode > 3 {
		return errcode.InvalidParams
	}
	if s.conn != nil {
		if baud != s.baud || mode != s.mode {
			return errcode.New(errcode.InvalidParams, "periph_spi", "connection already made with other settings")
		}
		return nil
	}
	c, err := s.port.Connect(physic.Frequency(baud)*physic.Hertz, spi.Mode(mode), 8)
	if err != nil {
		return err
	}
	s.conn, s.baud, s.mode = c, baud, mode
	return nil
}

func (s *periphSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c == nil {
		return errcode.NotInitialised
	}
	return c.Tx(w, r)
}

func (s *periphSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := s.Tx([]byte{b}, r[:])
	return r[0], err
}

// Close releases the spidev port.
func (s *periphSPI) Close() error { return s.port.Close() }
