//go:build rp2040

package provider

import (
	"machine"

	"gametiger-go/errcode"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/provider/setups"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

func platformBackend() Backend { return rp2Backend{} }

type rp2Backend struct{}

var _ Backend = rp2Backend{}

// -----------------------------------------------------------------------------
// GPIO handle
// -----------------------------------------------------------------------------

type rp2GPIO struct {
	p machine.Pin
	n int
}

func (r *rp2GPIO) Number() int { return r.n }

func (r *rp2GPIO) ConfigureInput(pull core.Pull) error {
	var mode machine.PinMode
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2GPIO) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2GPIO) Set(b bool) { r.p.Set(b) }
func (r *rp2GPIO) Get() bool  { return r.p.Get() }

func (rp2Backend) GPIO(n int) (core.GPIOHandle, error) {
	return &rp2GPIO{p: machine.Pin(n), n: n}, nil
}

func (rp2Backend) ResetPin(n int) {
	machine.Pin(n).Configure(machine.PinConfig{Mode: machine.PinInput})
}

// -----------------------------------------------------------------------------
// SPI controller
// -----------------------------------------------------------------------------

// rp2SPI reconfigures the controller only when the clock or mode changes;
// Configure resets the peripheral.
type rp2SPI struct {
	id            core.ResourceID
	hw            *machine.SPI
	sck, sdo, sdi int

	baud uint32
	mode uint8
	set  bool
}

func (s *rp2SPI) ID() core.ResourceID       { return s.id }
func (s *rp2SPI) Pins() (sck, sdo, sdi int) { return s.sck, s.sdo, s.sdi }

func (s *rp2SPI) Configure(baud uint32, mode uint8) error {
	if s.set && baud == s.baud && mode == s.mode {
		return nil
	}
	sdi := machine.NoPin
	if s.sdi >= 0 {
		sdi = machine.Pin(s.sdi)
	}
	err := s.hw.Configure(machine.SPIConfig{
		Frequency: baud,
		Mode:      mode,
		SCK:       machine.Pin(s.sck),
		SDO:       machine.Pin(s.sdo),
		SDI:       sdi,
	})
	if err != nil {
		return err
	}
	s.baud, s.mode, s.set = baud, mode, true
	return nil
}

func (s *rp2SPI) Tx(w, r []byte) error          { return s.hw.Tx(w, r) }
func (s *rp2SPI) Transfer(b byte) (byte, error) { return s.hw.Transfer(b) }

func (rp2Backend) OpenSPI(p setups.SPIPlan) (core.SPIHandle, error) {
	var hw *machine.SPI
	switch p.ID {
	case "spi0":
		hw = machine.SPI0
	case "spi1":
		hw = machine.SPI1
	default:
		return nil, errcode.UnknownBus
	}
	s := &rp2SPI{id: core.ResourceID(p.ID), hw: hw, sck: p.SCK, sdo: p.SDO, sdi: p.SDI}
	if err := s.Configure(p.Hz, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// -----------------------------------------------------------------------------
// Serial
// -----------------------------------------------------------------------------

type rp2SerialPort struct{ u *uartx.UART }

func (p *rp2SerialPort) Write(b []byte) (int, error) { return p.u.Write(b) }

func (rp2Backend) OpenSerial(u setups.UARTPlan) (core.SerialPort, error) {
	var hw *uartx.UART
	switch u.ID {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, errcode.UnknownBus
	}
	// Defaults inside uartx apply if zero.
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: u.Baud,
		TX:       machine.Pin(u.TX),
		RX:       machine.Pin(u.RX),
	}); err != nil {
		return nil, err
	}
	return &rp2SerialPort{u: hw}, nil
}
