package provider

import (
	"bytes"
	"sync"

	"gametiger-go/errcode"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/provider/setups"
)

// Host is an in-memory Backend. Every pin and bus records what was done to
// it so tests can assert on the wire-level sequence.
type Host struct {
	mu     sync.Mutex
	pins   map[int]*FakePin
	spi    map[core.ResourceID]*HostSPI
	serial map[core.ResourceID]*HostSerial

	// FailGPIO makes GPIO(n) fail for the listed pins.
	FailGPIO map[int]error
}

var _ Backend = (*Host)(nil)

func NewHost() *Host {
	return &Host{
		pins:     make(map[int]*FakePin),
		spi:      make(map[core.ResourceID]*HostSPI),
		serial:   make(map[core.ResourceID]*HostSerial),
		FailGPIO: make(map[int]error),
	}
}

// Pin returns the fake behind GPIO n, creating it on first use.
func (h *Host) Pin(n int) *FakePin {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pinLocked(n)
}

func (h *Host) pinLocked(n int) *FakePin {
	p := h.pins[n]
	if p == nil {
		p = &FakePin{n: n}
		h.pins[n] = p
	}
	return p
}

// SPI returns the recorder for bus id, or nil if it was never opened.
func (h *Host) SPI(id core.ResourceID) *HostSPI {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.spi[id]
}

// Serial returns the recorder for port id, or nil if it was never opened.
func (h *Host) Serial(id core.ResourceID) *HostSerial {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serial[id]
}

func (h *Host) OpenSPI(p setups.SPIPlan) (core.SPIHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &HostSPI{id: core.ResourceID(p.ID), sck: p.SCK, sdo: p.SDO, sdi: p.SDI, Baud: p.Hz}
	h.spi[s.id] = s
	return s, nil
}

func (h *Host) OpenSerial(p setups.UARTPlan) (core.SerialPort, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &HostSerial{}
	h.serial[core.ResourceID(p.ID)] = s
	return s, nil
}

func (h *Host) GPIO(n int) (core.GPIOHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.FailGPIO[n]; err != nil {
		return nil, err
	}
	return h.pinLocked(n), nil
}

func (h *Host) ResetPin(n int) {
	h.mu.Lock()
	p := h.pins[n]
	h.mu.Unlock()
	if p != nil {
		_ = p.ConfigureInput(core.PullNone)
	}
}

// -----------------------------------------------------------------------------
// FakePin
// -----------------------------------------------------------------------------

// FakePin records its mode and every level written.
type FakePin struct {
	mu      sync.Mutex
	n       int
	output  bool
	pull    core.Pull
	level   bool
	history []bool
}

func (p *FakePin) Number() int { return p.n }

func (p *FakePin) ConfigureInput(pull core.Pull) error {
	p.mu.Lock()
	p.output, p.pull = false, pull
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.output = true
	p.mu.Unlock()
	p.Set(initial)
	return nil
}

func (p *FakePin) Set(b bool) {
	p.mu.Lock()
	p.level = b
	p.history = append(p.history, b)
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// IsOutput reports whether the pin is currently driven.
func (p *FakePin) IsOutput() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output
}

// History returns every level written, oldest first.
func (p *FakePin) History() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.history...)
}

// -----------------------------------------------------------------------------
// HostSPI
// -----------------------------------------------------------------------------

// SPIConfigCall is one Configure call seen by a HostSPI.
type SPIConfigCall struct {
	Baud uint32
	Mode uint8
}

// HostSPI records configuration and the bytes written.
type HostSPI struct {
	mu            sync.Mutex
	id            core.ResourceID
	sck, sdo, sdi int

	Baud    uint32
	Mode    uint8
	configs []SPIConfigCall
	out     bytes.Buffer
}

func (s *HostSPI) ID() core.ResourceID       { return s.id }
func (s *HostSPI) Pins() (sck, sdo, sdi int) { return s.sck, s.sdo, s.sdi }

func (s *HostSPI) Configure(baud uint32, mode uint8) error {
	if mode > 3 {
		return errcode.InvalidParams
	}
	s.mu.Lock()
	s.Baud, s.Mode = baud, mode
	s.configs = append(s.configs, SPIConfigCall{Baud: baud, Mode: mode})
	s.mu.Unlock()
	return nil
}

func (s *HostSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	s.out.Write(w)
	s.mu.Unlock()
	for i := range r {
		r[i] = 0xFF
	}
	return nil
}

func (s *HostSPI) Transfer(b byte) (byte, error) {
	s.mu.Lock()
	s.out.WriteByte(b)
	s.mu.Unlock()
	return 0xFF, nil
}

// Configs returns every Configure call, oldest first.
func (s *HostSPI) Configs() []SPIConfigCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SPIConfigCall(nil), s.configs...)
}

// Written returns every byte clocked out so far.
func (s *HostSPI) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.out.Bytes()...)
}

// -----------------------------------------------------------------------------
// HostSerial
// -----------------------------------------------------------------------------

type HostSerial struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *HostSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *HostSerial) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
