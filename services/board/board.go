// Package board brings up the GameTiger display and owns the display slot.
//
// Bring-up is linear: claim the SPI bus, build the four-wire transport on the
// D/C, CS and RST lines, then build the panel. Each step needs the previous
// one. A failure releases everything claimed so far and leaves the slot empty
// for good; the firmware treats it as fatal.
package board

import (
	"sync"

	"gametiger-go/bus"
	"gametiger-go/drivers/busdisplay"
	"gametiger-go/drivers/fourwire"
	"gametiger-go/errcode"
	"gametiger-go/pins"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/provider/setups"
	"gametiger-go/types"
	"gametiger-go/x/logx"
)

var log = logx.New("board")

// Topics the slot publishes retained state on.
var (
	TopicState   = bus.Topic{"board", "state"}
	TopicBus     = bus.Topic{"board", "display", "bus"}
	TopicDisplay = bus.Topic{"board", "display", "info"}
)

// Slot holds the board's display once bring-up succeeds. It is filled at most
// once.
type Slot struct {
	mu sync.Mutex

	conn  *bus.Connection // optional
	state types.BoardState

	failed error // first bring-up failure; Init is not retried

	plan setups.DisplayPlan
	spi  core.SPIHandle
	wire *fourwire.FourWire
	disp *busdisplay.Display
}

// NewSlot returns an empty slot. conn may be nil.
func NewSlot(conn *bus.Connection) *Slot {
	s := &Slot{conn: conn}
	s.state = types.BoardState{Board: pins.BoardID, Level: types.BoardIdle}
	s.publish(TopicState, s.state)
	return s
}

// Attach publishes the slot's state on conn from now on.
func (s *Slot) Attach(conn *bus.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.publish(TopicState, s.state)
	if s.disp != nil {
		s.publish(TopicBus, s.busInfo())
		s.publish(TopicDisplay, s.disp.Info())
	}
}

func (s *Slot) publish(t bus.Topic, payload any) {
	if s.conn != nil {
		s.conn.PublishRetained(t, payload)
	}
}

// caller holds lock
func (s *Slot) setLevel(l types.BoardLevel, status string) {
	s.state = types.BoardState{Board: pins.BoardID, Level: l, Status: status}
	s.publish(TopicState, s.state)
}

// Init claims the plan's resources and builds the display. It runs once: a
// later call returns errcode.AlreadyInitialised after success, or the
// original failure, and changes nothing.
func (s *Slot) Init(reg core.ResourceRegistry, plan setups.DisplayPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disp != nil {
		return errcode.New(errcode.AlreadyInitialised, "board_init", "display slot already filled")
	}
	if s.failed != nil {
		return s.failed
	}

	var undo []func()
	fail := func(op string, err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		err = errcode.Wrap(op, err)
		s.failed = err
		s.setLevel(types.BoardFailed, string(errcode.Of(err)))
		log.Println("bring-up failed:", err)
		return err
	}

	// 1. Bus.
	busID := core.ResourceID(plan.Bus)
	spi, err := reg.ClaimSPI(plan.DevID, busID)
	if err != nil {
		return fail("claim_"+plan.Bus, err)
	}
	undo = append(undo, func() { reg.ReleaseSPI(plan.DevID, busID) })
	reg.NeverResetBus(busID)
	sck, sdo, sdi := spi.Pins()
	log.Println(plan.Bus, "claimed sck", sck, "sdo", sdo, "sdi", sdi)

	// 2. Control lines and transport.
	claimOut := func(n int, name string) (core.GPIOHandle, error) {
		h, err := reg.ClaimGPIO(plan.DevID, n)
		if err != nil {
			return nil, errcode.Wrap("claim_"+name, err)
		}
		undo = append(undo, func() { reg.ReleaseGPIO(plan.DevID, n) })
		reg.NeverResetPin(n)
		return h, nil
	}
	dc, err := claimOut(plan.DC, "dc")
	if err != nil {
		return fail("board_transport", err)
	}
	cs, err := claimOut(plan.CS, "cs")
	if err != nil {
		return fail("board_transport", err)
	}
	var rst fourwire.OutputPin
	if plan.RST >= 0 {
		h, err := claimOut(plan.RST, "rst")
		if err != nil {
			return fail("board_transport", err)
		}
		rst = h
	}
	wire, err := fourwire.New(spi, dc, cs, rst, plan.Transport)
	if err != nil {
		return fail("board_transport", err)
	}
	log.Println("transport baud", plan.Transport.BaudRate, "polarity", plan.Transport.Polarity, "phase", plan.Transport.Phase)

	// 3. Panel.
	disp, err := busdisplay.New(wire, plan.Panel)
	if err != nil {
		return fail("board_display", err)
	}

	s.plan, s.spi, s.wire, s.disp = plan, spi, wire, disp
	s.setLevel(types.BoardReady, "")
	s.publish(TopicBus, s.busInfo())
	s.publish(TopicDisplay, disp.Info())
	log.Println("display ready", plan.Panel.Width, plan.Panel.Height)
	return nil
}

// Display returns the display once Init has succeeded.
func (s *Slot) Display() (*busdisplay.Display, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disp, s.disp != nil
}

// Bus returns the display transport once Init has succeeded.
func (s *Slot) Bus() (*fourwire.FourWire, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wire, s.wire != nil
}

func (s *Slot) State() types.BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BusInfo describes the transport wiring; ok is false before Init succeeds.
func (s *Slot) BusInfo() (types.BusInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wire == nil {
		return types.BusInfo{}, false
	}
	return s.busInfo(), true
}

// caller holds lock
func (s *Slot) busInfo() types.BusInfo {
	sck, sdo, sdi := s.spi.Pins()
	c := s.wire.Config()
	return types.BusInfo{
		ID: s.plan.Bus, SCK: sck, SDO: sdo, SDI: sdi,
		DC: s.plan.DC, CS: s.plan.CS, RST: s.plan.RST,
		BaudRate: c.BaudRate, Polarity: c.Polarity, Phase: c.Phase,
	}
}
