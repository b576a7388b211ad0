package provider

import (
	"io"
	"sync"

	"gametiger-go/errcode"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/platform/boards"
	"gametiger-go/services/board/internal/provider/setups"
	"gametiger-go/x/logx"
)

// Ensure the registry satisfies the contracts at compile time.
var _ core.ResourceRegistry = (*Registry)(nil)

var log = logx.New("resources")

// Backend opens the hardware behind a claim. The Registry does all the
// ownership bookkeeping; a Backend only touches peripherals.
type Backend interface {
	OpenSPI(p setups.SPIPlan) (core.SPIHandle, error)
	OpenSerial(p setups.UARTPlan) (core.SerialPort, error)
	GPIO(n int) (core.GPIOHandle, error)
	// ResetPin returns a released pin to a high-impedance input.
	ResetPin(n int)
}

type pinOwner struct {
	devID string
	fn    core.PinFunc
	bus   core.ResourceID // set while the pin is a line of a claimed bus
}

// Registry arbitrates pins and controllers for one board.
type Registry struct {
	mu sync.Mutex

	hw    Backend
	board boards.Board
	plan  setups.ResourcePlan

	pinOwners map[int]pinOwner
	busOwners map[core.ResourceID]string

	spiOpen    map[core.ResourceID]core.SPIHandle
	serialOpen map[core.ResourceID]core.SerialPort

	keepBus map[core.ResourceID]bool
	keepPin map[int]bool
}

// NewRegistry checks the plan against the board's pin-function map.
func NewRegistry(hw Backend, b boards.Board, plan setups.ResourcePlan) (*Registry, error) {
	for _, s := range plan.SPI {
		if s.HalfDuplex {
			return nil, errcode.New(errcode.Unsupported, "plan", s.ID+" half-duplex")
		}
		if !b.CanSPI(s.ID, s.SCK, s.SDO, s.SDI) {
			return nil, errcode.New(errcode.InvalidParams, "plan", s.ID+" pins cannot carry SPI")
		}
	}
	for _, u := range plan.UART {
		if !b.CanUART(u.ID, u.TX, u.RX) {
			return nil, errcode.New(errcode.InvalidParams, "plan", u.ID+" pins cannot carry UART")
		}
	}
	return &Registry{
		hw:         hw,
		board:      b,
		plan:       plan,
		pinOwners:  make(map[int]pinOwner),
		busOwners:  make(map[core.ResourceID]string),
		spiOpen:    make(map[core.ResourceID]core.SPIHandle),
		serialOpen: make(map[core.ResourceID]core.SerialPort),
		keepBus:    make(map[core.ResourceID]bool),
		keepPin:    make(map[int]bool),
	}, nil
}

func (r *Registry) ClassOf(id core.ResourceID) (core.BusClass, bool) {
	if _, ok := r.plan.SPIByID(string(id)); ok {
		return core.BusTransactional, true
	}
	if _, ok := r.plan.UARTByID(string(id)); ok {
		return core.BusStream, true
	}
	return 0, false
}

// caller holds lock
func (r *Registry) busFree(devID string, id core.ResourceID, lines ...int) error {
	if owner, taken := r.busOwners[id]; taken && owner != devID {
		return errcode.BusInUse
	}
	for _, n := range lines {
		if n < 0 {
			continue
		}
		if owner, inUse := r.pinOwners[n]; inUse && owner.bus != id {
			return errcode.PinInUse
		}
	}
	return nil
}

// caller holds lock
func (r *Registry) takeLines(devID string, id core.ResourceID, fn core.PinFunc, lines ...int) {
	r.busOwners[id] = devID
	for _, n := range lines {
		if n < 0 {
			continue
		}
		if _, held := r.pinOwners[n]; held {
			continue
		}
		r.pinOwners[n] = pinOwner{devID: devID, fn: fn, bus: id}
	}
}

// caller holds lock
func (r *Registry) dropBus(devID string, id core.ResourceID) {
	if owner, ok := r.busOwners[id]; !ok || owner != devID {
		return
	}
	delete(r.busOwners, id)
	delete(r.keepBus, id)
	r.closeBus(id)
	for n, o := range r.pinOwners {
		if o.bus != id {
			continue
		}
		if o.fn == core.FuncSPI || o.fn == core.FuncUART {
			delete(r.pinOwners, n)
			delete(r.keepPin, n)
			r.hw.ResetPin(n)
		} else {
			// Re-claimed as GPIO; the GPIO claim outlives the bus.
			o.bus = ""
			r.pinOwners[n] = o
		}
	}
}

// closeBus shuts a released controller that holds an OS handle, so the
// next claim opens it afresh. Handles without Close stay cached.
func (r *Registry) closeBus(id core.ResourceID) {
	if c, ok := r.spiOpen[id].(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Println("close", string(id), err)
		}
		delete(r.spiOpen, id)
	}
	if c, ok := r.serialOpen[id].(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Println("close", string(id), err)
		}
		delete(r.serialOpen, id)
	}
}

// ClaimSPI claims the controller and its SCK/SDO/SDI lines.
func (r *Registry) ClaimSPI(devID string, id core.ResourceID) (core.SPIHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.plan.SPIByID(string(id))
	if !ok {
		return nil, errcode.UnknownBus
	}
	if err := r.busFree(devID, id, p.SCK, p.SDO, p.SDI); err != nil {
		return nil, err
	}
	h := r.spiOpen[id]
	if h == nil {
		var err error
		if h, err = r.hw.OpenSPI(p); err != nil {
			return nil, errcode.Wrap("open_"+string(id), err)
		}
		r.spiOpen[id] = h
	}
	r.takeLines(devID, id, core.FuncSPI, p.SCK, p.SDO, p.SDI)
	log.Println("claim", string(id), "by", devID)
	return h, nil
}

func (r *Registry) ReleaseSPI(devID string, id core.ResourceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropBus(devID, id)
}

// ClaimGPIO claims a single pin. A pin held by the same device as a bus line
// may be re-claimed; any other overlap is refused.
func (r *Registry) ClaimGPIO(devID string, n int) (core.GPIOHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.board.InRange(n) {
		return nil, errcode.UnknownPin
	}
	owner, inUse := r.pinOwners[n]
	if inUse && !(owner.devID == devID && owner.fn == core.FuncSPI) {
		return nil, errcode.PinInUse
	}
	h, err := r.hw.GPIO(n)
	if err != nil {
		return nil, err
	}
	r.pinOwners[n] = pinOwner{devID: devID, fn: core.FuncGPIO, bus: owner.bus}
	return h, nil
}

func (r *Registry) ReleaseGPIO(devID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.pinOwners[n]
	if !ok || o.devID != devID || o.fn != core.FuncGPIO {
		return
	}
	if o.bus != "" && r.busOwners[o.bus] == devID {
		// Hand the line back to the bus.
		o.fn = core.FuncSPI
		r.pinOwners[n] = o
		return
	}
	delete(r.pinOwners, n)
	delete(r.keepPin, n)
	r.hw.ResetPin(n)
}

func (r *Registry) ClaimSerial(devID string, id core.ResourceID) (core.SerialPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.plan.UARTByID(string(id))
	if !ok {
		return nil, errcode.UnknownBus
	}
	if err := r.busFree(devID, id, p.TX, p.RX); err != nil {
		return nil, err
	}
	s := r.serialOpen[id]
	if s == nil {
		var err error
		if s, err = r.hw.OpenSerial(p); err != nil {
			return nil, errcode.Wrap("open_"+string(id), err)
		}
		r.serialOpen[id] = s
	}
	r.takeLines(devID, id, core.FuncUART, p.TX, p.RX)
	return s, nil
}

func (r *Registry) ReleaseSerial(devID string, id core.ResourceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropBus(devID, id)
}

func (r *Registry) NeverResetBus(id core.ResourceID) {
	r.mu.Lock()
	r.keepBus[id] = true
	r.mu.Unlock()
}

func (r *Registry) NeverResetPin(n int) {
	r.mu.Lock()
	r.keepPin[n] = true
	r.mu.Unlock()
}

// ResetAll releases every claim not marked never-reset. Lines of a kept bus
// are kept with it.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, devID := range r.busOwners {
		if !r.keepBus[id] {
			r.dropBus(devID, id)
		}
	}
	for n, o := range r.pinOwners {
		if r.keepPin[n] || (o.bus != "" && r.keepBus[o.bus]) {
			continue
		}
		delete(r.pinOwners, n)
		r.hw.ResetPin(n)
	}
	log.Println("reset, kept", len(r.busOwners), "buses", len(r.pinOwners), "pins")
}

// Owner reports who holds pin n.
func (r *Registry) Owner(n int) (devID string, fn core.PinFunc, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.pinOwners[n]
	return o.devID, o.fn, ok
}

// BusOwner reports who holds bus id.
func (r *Registry) BusOwner(id core.ResourceID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.busOwners[id]
	return o, ok
}
