package board

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"gametiger-go/bus"
	"gametiger-go/drivers/busdisplay"
	"gametiger-go/errcode"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/platform/boards"
	"gametiger-go/services/board/internal/provider"
	"gametiger-go/services/board/internal/provider/setups"
	"gametiger-go/types"
)

type rig struct {
	host   *provider.Host
	reg    *provider.Registry
	slot   *Slot
	plan   setups.DisplayPlan
	sleeps []time.Duration
}

func newRig(t *testing.T, conn *bus.Connection) *rig {
	t.Helper()
	r := &rig{host: provider.NewHost(), slot: NewSlot(conn)}
	reg, err := provider.NewRegistry(r.host, boards.RP2040, setups.GameTigerPlan)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r.reg = reg
	r.plan = setups.GameTigerDisplay
	sleep := func(d time.Duration) { r.sleeps = append(r.sleeps, d) }
	r.plan.Transport.Sleep = sleep
	r.plan.Panel.Sleep = sleep
	return r
}

func (r *rig) init() error { return r.slot.Init(r.reg, r.plan) }

func TestBringUpOnGPIO0To4(t *testing.T) {
	r := newRig(t, nil)
	if err := r.init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// One transport on all five pins.
	for n := 0; n <= 4; n++ {
		dev, _, ok := r.reg.Owner(n)
		if !ok || dev != "display" {
			t.Fatalf("GPIO%d owner = %q, %v", n, dev, ok)
		}
	}
	for _, n := range []int{0, 1, 4} {
		if _, fn, _ := r.reg.Owner(n); fn != core.FuncGPIO {
			t.Fatalf("GPIO%d should be a GPIO output", n)
		}
	}
	if owner, ok := r.reg.BusOwner("spi0"); !ok || owner != "display" {
		t.Fatal("spi0 not held by the display")
	}

	// One 320x240 display bound to it.
	d, ok := r.slot.Display()
	if !ok {
		t.Fatal("slot empty after successful Init")
	}
	if w, h := d.Size(); w != 320 || h != 240 {
		t.Fatalf("size = %dx%d", w, h)
	}
	info := d.Info()
	if info.Rotation != 0 || info.ColorDepth != 16 || !info.AutoRefresh || info.FramesPerSecond != 60 {
		t.Fatalf("display info = %+v", info)
	}
	if info.Brightness != 1.0 || info.HasBacklight {
		t.Fatalf("backlight = %+v", info)
	}

	st := r.slot.State()
	if st.Level != types.BoardReady || st.Board != "gametiger_rp2040" {
		t.Fatalf("state = %+v", st)
	}
}

func TestTransportParametersPassThrough(t *testing.T) {
	r := newRig(t, nil)
	if err := r.init(); err != nil {
		t.Fatal(err)
	}
	w, ok := r.slot.Bus()
	if !ok {
		t.Fatal("no transport")
	}
	c := w.Config()
	if c.BaudRate != 62_500_000 || c.Polarity != 0 || c.Phase != 0 {
		t.Fatalf("transport config = %+v", c)
	}
	cfgs := r.host.SPI("spi0").Configs()
	if len(cfgs) == 0 {
		t.Fatal("bus never configured")
	}
	for _, c := range cfgs {
		if c.Baud != 62_500_000 || c.Mode != 0 {
			t.Fatalf("bus configured with %+v", c)
		}
	}
	bi, ok := r.slot.BusInfo()
	if !ok || bi.SCK != 2 || bi.SDO != 3 || bi.SDI != 0 || bi.DC != 0 || bi.CS != 1 || bi.RST != 4 {
		t.Fatalf("bus info = %+v", bi)
	}
}

func TestInitSequenceReachesTheWire(t *testing.T) {
	r := newRig(t, nil)
	if err := r.init(); err != nil {
		t.Fatal(err)
	}
	recs, _ := busdisplay.Parse(setups.GameTigerInitSequence)
	var want []byte
	for _, rec := range recs {
		want = append(want, rec.Cmd)
		want = append(want, rec.Data...)
	}
	if got := r.host.SPI("spi0").Written(); !bytes.Equal(got, want) {
		t.Fatalf("wire bytes:\n got % x\nwant % x", got, want)
	}

	// Reset pulse (1 ms, 1 ms) then the three 120 ms command delays.
	wantSleeps := []time.Duration{
		time.Millisecond, time.Millisecond,
		120 * time.Millisecond, 120 * time.Millisecond, 120 * time.Millisecond,
	}
	if len(r.sleeps) != len(wantSleeps) {
		t.Fatalf("sleeps = %v", r.sleeps)
	}
	for i := range wantSleeps {
		if r.sleeps[i] != wantSleeps[i] {
			t.Fatalf("sleeps = %v", r.sleeps)
		}
	}

	// RST: driven high, pulsed low, released high.
	hist := r.host.Pin(4).History()
	if len(hist) != 3 || !hist[0] || hist[1] || !hist[2] {
		t.Fatalf("rst history = %v", hist)
	}
	// CS ends deasserted.
	if !r.host.Pin(1).Get() {
		t.Fatal("CS left asserted")
	}
}

func TestSecondInitRejected(t *testing.T) {
	r := newRig(t, nil)
	if err := r.init(); err != nil {
		t.Fatal(err)
	}
	first, _ := r.slot.Display()
	err := r.init()
	if !errors.Is(err, errcode.AlreadyInitialised) {
		t.Fatalf("want AlreadyInitialised, got %v", err)
	}
	if d, _ := r.slot.Display(); d != first {
		t.Fatal("slot changed on second Init")
	}
	if r.slot.State().Level != types.BoardReady {
		t.Fatal("state changed on second Init")
	}
}

func TestPinInUseLeavesSlotEmpty(t *testing.T) {
	r := newRig(t, nil)
	if _, err := r.reg.ClaimGPIO("keys", 1); err != nil {
		t.Fatal(err)
	}

	err := r.init()
	if !errors.Is(err, errcode.PinInUse) {
		t.Fatalf("want PinInUse, got %v", err)
	}
	var e *errcode.E
	if !errors.As(err, &e) || e.Op != "board_transport" {
		t.Fatalf("error should name the failing step, got %v", err)
	}
	if _, ok := r.slot.Display(); ok {
		t.Fatal("slot filled after failure")
	}
	if _, ok := r.slot.Bus(); ok {
		t.Fatal("transport kept after failure")
	}
	if st := r.slot.State(); st.Level != types.BoardFailed || st.Status != string(errcode.PinInUse) {
		t.Fatalf("state = %+v", st)
	}

	// Everything claimed before the failure is released.
	if _, ok := r.reg.BusOwner("spi0"); ok {
		t.Fatal("spi0 still claimed")
	}
	for _, n := range []int{0, 2, 3, 4} {
		if _, _, ok := r.reg.Owner(n); ok {
			t.Fatalf("GPIO%d still claimed", n)
		}
	}
	if dev, _, _ := r.reg.Owner(1); dev != "keys" {
		t.Fatal("foreign claim disturbed")
	}

	// Bring-up is not retried, even once the pin is free.
	r.reg.ReleaseGPIO("keys", 1)
	if again := r.init(); again != err {
		t.Fatalf("second Init = %v, want the original failure", again)
	}
	if _, ok := r.reg.BusOwner("spi0"); ok {
		t.Fatal("second Init claimed the bus")
	}
}

func TestBusInUse(t *testing.T) {
	r := newRig(t, nil)
	if _, err := r.reg.ClaimSPI("sdcard", "spi0"); err != nil {
		t.Fatal(err)
	}
	err := r.init()
	if !errors.Is(err, errcode.BusInUse) {
		t.Fatalf("want BusInUse, got %v", err)
	}
	if _, _, ok := r.reg.Owner(1); ok {
		t.Fatal("CS claimed despite bus failure")
	}
}

func TestDisplayFailureRollsBack(t *testing.T) {
	r := newRig(t, nil)
	r.plan.Panel.ColorDepth = 8
	err := r.init()
	if !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("want Unsupported, got %v", err)
	}
	for n := 0; n <= 4; n++ {
		if _, _, ok := r.reg.Owner(n); ok {
			t.Fatalf("GPIO%d still claimed", n)
		}
	}
}

func TestMalformedSequenceIsInvalidParams(t *testing.T) {
	r := newRig(t, nil)
	r.plan.Panel.InitSequence = []byte{0x01, 0x80}
	if err := r.init(); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("want InvalidParams, got %v", err)
	}
}

func TestResetAllKeepsDisplayResources(t *testing.T) {
	r := newRig(t, nil)
	if err := r.init(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.reg.ClaimGPIO("keys", 17); err != nil {
		t.Fatal(err)
	}
	r.reg.ResetAll()

	for n := 0; n <= 4; n++ {
		if dev, _, ok := r.reg.Owner(n); !ok || dev != "display" {
			t.Fatalf("GPIO%d lost by the display", n)
		}
	}
	if _, ok := r.reg.BusOwner("spi0"); !ok {
		t.Fatal("spi0 reset")
	}
	if _, _, ok := r.reg.Owner(17); ok {
		t.Fatal("GPIO17 survived ResetAll")
	}
	d, _ := r.slot.Display()
	if err := d.Refresh(); err != nil {
		t.Fatalf("display unusable after ResetAll: %v", err)
	}
}

func TestStatePublished(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("board")
	r := newRig(t, conn)

	if m, ok := b.Retained(TopicState); !ok || m.Payload.(types.BoardState).Level != types.BoardIdle {
		t.Fatal("idle state not published")
	}
	if err := r.init(); err != nil {
		t.Fatal(err)
	}

	watcher := b.NewConnection("watcher")
	sub := watcher.Subscribe(bus.Topic{"board", bus.Tail})
	got := map[string]any{}
	for i := 0; i < 3; i++ {
		select {
		case m := <-sub.Channel():
			got[m.Topic.String()] = m.Payload
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("only %d retained messages", i)
		}
	}
	if st := got["board/state"].(types.BoardState); st.Level != types.BoardReady {
		t.Fatalf("state = %+v", st)
	}
	if di := got["board/display/info"].(types.DisplayInfo); di.Width != 320 || di.Height != 240 {
		t.Fatalf("display info = %+v", di)
	}
	if bi := got["board/display/bus"].(types.BusInfo); bi.BaudRate != 62_500_000 {
		t.Fatalf("bus info = %+v", bi)
	}
}

func TestAttachAfterInitPublishesReadyState(t *testing.T) {
	r := newRig(t, nil)
	if err := r.init(); err != nil {
		t.Fatal(err)
	}

	b := bus.NewBus(8)
	r.slot.Attach(b.NewConnection("board"))
	m, ok := b.Retained(TopicState)
	if !ok || m.Payload.(types.BoardState).Level != types.BoardReady {
		t.Fatal("ready state not retained on attach")
	}
	if _, ok := b.Retained(TopicDisplay); !ok {
		t.Fatal("display info not retained on attach")
	}
}

func TestFailureStatePublished(t *testing.T) {
	b := bus.NewBus(8)
	r := newRig(t, b.NewConnection("board"))
	_, _ = r.reg.ClaimGPIO("keys", 4)
	_ = r.init()
	m, ok := b.Retained(TopicState)
	if !ok {
		t.Fatal("no state")
	}
	if st := m.Payload.(types.BoardState); st.Level != types.BoardFailed || st.Status != "pin_in_use" {
		t.Fatalf("state = %+v", st)
	}
}

func TestPackageDefaultOnHost(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	d, ok := Display()
	if !ok {
		t.Fatal("Default slot empty")
	}
	if w, h := d.Size(); w != 320 || h != 240 {
		t.Fatalf("size = %dx%d", w, h)
	}
	if err := Init(); !errors.Is(err, errcode.AlreadyInitialised) {
		t.Fatalf("want AlreadyInitialised, got %v", err)
	}

	con, err := Console()
	if err != nil {
		t.Fatalf("Console: %v", err)
	}
	if _, err := con.Write([]byte("ok\n")); err != nil {
		t.Fatal(err)
	}
	ResetAll()
	if _, ok := Display(); !ok {
		t.Fatal("display lost on ResetAll")
	}
}
