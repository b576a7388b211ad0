// Package busdisplay drives a MIPI-style display controller over a framed
// command/data bus.
//
// New replays the controller's init sequence once, in order, then keeps an
// RGB565 frame buffer. Drawing marks a dirty window; Display (or the
// auto-refresh loop in Run) pushes only that window to the panel using the
// configured column, row and memory-write opcodes.
//
// Only 16-bit colour is implemented. Backlight settings are carried for
// boards that wire one; with no backlight pin and no brightness command they
// are inert and brightness stays at 1.0.
package busdisplay

import (
	"context"
	"image/color"
	"sync"
	"time"

	"gametiger-go/errcode"
	"gametiger-go/pins"
	"gametiger-go/types"
	"gametiger-go/x/mathx"
	"gametiger-go/x/timex"

	"tinygo.org/x/drivers"
)

// Bus is the framed transport the display talks through.
type Bus interface {
	BeginTransaction() error
	WriteCommand(cmd ...byte) error
	WriteData(data []byte) error
	EndTransaction()
}

// NoBrightnessCommand marks a controller without a brightness register.
const NoBrightnessCommand = -1

// Config is the full panel description.
type Config struct {
	// Geometry after rotation.
	Width, Height      uint16
	ColStart, RowStart uint16
	Rotation           uint16 // degrees: 0, 90, 180 or 270

	// Pixel format.
	ColorDepth           uint8
	Grayscale            bool
	PixelsInByteShareRow bool  // depths < 8 only
	BytesPerCell         uint8 // depths < 8 only
	ReversePixelsInByte  bool  // depths < 8 only
	ReversePixelsInWord  bool  // high byte first on the wire

	// Addressing opcodes.
	SetColumnCommand byte
	SetRowCommand    byte
	WriteRAMCommand  byte
	SingleByteBounds bool
	DataAsCommands   bool
	SH1107Addressing bool

	InitSequence []byte

	// Backlight. BacklightPin is pins.NoPin and BrightnessCommand is
	// NoBrightnessCommand when the board has neither.
	BacklightPin          pins.Pin
	BrightnessCommand     int
	Brightness            float32
	BacklightOnHigh       bool
	BacklightPWMFrequency uint32

	// Refresh.
	AutoRefresh           bool
	NativeFramesPerSecond uint16

	// Sleep is used for init-sequence delays. Defaults to time.Sleep.
	Sleep timex.Sleeper
}

// Display is one panel bound to one bus.
type Display struct {
	mu  sync.Mutex
	bus Bus
	cfg Config

	nativeW, nativeH int16
	buf              []byte // RGB565, native orientation, wire byte order

	dirty                  bool
	minX, minY, maxX, maxY int16 // native coordinates, inclusive

	auto       bool
	brightness float32
}

var _ drivers.Displayer = (*Display)(nil)

// New validates cfg and replays the init sequence over bus.
func New(bus Bus, cfg Config) (*Display, error) {
	recs, err := validate(bus, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.Sleep = cfg.Sleep.Or()

	d := &Display{
		bus:        bus,
		cfg:        cfg,
		auto:       cfg.AutoRefresh,
		brightness: mathx.Clamp(cfg.Brightness, 0, 1),
	}
	d.nativeW, d.nativeH = int16(cfg.Width), int16(cfg.Height)
	if cfg.Rotation == 90 || cfg.Rotation == 270 {
		d.nativeW, d.nativeH = d.nativeH, d.nativeW
	}

	if err := d.runInit(recs); err != nil {
		return nil, err
	}
	d.buf = make([]byte, int(cfg.Width)*int(cfg.Height)*2)
	d.clearDirty()
	return d, nil
}

func validate(bus Bus, cfg *Config) ([]Record, error) {
	const op = "busdisplay"
	switch {
	case bus == nil:
		return nil, errcode.New(errcode.InvalidParams, op, "nil bus")
	case cfg.Width == 0 || cfg.Height == 0:
		return nil, errcode.New(errcode.InvalidParams, op, "zero size")
	case cfg.Width > 0x7FFF || cfg.Height > 0x7FFF:
		return nil, errcode.New(errcode.InvalidParams, op, "size out of range")
	case cfg.Rotation%90 != 0 || cfg.Rotation >= 360:
		return nil, errcode.New(errcode.InvalidParams, op, "rotation must be 0, 90, 180 or 270")
	case cfg.ColorDepth != 16:
		return nil, errcode.New(errcode.Unsupported, op, "only 16-bit colour")
	case cfg.Grayscale:
		return nil, errcode.New(errcode.Unsupported, op, "grayscale")
	case cfg.SH1107Addressing:
		return nil, errcode.New(errcode.Unsupported, op, "SH1107 addressing")
	case cfg.AutoRefresh && cfg.NativeFramesPerSecond == 0:
		return nil, errcode.New(errcode.InvalidParams, op, "auto refresh needs a frame rate")
	case cfg.Brightness < 0 || cfg.Brightness > 1:
		return nil, errcode.New(errcode.InvalidParams, op, "brightness outside 0..1")
	}
	if cfg.BacklightPin != pins.NoPin && !cfg.BacklightPin.Valid() {
		return nil, errcode.New(errcode.UnknownPin, op, "backlight")
	}
	recs, err := Parse(cfg.InitSequence)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// runInit sends every record in order, one transaction each. A failure stops
// the sequence; nothing is retried.
func (d *Display) runInit(recs []Record) error {
	for _, r := range recs {
		if err := d.bus.BeginTransaction(); err != nil {
			return errcode.Wrap("busdisplay_init", err)
		}
		err := d.writeRecord(r)
		d.bus.EndTransaction()
		if err != nil {
			return errcode.Wrap("busdisplay_init", err)
		}
		if r.Delay > 0 {
			d.cfg.Sleep(r.Delay)
		}
	}
	return nil
}

func (d *Display) writeRecord(r Record) error {
	if d.cfg.DataAsCommands {
		return d.bus.WriteCommand(append([]byte{r.Cmd}, r.Data...)...)
	}
	if err := d.bus.WriteCommand(r.Cmd); err != nil {
		return err
	}
	return d.bus.WriteData(r.Data)
}

// Config returns the configuration the display was built with.
func (d *Display) Config() Config { return d.cfg }

// Size returns the logical (rotated) size.
func (d *Display) Size() (x, y int16) {
	return int16(d.cfg.Width), int16(d.cfg.Height)
}

// toNative maps logical coordinates to controller RAM orientation.
func (d *Display) toNative(x, y int16) (int16, int16) {
	w, h := int16(d.cfg.Width), int16(d.cfg.Height)
	switch d.cfg.Rotation {
	case 90:
		return y, w - 1 - x
	case 180:
		return w - 1 - x, h - 1 - y
	case 270:
		return h - 1 - y, x
	default:
		return x, y
	}
}

func (d *Display) encode(c color.RGBA) (hi, lo byte) {
	v := uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3
	if d.cfg.ReversePixelsInWord {
		return byte(v >> 8), byte(v)
	}
	return byte(v), byte(v >> 8)
}

func (d *Display) inBounds(x, y int16) bool {
	return x >= 0 && y >= 0 && x < int16(d.cfg.Width) && y < int16(d.cfg.Height)
}

// SetPixel writes one pixel to the frame buffer. Out-of-range writes are
// ignored.
func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	if !d.inBounds(x, y) {
		return
	}
	hi, lo := d.encode(c)
	d.mu.Lock()
	d.put(x, y, hi, lo)
	d.mu.Unlock()
}

// caller holds lock
func (d *Display) put(x, y int16, hi, lo byte) {
	nx, ny := d.toNative(x, y)
	i := (int(ny)*int(d.nativeW) + int(nx)) * 2
	d.buf[i], d.buf[i+1] = hi, lo
	d.markDirty(nx, ny)
}

// caller holds lock
func (d *Display) markDirty(nx, ny int16) {
	if !d.dirty {
		d.minX, d.maxX, d.minY, d.maxY = nx, nx, ny, ny
		d.dirty = true
		return
	}
	d.minX, d.maxX = mathx.Min(d.minX, nx), mathx.Max(d.maxX, nx)
	d.minY, d.maxY = mathx.Min(d.minY, ny), mathx.Max(d.maxY, ny)
}

// caller holds lock
func (d *Display) clearDirty() {
	d.dirty = false
	d.minX, d.minY, d.maxX, d.maxY = 0, 0, -1, -1
}

// FillRectangle paints a logical rectangle. It is clipped to the panel.
func (d *Display) FillRectangle(x, y, w, h int16, c color.RGBA) error {
	if w <= 0 || h <= 0 {
		return errcode.New(errcode.InvalidParams, "busdisplay", "empty rectangle")
	}
	x0, y0 := mathx.Max(x, 0), mathx.Max(y, 0)
	x1 := mathx.Min(x+w, int16(d.cfg.Width))
	y1 := mathx.Min(y+h, int16(d.cfg.Height))
	hi, lo := d.encode(c)
	d.mu.Lock()
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.put(px, py, hi, lo)
		}
	}
	d.mu.Unlock()
	return nil
}

// FillScreen paints the whole panel.
func (d *Display) FillScreen(c color.RGBA) {
	_ = d.FillRectangle(0, 0, int16(d.cfg.Width), int16(d.cfg.Height), c)
}

// Dirty reports whether the frame buffer holds unsent changes.
func (d *Display) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Display pushes the dirty window to the panel.
func (d *Display) Display() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return nil
	}
	if err := d.flush(d.minX, d.minY, d.maxX, d.maxY); err != nil {
		return err
	}
	d.clearDirty()
	return nil
}

// Refresh is Display under the name the refresh loop uses.
func (d *Display) Refresh() error { return d.Display() }

// caller holds lock
func (d *Display) flush(x0, y0, x1, y1 int16) error {
	if err := d.bus.BeginTransaction(); err != nil {
		return errcode.Wrap("busdisplay_flush", err)
	}
	defer d.bus.EndTransaction()

	cx0, cx1 := uint16(x0)+d.cfg.ColStart, uint16(x1)+d.cfg.ColStart
	ry0, ry1 := uint16(y0)+d.cfg.RowStart, uint16(y1)+d.cfg.RowStart
	if err := d.writeBounds(d.cfg.SetColumnCommand, cx0, cx1); err != nil {
		return err
	}
	if err := d.writeBounds(d.cfg.SetRowCommand, ry0, ry1); err != nil {
		return err
	}
	if err := d.bus.WriteCommand(d.cfg.WriteRAMCommand); err != nil {
		return err
	}

	stride := int(d.nativeW) * 2
	span := (int(x1) - int(x0) + 1) * 2
	if span == stride {
		start := int(y0) * stride
		return d.bus.WriteData(d.buf[start : start+(int(y1)-int(y0)+1)*stride])
	}
	for y := int(y0); y <= int(y1); y++ {
		start := y*stride + int(x0)*2
		if err := d.bus.WriteData(d.buf[start : start+span]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) writeBounds(cmd byte, lo, hi uint16) error {
	var b []byte
	if d.cfg.SingleByteBounds {
		b = []byte{byte(lo), byte(hi)}
	} else {
		b = []byte{byte(lo >> 8), byte(lo), byte(hi >> 8), byte(hi)}
	}
	if d.cfg.DataAsCommands {
		return d.bus.WriteCommand(append([]byte{cmd}, b...)...)
	}
	if err := d.bus.WriteCommand(cmd); err != nil {
		return err
	}
	return d.bus.WriteData(b)
}

// AutoRefresh reports whether Run pushes frames on its own.
func (d *Display) AutoRefresh() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.auto
}

// SetAutoRefresh turns the refresh loop on or off. Turning it on requires a
// frame rate.
func (d *Display) SetAutoRefresh(on bool) error {
	if on && d.cfg.NativeFramesPerSecond == 0 {
		return errcode.New(errcode.InvalidParams, "busdisplay", "no frame rate")
	}
	d.mu.Lock()
	d.auto = on
	d.mu.Unlock()
	return nil
}

// FramePeriod is the refresh interval at the native frame rate.
func (d *Display) FramePeriod() time.Duration {
	return timex.Period(uint32(d.cfg.NativeFramesPerSecond))
}

// Run flushes dirty frames at the native frame rate while auto-refresh is on.
// It returns when ctx is done.
func (d *Display) Run(ctx context.Context) error {
	if d.cfg.NativeFramesPerSecond == 0 {
		return errcode.New(errcode.InvalidParams, "busdisplay", "no frame rate")
	}
	tick := time.NewTicker(d.FramePeriod())
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if !d.AutoRefresh() {
				continue
			}
			if err := d.Display(); err != nil {
				return err
			}
		}
	}
}

// Brightness returns the current backlight level in 0..1.
func (d *Display) Brightness() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// SetBrightness changes the backlight level through the brightness command.
// Panels with neither a brightness command nor a backlight pin keep 1.0.
func (d *Display) SetBrightness(v float32) error {
	if v < 0 || v > 1 {
		return errcode.New(errcode.InvalidParams, "busdisplay", "brightness outside 0..1")
	}
	if d.cfg.BrightnessCommand < 0 {
		// TODO: drive BacklightPin with PWM at BacklightPWMFrequency once a board wires one.
		return errcode.New(errcode.Unsupported, "busdisplay", "no brightness control")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.bus.BeginTransaction(); err != nil {
		return errcode.Wrap("busdisplay_brightness", err)
	}
	defer d.bus.EndTransaction()
	if err := d.bus.WriteCommand(byte(d.cfg.BrightnessCommand)); err != nil {
		return err
	}
	if err := d.bus.WriteData([]byte{byte(v * 255)}); err != nil {
		return err
	}
	d.brightness = v
	return nil
}

// Info summarises the panel for diagnostics.
func (d *Display) Info() types.DisplayInfo {
	return types.DisplayInfo{
		Width:           d.cfg.Width,
		Height:          d.cfg.Height,
		Rotation:        d.cfg.Rotation,
		ColorDepth:      d.cfg.ColorDepth,
		AutoRefresh:     d.AutoRefresh(),
		FramesPerSecond: d.cfg.NativeFramesPerSecond,
		Brightness:      d.Brightness(),
		HasBacklight:    d.cfg.BacklightPin != pins.NoPin,
		BacklightPWMHz:  d.cfg.BacklightPWMFrequency,
	}
}
