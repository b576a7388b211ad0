// Package pins is the GameTiger RP2040 board table: symbolic names bound to
// GPIO numbers, merged with the standard entries every board carries
// (board_id).
//
// Pins are plain GPIO numbers here; mapping to machine.Pin happens in the
// platform provider so this package builds on the host.
package pins

import (
	"gametiger-go/errcode"
	"gametiger-go/x/conv"
)

// BoardID names this board.
const BoardID = "gametiger_rp2040"

// Pin is an RP2040 GPIO number.
type Pin int8

// NoPin marks an unwired signal.
const NoPin Pin = -1

// User GPIOs on the RP2040.
const (
	GPIO0 Pin = iota
	GPIO1
	GPIO2
	GPIO3
	GPIO4
	GPIO5
	GPIO6
	GPIO7
	GPIO8
	GPIO9
	GPIO10
	GPIO11
	GPIO12
	GPIO13
	GPIO14
	GPIO15
	GPIO16
	GPIO17
	GPIO18
	GPIO19
	GPIO20
	GPIO21
	GPIO22
	GPIO23
	GPIO24
	GPIO25
	GPIO26
	GPIO27
	GPIO28
	GPIO29
)

// Power sensing
const (
	VBUS_DETECT = GPIO16
	BAT_SENSE   = GPIO26
)

// LCD (ST7789-class panel on SPI0)
const (
	LCD_RESET = GPIO4
	LCD_CS    = GPIO1
	LCD_CLK   = GPIO2
	LCD_DATA  = GPIO3
	LCD_DC    = GPIO0
)

const AUDIO = GPIO5

// Keypad
const (
	KB_UP     = GPIO17
	KB_DOWN   = GPIO20
	KB_RIGHT  = GPIO18
	KB_LEFT   = GPIO19
	KB_A      = GPIO6
	KB_B      = GPIO7
	KB_START  = GPIO8
	KB_SELECT = GPIO9
)

// SD card slot
const (
	SD_DETECT = GPIO21
	SD_CLK    = GPIO22
	SD_MISO   = GPIO23
	SD_MOSI   = GPIO24
	SD_CS     = GPIO25
)

// Valid reports whether p is a user GPIO.
func (p Pin) Valid() bool { return p >= GPIO0 && p <= GPIO29 }

func (p Pin) String() string {
	if !p.Valid() {
		return "NoPin"
	}
	return string(conv.AppendInt([]byte("GPIO"), int64(p)))
}

// Kind says what an entry refers to.
type Kind uint8

const (
	KindPin     Kind = iota
	KindDisplay      // the board display slot, see services/board
	KindBoardID      // the board identifier; its value is BoardID
)

// Entry binds one name. Pin is NoPin for non-pin entries.
type Entry struct {
	Name string
	Kind Kind
	Pin  Pin
}

// DisplayName is the entry under which the board display slot is published.
const DisplayName = "DISPLAY"

var boardEntries = []Entry{
	{Name: "VBUS_DETECT", Pin: VBUS_DETECT},
	{Name: "BAT_SENSE", Pin: BAT_SENSE},

	{Name: "LCD_RESET", Pin: LCD_RESET},
	{Name: "LCD_CS", Pin: LCD_CS},
	{Name: "LCD_CLK", Pin: LCD_CLK},
	{Name: "LCD_DATA", Pin: LCD_DATA},
	{Name: "LCD_DC", Pin: LCD_DC},

	{Name: "AUDIO", Pin: AUDIO},

	{Name: "KB_UP", Pin: KB_UP},
	{Name: "KB_DOWN", Pin: KB_DOWN},
	{Name: "KB_RIGHT", Pin: KB_RIGHT},
	{Name: "KB_LEFT", Pin: KB_LEFT},

	{Name: "KB_A", Pin: KB_A},
	{Name: "KB_B", Pin: KB_B},
	{Name: "KB_START", Pin: KB_START},
	{Name: "KB_SELECT", Pin: KB_SELECT},

	{Name: "SD_DETECT", Pin: SD_DETECT},
	{Name: "SD_CLK", Pin: SD_CLK},
	{Name: "SD_MISO", Pin: SD_MISO},
	{Name: "SD_MOSI", Pin: SD_MOSI},
	{Name: "SD_CS", Pin: SD_CS},

	{Name: DisplayName, Kind: KindDisplay, Pin: NoPin},
}

// BoardIDName is the standard entry carrying BoardID.
const BoardIDName = "board_id"

// StandardEntries returns the entries every board carries.
func StandardEntries() []Entry {
	return []Entry{{Name: BoardIDName, Kind: KindBoardID, Pin: NoPin}}
}

var (
	table []Entry
	index map[string]int
)

func init() {
	merged := append(StandardEntries(), boardEntries...)
	if err := Validate(merged); err != nil {
		panic(err)
	}
	table = merged
	index = make(map[string]int, len(merged))
	for i, e := range merged {
		index[e.Name] = i
	}
}

// Validate checks that names are unique and non-empty and that pin entries
// carry a user GPIO.
func Validate(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return errcode.New(errcode.InvalidParams, "pins", "empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return errcode.New(errcode.InvalidParams, "pins", "duplicate name "+e.Name)
		}
		seen[e.Name] = struct{}{}
		if e.Kind == KindPin && !e.Pin.Valid() {
			return errcode.New(errcode.UnknownPin, "pins", e.Name)
		}
	}
	return nil
}

// Lookup resolves a name. A miss is left to the caller.
func Lookup(name string) (Entry, bool) {
	i, ok := index[name]
	if !ok {
		return Entry{}, false
	}
	return table[i], true
}

// Entries returns a copy of the table, standard entries first.
func Entries() []Entry {
	return append([]Entry(nil), table...)
}

// Names returns the entry names in table order.
func Names() []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.Name
	}
	return out
}
