package setups

import (
	"gametiger-go/drivers/busdisplay"
	"gametiger-go/drivers/fourwire"
)

// ResourcePlan specifies wiring and operating parameters chosen by a setup.
// Providers consume this plan to instantiate resource owners.
type ResourcePlan struct {
	SPI  []SPIPlan
	UART []UARTPlan
}

type SPIPlan struct {
	ID  string // e.g. "spi0"
	SCK int    // GPIO number
	SDO int    // GPIO number
	SDI int    // GPIO number, -1 when unused
	Hz  uint32 // initial bus frequency

	HalfDuplex bool // SDO doubles as the data-in line
}

type UARTPlan struct {
	ID   string // e.g. "uart0"
	TX   int    // GPIO number
	RX   int    // GPIO number
	Baud uint32
}

// DisplayPlan is the display bring-up recipe: which bus, which control
// lines, and the transport and panel parameters.
type DisplayPlan struct {
	DevID     string
	Bus       string
	DC        int
	CS        int
	RST       int // -1 when not wired
	Transport fourwire.Config
	Panel     busdisplay.Config
}

// SPIByID returns the plan entry for id.
func (p ResourcePlan) SPIByID(id string) (SPIPlan, bool) {
	for _, s := range p.SPI {
		if s.ID == id {
			return s, true
		}
	}
	return SPIPlan{}, false
}

// UARTByID returns the plan entry for id.
func (p ResourcePlan) UARTByID(id string) (UARTPlan, bool) {
	for _, u := range p.UART {
		if u.ID == id {
			return u, true
		}
	}
	return UARTPlan{}, false
}
