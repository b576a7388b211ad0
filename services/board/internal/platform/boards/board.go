package boards

// Board describes what the SoC can do (controllers present, GPIO range, which
// pins can carry each controller's signals).
// It must not include wiring choices or operating parameters (clock rates).
type Board struct {
	Name             string
	GPIOMin, GPIOMax int

	SPI  map[string]SPIPins
	UART map[string]UARTPins
}

// SPIPins lists the GPIOs each SPI signal may be muxed to.
type SPIPins struct {
	SCK, SDO, SDI []int
}

// UARTPins lists the GPIOs each UART signal may be muxed to.
type UARTPins struct {
	TX, RX []int
}

// RP2040 is the function-select table from the RP2040 datasheet (GPIO
// function F1 for SPI, F2 for UART).
var RP2040 = Board{
	Name:    "rp2040",
	GPIOMin: 0,
	GPIOMax: 29,
	SPI: map[string]SPIPins{
		"spi0": {SCK: []int{2, 6, 18, 22}, SDO: []int{3, 7, 19, 23}, SDI: []int{0, 4, 16, 20}},
		"spi1": {SCK: []int{10, 14, 26}, SDO: []int{11, 15, 27}, SDI: []int{8, 12, 24, 28}},
	},
	UART: map[string]UARTPins{
		"uart0": {TX: []int{0, 12, 16, 28}, RX: []int{1, 13, 17, 29}},
		"uart1": {TX: []int{4, 8, 20, 24}, RX: []int{5, 9, 21, 25}},
	},
}

// InRange reports whether n is a user GPIO on this board.
func (b Board) InRange(n int) bool { return n >= b.GPIOMin && n <= b.GPIOMax }

// CanSPI reports whether the pins can be muxed to controller id.
// sdi < 0 means the receive line is not used.
func (b Board) CanSPI(id string, sck, sdo, sdi int) bool {
	p, ok := b.SPI[id]
	if !ok {
		return false
	}
	return has(p.SCK, sck) && has(p.SDO, sdo) && (sdi < 0 || has(p.SDI, sdi))
}

// CanUART reports whether the pins can be muxed to controller id.
func (b Board) CanUART(id string, tx, rx int) bool {
	p, ok := b.UART[id]
	if !ok {
		return false
	}
	return has(p.TX, tx) && has(p.RX, rx)
}

func has(set []int, n int) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}
