package core

import (
	"gametiger-go/drivers/fourwire"
)

// ---- Bus taxonomy ----

type BusClass uint8

const (
	BusTransactional BusClass = iota // SPI
	BusStream                        // UART
)

type ResourceID string // e.g. "spi0", "uart0"

// ---- GPIO handles ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOHandle interface {
	Number() int
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(bool)
	Get() bool
}

// ---- SPI ----

// SPIHandle is a claimed SPI controller with its SCK/SDO/SDI pins.
// Configure may be called before every transaction.
type SPIHandle interface {
	fourwire.SPI
	ID() ResourceID
	Pins() (sck, sdo, sdi int)
}

// ---- Stream buses ----

type SerialPort interface {
	Write(p []byte) (int, error)
}

// ---- Unified registry interface ----

// ResourceRegistry arbitrates pins and controllers between devices.
// A pin claimed as an SPI line may be re-claimed as a GPIO by the same
// device; any other overlap is refused.
type ResourceRegistry interface {
	ClassOf(id ResourceID) (BusClass, bool)

	// SPI (claims the controller and the pins named by the plan)
	ClaimSPI(devID string, id ResourceID) (SPIHandle, error)
	ReleaseSPI(devID string, id ResourceID)

	// GPIO
	ClaimGPIO(devID string, pin int) (GPIOHandle, error)
	ReleaseGPIO(devID string, pin int)

	// Serial
	ClaimSerial(devID string, id ResourceID) (SerialPort, error)
	ReleaseSerial(devID string, id ResourceID)

	// Reset protection. ResetAll releases every claim that was not marked;
	// marked resources keep their owner and hardware state across soft resets.
	NeverResetBus(id ResourceID)
	NeverResetPin(pin int)
	ResetAll()
}

// ---- HAL-injected resources ----

type Resources struct {
	Reg ResourceRegistry
}

// Pin functions as tracked by the registry.
type PinFunc uint8

const (
	FuncNone PinFunc = iota
	FuncGPIO
	FuncSPI
	FuncUART
)
