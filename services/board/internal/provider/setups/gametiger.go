package setups

import (
	"gametiger-go/drivers/busdisplay"
	"gametiger-go/drivers/fourwire"
	"gametiger-go/pins"
)

// ConsoleUART carries the log console. GPIO12/13 are not routed on the board.
const ConsoleUART = "uart0"

var GameTigerPlan = ResourcePlan{
	SPI: []SPIPlan{
		{ID: "spi0", SCK: int(pins.LCD_CLK), SDO: int(pins.LCD_DATA), SDI: int(pins.GPIO0), Hz: 62_500_000, HalfDuplex: false},
	},
	UART: []UARTPlan{
		{ID: ConsoleUART, TX: 12, RX: 13, Baud: 115_200},
	},
}

// GameTigerInitSequence brings the ST7789 out of reset into RGB565, landscape.
var GameTigerInitSequence = []byte{
	0x01, 0x80, 120, // SWRESET
	0x11, 0x80, 120, // SLPOUT
	0x36, 1, 0x70, // MADCTL
	0x3A, 1, 0x55, // COLMOD 16bpp
	0xB2, 5, 0x0C, 0x0C, 0x00, 0x33, 0x33, // PORCTRL
	0xB7, 1, 0x75, // GCTRL
	0xBB, 1, 0x2B, // VCOMS
	0xC0, 1, 0x2C, // LCMCTRL
	0xC2, 1, 0x01, // VDVVRHEN
	0xC3, 1, 0x0B, // VRHS
	0xC4, 1, 0x20, // VDVS
	0xC6, 1, 0x0F, // FRCTRL2
	0xD0, 2, 0xA4, 0xA1, // PWCTRL1
	0xE0, 14, 0xD0, 0x01, 0x04, 0x09, 0x0B, 0x07, 0x2E, 0x44, 0x43, 0x0B, 0x16, 0x15, 0x17, 0x1D, // PVGAMCTRL
	0xE1, 14, 0xD0, 0x01, 0x05, 0x0A, 0x0B, 0x08, 0x2F, 0x44, 0x41, 0x0A, 0x15, 0x14, 0x19, 0x1D, // NVGAMCTRL
	0x29, 0x80, 120, // DISPON
}

var GameTigerDisplay = DisplayPlan{
	DevID: "display",
	Bus:   "spi0",
	DC:    int(pins.LCD_DC),
	CS:    int(pins.LCD_CS),
	RST:   int(pins.LCD_RESET),
	Transport: fourwire.Config{
		BaudRate: 62_500_000,
		Polarity: 0,
		Phase:    0,
	},
	Panel: busdisplay.Config{
		Width:                 320,
		Height:                240,
		ColStart:              0,
		RowStart:              0,
		Rotation:              0,
		ColorDepth:            16,
		Grayscale:             false,
		PixelsInByteShareRow:  false,
		BytesPerCell:          1,
		ReversePixelsInByte:   false,
		ReversePixelsInWord:   true,
		SetColumnCommand:      busdisplay.MIPISetColumnAddress,
		SetRowCommand:         busdisplay.MIPISetPageAddress,
		WriteRAMCommand:       busdisplay.MIPIWriteMemoryStart,
		InitSequence:          GameTigerInitSequence,
		BacklightPin:          pins.NoPin,
		BrightnessCommand:     busdisplay.NoBrightnessCommand,
		Brightness:            1.0,
		SingleByteBounds:      false,
		DataAsCommands:        false,
		AutoRefresh:           true,
		NativeFramesPerSecond: 60,
		BacklightOnHigh:       true,
		SH1107Addressing:      false,
		BacklightPWMFrequency: 50_000,
	},
}
