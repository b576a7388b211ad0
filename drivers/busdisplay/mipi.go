package busdisplay

// MIPI DCS opcodes used for addressing and pixel writes.
const (
	MIPISoftReset         = 0x01
	MIPIExitSleepMode     = 0x11
	MIPISetDisplayOn      = 0x29
	MIPISetColumnAddress  = 0x2A
	MIPISetPageAddress    = 0x2B
	MIPIWriteMemoryStart  = 0x2C
	MIPISetAddressMode    = 0x36
	MIPISetPixelFormat    = 0x3A
	MIPISetDisplayOff     = 0x28
	MIPIEnterSleepMode    = 0x10
	MIPIWriteDisplayBrite = 0x51
)
