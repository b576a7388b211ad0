package board

import (
	"io"
	"sync"

	"gametiger-go/drivers/busdisplay"
	"gametiger-go/errcode"
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/provider"
	"gametiger-go/services/board/internal/provider/setups"
)

// Default is the board-wide display slot.
var Default = NewSlot(nil)

var (
	resOnce sync.Once
	res     core.Resources
	resErr  error
)

func resources() (core.Resources, error) {
	resOnce.Do(func() {
		res, resErr = provider.NewResources()
		if resErr != nil {
			resErr = errcode.Wrap("board_resources", resErr)
		}
	})
	return res, resErr
}

// Init brings up the board display into Default.
func Init() error {
	r, err := resources()
	if err != nil {
		return err
	}
	return Default.Init(r.Reg, provider.SelectedDisplay)
}

// Display returns the board display after a successful Init.
func Display() (*busdisplay.Display, bool) { return Default.Display() }

// Console claims the console UART. It survives ResetAll.
func Console() (io.Writer, error) {
	r, err := resources()
	if err != nil {
		return nil, err
	}
	id := core.ResourceID(setups.ConsoleUART)
	p, err := r.Reg.ClaimSerial("console", id)
	if err != nil {
		return nil, errcode.Wrap("console", err)
	}
	r.Reg.NeverResetBus(id)
	return p, nil
}

// ResetAll releases every claim not needed by the display or the console,
// as on a soft reload.
func ResetAll() {
	if r, err := resources(); err == nil {
		r.Reg.ResetAll()
	}
}

// InitSequence returns a copy of the panel init sequence this build uses.
func InitSequence() []byte {
	return append([]byte(nil), provider.SelectedDisplay.Panel.InitSequence...)
}
