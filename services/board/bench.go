//go:build !rp2040

package board

import (
	"gametiger-go/services/board/internal/platform/boards"
	"gametiger-go/services/board/internal/provider"
)

// BenchWiring maps the GameTiger plan onto a Linux SBC.
type BenchWiring struct {
	// Ports maps a bus id ("spi0") to a spidev port name; "" is the first port.
	Ports map[string]string
	// PinName maps a board GPIO number to a host pin name. Nil means "GPIO<n>".
	PinName func(n int) string
}

// InitBench brings up the panel through periph.io into a fresh slot.
func InitBench(w BenchWiring) (*Slot, error) {
	hw, err := provider.NewPeriph(w.Ports)
	if err != nil {
		return nil, err
	}
	hw.PinName = w.PinName
	reg, err := provider.NewRegistry(hw, boards.RP2040, provider.SelectedPlan)
	if err != nil {
		return nil, err
	}
	s := NewSlot(nil)
	if err := s.Init(reg, provider.SelectedDisplay); err != nil {
		return nil, err
	}
	return s, nil
}
