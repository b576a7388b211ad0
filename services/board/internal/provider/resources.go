package provider

import (
	"gametiger-go/services/board/internal/core"
	"gametiger-go/services/board/internal/platform/boards"
	"gametiger-go/services/board/internal/provider/setups"
)

// SelectedPlan and SelectedDisplay are the wiring this build brings up.
var (
	SelectedPlan    = setups.GameTigerPlan
	SelectedDisplay = setups.GameTigerDisplay
)

// NewResources constructs the registry for the platform backend chosen at
// build time (machine on rp2040, in-memory elsewhere).
func NewResources() (core.Resources, error) {
	reg, err := NewRegistry(platformBackend(), boards.RP2040, SelectedPlan)
	if err != nil {
		return core.Resources{}, err
	}
	return core.Resources{Reg: reg}, nil
}
