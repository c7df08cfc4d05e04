package engine

import (
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

const (
	// CustomPlaceSeed places one pomegranate seed into the vessel named by the
	// "vesselId" parameter.
	CustomPlaceSeed = "place_seed"

	// PomegranateSeedName is the display name place_seed consumes from inventory.
	PomegranateSeedName = "Pomegranate Seed"
)

func placeSeed(e *Engine, a game.Custom) []command.Command {
	vesselID := a.Param("vesselId")
	if vesselID == "" {
		e.logger.Warn("place_seed without vesselId")
		return nil
	}
	if e.doc.CountInventoryByName(PomegranateSeedName) == 0 {
		return []command.Command{command.Log{Message: "You have no pomegranate seeds to place."}}
	}

	cmds := e.exec(game.RemoveFromInventoryByName{ItemName: PomegranateSeedName, Count: 1})
	cmds = append(cmds, command.UpdateVesselTexture{VesselID: vesselID, Activated: true})
	cmds = append(cmds, e.exec(game.SetInteractive{EntityID: vesselID, Mode: game.NotInteractive})...)
	placed := e.doc.IncrementCounter(game.CounterSeedsPlaced)
	e.logger.Info("Seed placed", "vessel_id", vesselID, "seeds_placed", placed)

	return append(cmds, e.checkObjectives("")...)
}
