package bot

import (
	"fmt"
	"strings"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/service"
	"github.com/phrazzld/pokepc/internal/species"
)

const (
	maxStatValue = 255
	statBarSize  = 20
)

// Replies shared by several commands.
const (
	msgUnknownPokemon = "Unknown pokemon"
	msgError          = "An error occurred"
	msgInventoryFull  = "Your inventory is full"
	msgForbidden      = "You need the Administrator permission to act on another user"
	msgUnknownCommand = "Unknown command"
)

var statLabels = [domain.StatCount]string{"Hp", "Attack", "Defense", "Special-attack", "Special-defense", "Speed"}

func renderPageNotFound(n int) string {
	return fmt.Sprintf("Page %d not found", n)
}

// speciesLabel names a creature's species for listings.
func speciesLabel(c domain.Creature, r species.Result) string {
	switch r.Outcome {
	case species.Found:
		return fmt.Sprintf("%s (#%d)", r.Details.Name, c.SpeciesID)
	case species.Unknown:
		return fmt.Sprintf("Unknown Pokemon #%d", c.SpeciesID)
	default:
		return fmt.Sprintf("Unknown Pokemon #%d (could not fetch details)", c.SpeciesID)
	}
}

func renderPCPage(owner string, page service.PageResult) string {
	if !page.Found {
		return renderPageNotFound(page.Number)
	}
	if len(page.Entries) == 0 {
		return fmt.Sprintf("%s's PC is empty", owner)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s's PC**\n", owner)
	for _, e := range page.Entries {
		fmt.Fprintf(&b, "%d. %s - Level: %d\n", e.Creature.ID, speciesLabel(e.Creature, e.Species), e.Creature.Level)
	}
	fmt.Fprintf(&b, "Page %d/%d", page.Number, page.MaxPage)
	return b.String()
}

func statBar(value int64) string {
	filled := int(value * statBarSize / maxStatValue)
	filled = min(max(filled, 0), statBarSize)
	return "`" + strings.Repeat("#", filled) + strings.Repeat("-", statBarSize-filled) + "`"
}

func renderCreatureView(owner string, id int64, view service.ViewResult) string {
	if !view.Found {
		return fmt.Sprintf("Pokemon #%d not found in **%s**'s PC", id, owner)
	}
	c := view.Entry.Creature
	if view.Entry.Species.Outcome != species.Found {
		return fmt.Sprintf("Pokemon #%d not found", c.SpeciesID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s (No. %d/#%d)**\n", view.Entry.Species.Details.Name, c.ID, c.SpeciesID)
	fmt.Fprintf(&b, "Level: %d (%d/%d)\n", c.Level, c.Experience, view.Threshold)
	for i, v := range c.Stats.Values() {
		fmt.Fprintf(&b, "**%s** (%d)\n%s\n", statLabels[i], v, statBar(v))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderStorageAdded(owner string, res service.AddResult) string {
	switch res.Species.Outcome {
	case species.Unknown:
		return msgUnknownPokemon
	case species.Error:
		return msgError
	}
	d := res.Species.Details
	return fmt.Sprintf("Pokemon %s (#%d) successfully added to **%s**'s PC", d.Name, d.ID, owner)
}

func renderStorageRemoved(owner string, id int64, removed bool) string {
	if !removed {
		return fmt.Sprintf("Pokemon #%d not found in **%s**'s PC", id, owner)
	}
	return fmt.Sprintf("Pokemon #%d successfully removed from **%s**'s PC", id, owner)
}

// InventorySlot is one held creature with its resolved species.
type InventorySlot struct {
	Creature domain.Creature
	Species  species.Result
}

func renderInventory(owner string, size int, slots []InventorySlot) string {
	if len(slots) == 0 {
		return fmt.Sprintf("%s's inventory is empty.\nUse `/pc inventory add` to add pokemons", owner)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s's Inventory**\n", owner)
	for i := 0; i < max(size, len(slots)); i++ {
		if i >= len(slots) {
			fmt.Fprintf(&b, "Slot %d: Empty\n", i+1)
			continue
		}
		s := slots[i]
		fmt.Fprintf(&b, "Slot %d: %d. %s - Level: %d\n", i+1, s.Creature.ID, speciesLabel(s.Creature, s.Species), s.Creature.Level)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderTransfer describes an inventory move. verb is "added to" or
// "removed from"; place names where the creature was looked up.
func renderTransfer(owner, verb, place string, outcome service.TransferOutcome, view service.ViewResult) string {
	switch outcome {
	case service.TransferInventoryFull:
		return msgInventoryFull
	case service.TransferNotFound:
		return fmt.Sprintf("Pokemon not found in %s's %s", owner, place)
	}

	if !view.Found {
		return fmt.Sprintf("Pokemon %s %s's inventory", verb, owner)
	}
	c := view.Entry.Creature
	name := "Unknown"
	if view.Entry.Species.Outcome == species.Found {
		name = view.Entry.Species.Details.Name
	}
	return fmt.Sprintf("Pokemon No %d (Level %d %s (#%d)) %s %s's inventory", c.ID, c.Level, name, c.SpeciesID, verb, owner)
}

func joinOrUnknown(items []string) string {
	if len(items) == 0 {
		return "Unknown"
	}
	return strings.Join(items, ", ")
}

func renderPokedex(r species.Result) string {
	switch r.Outcome {
	case species.Unknown:
		return msgUnknownPokemon
	case species.Error:
		return msgError
	}
	d := r.Details
	habitat := "Unknown"
	if d.Habitat != nil {
		habitat = *d.Habitat
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s | #%d**\n", d.Name, d.ID)
	if d.SpriteURL != "" {
		fmt.Fprintf(&b, "%s\n", d.SpriteURL)
	}
	b.WriteString("`📜` **About**\n")
	fmt.Fprintf(&b, "**Species** %s\n", d.Species)
	fmt.Fprintf(&b, "**Abilities** %s\n", joinOrUnknown(d.Abilities))
	fmt.Fprintf(&b, "**Color** %s\n", d.Color)
	fmt.Fprintf(&b, "**Capture Rate** %d\n", d.CaptureRate)
	fmt.Fprintf(&b, "**Habitat** %s\n", habitat)
	fmt.Fprintf(&b, "**Types** %s\n", joinOrUnknown(d.Types))
	fmt.Fprintf(&b, "**Egg Groups** %s\n", joinOrUnknown(d.EggGroups))
	b.WriteString("`📜` **Base Stats**")
	for _, s := range d.Stats {
		fmt.Fprintf(&b, "\n**%s** (%d)\n%s", s.Name, s.Stat, statBar(s.Stat))
	}
	return b.String()
}
