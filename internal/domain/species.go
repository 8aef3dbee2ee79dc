package domain

import "strings"

// BaseStat is one named base stat of a species.
type BaseStat struct {
	Name string `json:"name"`
	Stat int64  `json:"stat"`
}

// SpeciesDetails is the resolved, immutable view of a species from the
// remote species API. Names are capitalized for display.
type SpeciesDetails struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	SpriteURL   string     `json:"spriteURL"`
	Species     string     `json:"species"`
	Abilities   []string   `json:"abilities"`
	Color       string     `json:"color"`
	CaptureRate int64      `json:"captureRate"`
	Habitat     *string    `json:"habitat"`
	Types       []string   `json:"types"`
	EggGroups   []string   `json:"eggGroups"`
	Stats       []BaseStat `json:"stats"`
}

// BaseStat returns the named base stat, matched case-insensitively, or zero.
func (d SpeciesDetails) BaseStat(name string) int64 {
	for _, s := range d.Stats {
		if strings.EqualFold(s.Name, name) {
			return s.Stat
		}
	}
	return 0
}

// BaseStats maps the species' base stats onto the six creature stats.
func (d SpeciesDetails) BaseStats() Stats {
	return Stats{
		Health:         d.BaseStat("hp"),
		Attack:         d.BaseStat("attack"),
		Defense:        d.BaseStat("defense"),
		SpecialAttack:  d.BaseStat("special-attack"),
		SpecialDefense: d.BaseStat("special-defense"),
		Speed:          d.BaseStat("speed"),
	}
}
