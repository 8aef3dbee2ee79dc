package domain

import "fmt"

// LocationKind tells whether a creature is carried by its owner or kept in
// their PC.
type LocationKind string

const (
	// Held creatures sit in the owner's inventory and earn experience.
	Held LocationKind = "held"
	// Stored creatures sit in the owner's PC and do not earn experience.
	Stored LocationKind = "stored"
)

// Location is a creature's owner together with the kind of ownership.
type Location struct {
	Kind  LocationKind
	Owner string
}

// HeldBy is the inventory location of owner.
func HeldBy(owner string) Location {
	return Location{Kind: Held, Owner: owner}
}

// StoredBy is the PC location of owner.
func StoredBy(owner string) Location {
	return Location{Kind: Stored, Owner: owner}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.Kind, l.Owner)
}

// Stats are the six stat dimensions of a creature.
type Stats struct {
	Health         int64 `json:"health"`
	Attack         int64 `json:"attack"`
	Defense        int64 `json:"defense"`
	SpecialAttack  int64 `json:"specialAttack"`
	SpecialDefense int64 `json:"specialDefense"`
	Speed          int64 `json:"speed"`
}

// StatCount is the number of stat dimensions.
const StatCount = 6

// Map returns a copy of s with fn applied to every stat.
func (s Stats) Map(fn func(int64) int64) Stats {
	return Stats{
		Health:         fn(s.Health),
		Attack:         fn(s.Attack),
		Defense:        fn(s.Defense),
		SpecialAttack:  fn(s.SpecialAttack),
		SpecialDefense: fn(s.SpecialDefense),
		Speed:          fn(s.Speed),
	}
}

// Values lists the stats in display order.
func (s Stats) Values() [StatCount]int64 {
	return [StatCount]int64{s.Health, s.Attack, s.Defense, s.SpecialAttack, s.SpecialDefense, s.Speed}
}

// Creature is a persisted collectible. HeldBy and StoredBy hold Discord user
// ids; an empty string means the field is unset. At most one of them is set.
type Creature struct {
	ID         int64  `json:"id"`
	SpeciesID  int64  `json:"pokeApiId"`
	Level      int64  `json:"level"`
	Experience int64  `json:"experience"`
	HeldBy     string `json:"heldBy,omitempty"`
	StoredBy   string `json:"storedBy,omitempty"`
	Stats      Stats  `json:"stats"`
}

// NewStoredCreature creates a level 1 creature of the given species in
// owner's PC, seeded with the species' base stats.
func NewStoredCreature(owner string, species SpeciesDetails) (*Creature, error) {
	c := &Creature{
		SpeciesID: species.ID,
		Level:     1,
		StoredBy:  owner,
		Stats:     species.BaseStats(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Location reports where the creature is. The boolean is false for a
// creature with no owner.
func (c *Creature) Location() (Location, bool) {
	switch {
	case c.HeldBy != "":
		return HeldBy(c.HeldBy), true
	case c.StoredBy != "":
		return StoredBy(c.StoredBy), true
	default:
		return Location{}, false
	}
}

// MoveTo places the creature at loc, clearing the other ownership field.
func (c *Creature) MoveTo(loc Location) {
	switch loc.Kind {
	case Held:
		c.HeldBy, c.StoredBy = loc.Owner, ""
	case Stored:
		c.HeldBy, c.StoredBy = "", loc.Owner
	}
}

// Validate checks the creature's invariants.
func (c *Creature) Validate() error {
	if c.SpeciesID <= 0 {
		return NewValidationError("pokeApiId", "must be positive")
	}
	if c.Level < 1 {
		return NewValidationError("level", "must be at least 1")
	}
	if c.Experience < 0 {
		return NewValidationError("experience", "cannot be negative")
	}
	for _, v := range c.Stats.Values() {
		if v < 0 {
			return NewValidationError("stats", "cannot be negative")
		}
	}
	if c.HeldBy != "" && c.StoredBy != "" {
		return ErrConflictingLocation
	}
	return nil
}
