// Package leveling grows the experience of held creatures and levels them up.
//
// The Engine is pure: it evaluates the configured formulas against a creature
// and returns the updated copy. The Service wires the engine to activity
// events, the cooldown gate, persistence, the multiplier engine and owner
// notifications.
package leveling
