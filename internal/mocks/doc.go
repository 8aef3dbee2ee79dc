// Package mocks provides shared test doubles for the bot's collaborator
// interfaces.
//
// Each mock has function fields that override a method when set, and
// otherwise falls back to a simple in-memory default so that most tests only
// seed data:
//
//	creatures := mocks.NewMockCreatureStore()
//	creatures.Seed(domain.Creature{ID: 1, SpeciesID: 25, Level: 1, HeldBy: "ash"})
//	creatures.UpdateProgressFn = func(ctx context.Context, c *domain.Creature) error {
//	    return errors.New("db down")
//	}
package mocks
