// Package pokeapi is a small client for the public PokeAPI. It fetches a
// pokemon and its species and flattens them into domain.SpeciesDetails.
package pokeapi
