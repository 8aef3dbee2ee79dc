package bot

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/service"
	"github.com/phrazzld/pokepc/internal/species"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ash   = User{ID: "100", Name: "Ash"}
	misty = User{ID: "200", Name: "Misty"}
)

type commandsFixture struct {
	commands  *Commands
	storage   *MockStorage
	inventory *MockInventory
	pokedex   *MockPokedex
	logs      *logger.Buffer
}

func newCommandsFixture(t *testing.T) *commandsFixture {
	t.Helper()
	f := &commandsFixture{
		storage:   &MockStorage{},
		inventory: &MockInventory{},
		pokedex:   &MockPokedex{},
	}
	buf, l := logger.NewCapture()
	f.logs = buf
	f.commands = NewCommands(f.storage, f.inventory, f.pokedex, l)
	t.Cleanup(func() {
		f.storage.AssertExpectations(t)
		f.inventory.AssertExpectations(t)
		f.pokedex.AssertExpectations(t)
	})
	return f
}

func invoke(path string, opts map[string]any) Invocation {
	if opts == nil {
		opts = map[string]any{}
	}
	return Invocation{Path: path, Caller: ash, Options: opts}
}

func TestCommandTableMatchesDefinitions(t *testing.T) {
	f := newCommandsFixture(t)

	paths := commandPaths(Definitions())
	var table []string
	for p := range f.commands.table {
		table = append(table, p)
	}
	sort.Strings(paths)
	sort.Strings(table)
	assert.Equal(t, table, paths)
}

func TestExecute_Targeting(t *testing.T) {
	t.Run("other user requires admin", func(t *testing.T) {
		f := newCommandsFixture(t)
		inv := invoke(CmdStorageRemove, map[string]any{OptPokemonID: int64(1)})
		inv.Target = misty

		assert.Equal(t, msgForbidden, f.commands.Execute(context.Background(), inv))
	})

	t.Run("admin may target another user", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.storage.On("Remove", mock.Anything, misty.ID, int64(1)).Return(true, nil).Once()
		inv := invoke(CmdStorageRemove, map[string]any{OptPokemonID: int64(1)})
		inv.Target = misty
		inv.Admin = true

		assert.Equal(t, "Pokemon #1 successfully removed from **Misty**'s PC", f.commands.Execute(context.Background(), inv))
	})

	t.Run("unknown command", func(t *testing.T) {
		f := newCommandsFixture(t)
		assert.Equal(t, msgUnknownCommand, f.commands.Execute(context.Background(), invoke("pc trade", nil)))
	})
}

func TestExecute_StorageView(t *testing.T) {
	t.Run("defaults to page 1", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.storage.On("Page", mock.Anything, ash.ID, 1).
			Return(service.PageResult{Found: true, Number: 1}, nil).Once()

		assert.Equal(t, "Ash's PC is empty", f.commands.Execute(context.Background(), invoke(CmdStorageView, nil)))
	})

	t.Run("invalid page", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.storage.On("Page", mock.Anything, ash.ID, 0).Return(service.PageResult{}, service.ErrInvalidPage).Once()

		got := f.commands.Execute(context.Background(), invoke(CmdStorageView, map[string]any{OptPage: int64(0)}))
		assert.Equal(t, "Page 0 not found", got)
	})

	t.Run("single pokemon", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.storage.On("View", mock.Anything, ash.ID, int64(5)).Return(service.ViewResult{}, nil).Once()

		got := f.commands.Execute(context.Background(), invoke(CmdStorageView, map[string]any{OptPokemonID: int64(5)}))
		assert.Equal(t, "Pokemon #5 not found in **Ash**'s PC", got)
	})

	t.Run("failure is logged and reported generically", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.storage.On("Page", mock.Anything, ash.ID, 2).Return(service.PageResult{}, errors.New("db down")).Once()

		got := f.commands.Execute(context.Background(), invoke(CmdStorageView, map[string]any{OptPage: int64(2)}))
		assert.Equal(t, msgError, got)
		assert.Contains(t, f.logs.String(), "command failed")
		assert.Contains(t, f.logs.String(), "db down")
	})
}

func TestExecute_StorageAdd(t *testing.T) {
	f := newCommandsFixture(t)
	f.storage.On("Add", mock.Anything, ash.ID, "Pikachu").
		Return(service.AddResult{Species: found(pikachu()), Creature: &domain.Creature{ID: 1}}, nil).Once()

	got := f.commands.Execute(context.Background(), invoke(CmdStorageAdd, map[string]any{OptNameOrID: "Pikachu"}))
	assert.Equal(t, "Pokemon Pikachu (#25) successfully added to **Ash**'s PC", got)
}

func TestExecute_InventoryView(t *testing.T) {
	f := newCommandsFixture(t)
	f.inventory.On("Held", mock.Anything, ash.ID).
		Return([]domain.Creature{{ID: 4, SpeciesID: 25, Level: 2}}, nil).Once()
	f.pokedex.On("Lookup", mock.Anything, "25").Return(found(pikachu())).Once()

	got := f.commands.Execute(context.Background(), invoke(CmdInventoryView, nil))
	assert.Contains(t, got, "Slot 1: 4. Pikachu (#25) - Level: 2")
	assert.Contains(t, got, "Slot 3: Empty")
}

func TestExecute_InventoryAdd(t *testing.T) {
	t.Run("transferred", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.inventory.On("Add", mock.Anything, ash.ID, int64(4)).Return(service.Transferred, nil).Once()
		f.storage.On("View", mock.Anything, ash.ID, int64(4)).Return(service.ViewResult{
			Found: true,
			Entry: service.Entry{Creature: domain.Creature{ID: 4, SpeciesID: 25, Level: 2}, Species: found(pikachu())},
		}, nil).Once()

		got := f.commands.Execute(context.Background(), invoke(CmdInventoryAdd, map[string]any{OptStoredPokemonID: int64(4)}))
		assert.Equal(t, "Pokemon No 4 (Level 2 Pikachu (#25)) added to Ash's inventory", got)
	})

	t.Run("full", func(t *testing.T) {
		f := newCommandsFixture(t)
		f.inventory.On("Add", mock.Anything, ash.ID, int64(4)).Return(service.TransferInventoryFull, nil).Once()

		got := f.commands.Execute(context.Background(), invoke(CmdInventoryAdd, map[string]any{OptStoredPokemonID: int64(4)}))
		assert.Equal(t, "Your inventory is full", got)
	})
}

func TestExecute_InventoryRemove(t *testing.T) {
	f := newCommandsFixture(t)
	f.inventory.On("Remove", mock.Anything, ash.ID, int64(4)).Return(service.TransferNotFound, nil).Once()

	got := f.commands.Execute(context.Background(), invoke(CmdInventoryRemove, map[string]any{OptHeldPokemonID: int64(4)}))
	assert.Equal(t, "Pokemon not found in Ash's inventory", got)
}

func TestExecute_Pokedex(t *testing.T) {
	f := newCommandsFixture(t)
	f.pokedex.On("Lookup", mock.Anything, "missingno").Return(species.Result{Outcome: species.Unknown}).Once()

	got := f.commands.Execute(context.Background(), invoke(CmdPokedexPokemon, map[string]any{OptNameOrID: "missingno"}))
	assert.Equal(t, "Unknown pokemon", got)
}

func TestInvocationOptions(t *testing.T) {
	inv := invoke(CmdStorageView, map[string]any{"a": int64(1), "b": 2, "c": 3.0, "d": "x"})

	for _, name := range []string{"a", "b", "c"} {
		_, ok := inv.Int(name)
		require.True(t, ok, name)
	}
	v, _ := inv.Int("c")
	assert.Equal(t, int64(3), v)
	_, ok := inv.Int("d")
	assert.False(t, ok)
	s, ok := inv.String("d")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}
