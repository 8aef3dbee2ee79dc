package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/service"
	"github.com/phrazzld/pokepc/internal/species"
)

// Command paths, space separated as typed by users.
const (
	CmdStorageView     = "pc storage view"
	CmdStorageAdd      = "pc storage add"
	CmdStorageRemove   = "pc storage remove"
	CmdInventoryView   = "pc inventory view"
	CmdInventoryAdd    = "pc inventory add"
	CmdInventoryRemove = "pc inventory remove"
	CmdPokedexPokemon  = "pokedex pokemon"
)

// Option names.
const (
	OptUser            = "user"
	OptPage            = "page"
	OptPokemonID       = "pokemon-id"
	OptNameOrID        = "pokemon-name-or-id"
	OptStoredPokemonID = "stored-pokemon-id"
	OptHeldPokemonID   = "held-pokemon-id"
)

// Storage is the PC use case.
type Storage interface {
	Page(ctx context.Context, userID string, n int) (service.PageResult, error)
	Add(ctx context.Context, userID, nameOrID string) (service.AddResult, error)
	Remove(ctx context.Context, userID string, creatureID int64) (bool, error)
	View(ctx context.Context, userID string, creatureID int64) (service.ViewResult, error)
}

// Inventory is the held-creature use case.
type Inventory interface {
	Size() int
	Held(ctx context.Context, userID string) ([]domain.Creature, error)
	Add(ctx context.Context, userID string, creatureID int64) (service.TransferOutcome, error)
	Remove(ctx context.Context, userID string, creatureID int64) (service.TransferOutcome, error)
}

// Pokedex looks species up.
type Pokedex interface {
	Lookup(ctx context.Context, nameOrID string) species.Result
}

// User is a Discord user as shown in replies.
type User struct {
	ID   string
	Name string
}

// Invocation is a parsed slash command.
type Invocation struct {
	// Path is one of the Cmd constants.
	Path   string
	Caller User
	// Target is the user the command acts on. It equals Caller when the
	// user option is absent.
	Target User
	// Admin reports whether the caller holds the Administrator permission.
	Admin   bool
	Options map[string]any
}

// Int returns an integer option.
func (inv Invocation) Int(name string) (int64, bool) {
	switch v := inv.Options[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// String returns a string option.
func (inv Invocation) String(name string) (string, bool) {
	v, ok := inv.Options[name].(string)
	return v, ok
}

type commandFunc func(ctx context.Context, inv Invocation) (string, error)

// Commands executes slash commands against the services.
type Commands struct {
	storage   Storage
	inventory Inventory
	pokedex   Pokedex
	table     map[string]commandFunc
	logger    *slog.Logger
}

// NewCommands creates the command table.
func NewCommands(storage Storage, inventory Inventory, pokedex Pokedex, log *slog.Logger) *Commands {
	if storage == nil || inventory == nil || pokedex == nil {
		panic("bot commands need storage, inventory and pokedex services")
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Commands{
		storage:   storage,
		inventory: inventory,
		pokedex:   pokedex,
		logger:    log.With(slog.String("component", "bot_commands")),
	}
	c.table = map[string]commandFunc{
		CmdStorageView:     c.storageView,
		CmdStorageAdd:      c.storageAdd,
		CmdStorageRemove:   c.storageRemove,
		CmdInventoryView:   c.inventoryView,
		CmdInventoryAdd:    c.inventoryAdd,
		CmdInventoryRemove: c.inventoryRemove,
		CmdPokedexPokemon:  c.pokedexPokemon,
	}
	return c
}

// Execute runs inv and returns the reply. Failures are logged and answered
// with a generic message.
func (c *Commands) Execute(ctx context.Context, inv Invocation) string {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("command", inv.Path),
		slog.String("caller_id", inv.Caller.ID),
		slog.String("target_id", inv.Target.ID))

	fn, ok := c.table[inv.Path]
	if !ok {
		log.Warn("unknown command")
		return msgUnknownCommand
	}
	if inv.Target.ID == "" {
		inv.Target = inv.Caller
	}
	if inv.Target.ID != inv.Caller.ID && !inv.Admin {
		log.Info("rejected command targeting another user")
		return msgForbidden
	}

	reply, err := fn(logger.WithLogger(ctx, log), inv)
	if err != nil {
		log.Error("command failed", slog.Any("error", err))
		return msgError
	}
	return reply
}

func (c *Commands) storageView(ctx context.Context, inv Invocation) (string, error) {
	if id, ok := inv.Int(OptPokemonID); ok {
		view, err := c.storage.View(ctx, inv.Target.ID, id)
		if err != nil {
			return "", err
		}
		return renderCreatureView(inv.Target.Name, id, view), nil
	}

	n := int64(1)
	if p, ok := inv.Int(OptPage); ok {
		n = p
	}
	page, err := c.storage.Page(ctx, inv.Target.ID, int(n))
	if errors.Is(err, service.ErrInvalidPage) {
		return renderPageNotFound(int(n)), nil
	}
	if err != nil {
		return "", err
	}
	return renderPCPage(inv.Target.Name, page), nil
}

func (c *Commands) storageAdd(ctx context.Context, inv Invocation) (string, error) {
	nameOrID, _ := inv.String(OptNameOrID)
	res, err := c.storage.Add(ctx, inv.Target.ID, nameOrID)
	if err != nil {
		return "", err
	}
	return renderStorageAdded(inv.Target.Name, res), nil
}

func (c *Commands) storageRemove(ctx context.Context, inv Invocation) (string, error) {
	id, _ := inv.Int(OptPokemonID)
	removed, err := c.storage.Remove(ctx, inv.Target.ID, id)
	if err != nil {
		return "", err
	}
	return renderStorageRemoved(inv.Target.Name, id, removed), nil
}

func (c *Commands) inventoryView(ctx context.Context, inv Invocation) (string, error) {
	held, err := c.inventory.Held(ctx, inv.Target.ID)
	if err != nil {
		return "", err
	}
	slots := make([]InventorySlot, 0, len(held))
	for _, h := range held {
		slots = append(slots, InventorySlot{
			Creature: h,
			Species:  c.pokedex.Lookup(ctx, strconv.FormatInt(h.SpeciesID, 10)),
		})
	}
	return renderInventory(inv.Target.Name, c.inventory.Size(), slots), nil
}

func (c *Commands) inventoryAdd(ctx context.Context, inv Invocation) (string, error) {
	id, _ := inv.Int(OptStoredPokemonID)
	outcome, err := c.inventory.Add(ctx, inv.Target.ID, id)
	if err != nil {
		return "", err
	}
	return c.renderTransfer(ctx, inv, id, "added to", "PC", outcome)
}

func (c *Commands) inventoryRemove(ctx context.Context, inv Invocation) (string, error) {
	id, _ := inv.Int(OptHeldPokemonID)
	outcome, err := c.inventory.Remove(ctx, inv.Target.ID, id)
	if err != nil {
		return "", err
	}
	return c.renderTransfer(ctx, inv, id, "removed from", "inventory", outcome)
}

func (c *Commands) renderTransfer(ctx context.Context, inv Invocation, id int64, verb, place string,
	outcome service.TransferOutcome,
) (string, error) {
	var view service.ViewResult
	if outcome == service.Transferred {
		v, err := c.storage.View(ctx, inv.Target.ID, id)
		if err != nil {
			return "", err
		}
		view = v
	}
	return renderTransfer(inv.Target.Name, verb, place, outcome, view), nil
}

func (c *Commands) pokedexPokemon(ctx context.Context, inv Invocation) (string, error) {
	nameOrID, _ := inv.String(OptNameOrID)
	return renderPokedex(c.pokedex.Lookup(ctx, nameOrID)), nil
}
