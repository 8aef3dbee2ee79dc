package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/pokepc/internal/activity"
	"github.com/phrazzld/pokepc/internal/api"
	"github.com/phrazzld/pokepc/internal/bot"
	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/config"
	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/leveling"
	"github.com/phrazzld/pokepc/internal/multiplier"
	"github.com/phrazzld/pokepc/internal/platform/pokeapi"
	"github.com/phrazzld/pokepc/internal/service"
	"github.com/phrazzld/pokepc/internal/service/auth"
	"github.com/phrazzld/pokepc/internal/species"
	"github.com/phrazzld/pokepc/internal/task"
)

// shutdownTimeout bounds the whole graceful shutdown.
const shutdownTimeout = 10 * time.Second

// application holds the shared dependencies of a running bot so they can
// be started together and closed in reverse order.
type application struct {
	env    config.Environment
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	cache *cache.Cache

	pool        *task.KeyedPool
	multipliers *multiplier.Service
	bot         *bot.Bot
	admin       http.Handler
}

// newApplication connects to every backend and wires the services. On
// failure, whatever was already opened is closed.
func newApplication(
	ctx context.Context,
	env config.Environment,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	app := &application{env: env, config: cfg, logger: logger}
	initialized := false
	defer func() {
		if !initialized {
			app.cleanup()
		}
	}()

	// The token secret is checked before any connection is made.
	tokens, err := auth.NewTokenService(env.AdminTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize admin token service: %w", err)
	}

	session, err := bot.NewSession(env.BotToken)
	if err != nil {
		return nil, err
	}

	app.db, err = openDatabase(ctx, env, logger)
	if err != nil {
		return nil, err
	}
	creatures := newCreatureStore(env, app.db, logger)

	app.cache, err = openCache(ctx, env, logger)
	if err != nil {
		return nil, err
	}

	client, err := pokeapi.NewClient(pokeapi.Config{
		BaseURL:           env.PokeAPIURL,
		RequestsPerSecond: env.PokeAPIRate,
		Timeout:           env.PokeAPITimeout,
	}, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pokeapi client: %w", err)
	}
	resolver := species.NewResolver(species.NewPokeAPISource(client), app.cache, species.Config{
		UnknownTTL: species.DefaultUnknownTTL,
	}, logger)

	engine := leveling.NewEngine(leveling.ParamsFromConfig(cfg))

	storage, err := service.NewStorageService(creatures, app.cache, resolver, engine, cfg.Storage.PokemonsPerPage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	inventory, err := service.NewInventoryService(creatures, app.cache, cfg.Inventory.Size, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory service: %w", err)
	}
	pokedex := service.NewPokedexService(resolver)

	app.multipliers = multiplier.NewService(app.cache, cfg.Leveling.Multipliers, bot.NewPresenceSource(session), nil, logger)

	levels, err := leveling.NewService(leveling.Deps{
		Creatures:   creatures,
		DB:          app.db,
		Engine:      engine,
		Cache:       app.cache,
		Multipliers: app.multipliers,
		Notifier:    bot.NewDMNotifier(session),
		HeldLimit:   cfg.Inventory.Size,
		Cooldown:    cfg.Leveling.GainCooldown(),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create leveling service: %w", err)
	}

	poolConfig := task.DefaultKeyedPoolConfig()
	poolConfig.WorkerCount = env.WorkerCount
	poolConfig.QueueSize = env.QueueSize
	app.pool = task.NewKeyedPool(poolConfig, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	processor := activity.NewProcessor(levels, app.multipliers, logger)
	emitter.RegisterHandler(task.NewEventHandler(app.pool, processor, logger))

	commands := bot.NewCommands(storage, inventory, pokedex, logger)
	app.bot = bot.New(session, emitter, commands, env.GuildID, logger)

	app.admin = api.NewRouter(api.RouterDeps{
		Tokens: tokens,
		Cache:  app.cache,
		Events: emitter,
		Checks: map[string]api.Checker{
			"database": api.CheckerFunc(app.db.PingContext),
			"cache":    app.cache,
		},
		Logger: logger,
	})

	logger.Info("application initialized",
		"workers", poolConfig.WorkerCount,
		"queue_size", poolConfig.QueueSize,
		"guild_id", env.GuildID)
	initialized = true
	return app, nil
}

// Run starts the workers, the gateway connection, and the admin server,
// then blocks until ctx is canceled or the admin server fails.
func (app *application) Run(ctx context.Context) error {
	app.pool.Start()

	if err := app.bot.Open(ctx); err != nil {
		app.shutdown()
		return fmt.Errorf("failed to connect to discord: %w", err)
	}

	serveErr := app.startHTTPServer(ctx, app.admin)
	app.shutdown()
	if serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}
	return nil
}

// shutdown stops intake first, then drains queued work and pending
// multiplier reversals while the cache is still open.
func (app *application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.bot != nil {
		if err := app.bot.Close(); err != nil {
			app.logger.Error("error closing discord session", "error", err)
		}
	}
	if app.pool != nil {
		if err := app.pool.Stop(ctx); err != nil {
			app.logger.Error("task pool did not drain", "error", err)
		}
	}
	if app.multipliers != nil {
		if err := app.multipliers.Stop(ctx); err != nil {
			app.logger.Error("failed to revert pending multipliers", "error", err)
		}
	}
	app.cleanup()
	app.logger.Info("application shutdown completed")
}

// cleanup closes the backends.
func (app *application) cleanup() {
	if app.cache != nil {
		if err := app.cache.Store().Close(); err != nil {
			app.logger.Error("error closing cache connection", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
