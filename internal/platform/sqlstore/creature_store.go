// Package sqlstore implements the store interfaces over database/sql. The SQL
// is shared between backends; a Dialect supplies placeholders and maps driver
// errors.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/store"
)

// Dialect captures what differs between SQL backends.
type Dialect interface {
	// Name identifies the backend in logs.
	Name() string
	// Placeholder returns the bind marker for the n-th argument, from 1.
	Placeholder(n int) string
	// MapError converts driver errors to store errors.
	MapError(err error) error
}

const creatureColumns = `id, poke_api_id, level, experience, held_by, stored_by,
	health, attack, defense, special_attack, special_defense, speed`

// CreatureStore implements store.CreatureStore.
type CreatureStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

var _ store.CreatureStore = (*CreatureStore)(nil)

// NewCreatureStore creates a CreatureStore. It panics on a nil db or dialect.
func NewCreatureStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *CreatureStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CreatureStore{
		db:      db,
		dialect: dialect,
		logger: logger.With(
			slog.String("component", "creature_store"),
			slog.String("dialect", dialect.Name())),
	}
}

// WithTx implements store.CreatureStore.WithTx.
func (s *CreatureStore) WithTx(tx *sql.Tx) store.CreatureStore {
	return &CreatureStore{db: tx, dialect: s.dialect, logger: s.logger}
}

func (s *CreatureStore) ph(n int) string {
	return s.dialect.Placeholder(n)
}

func nullable(owner string) sql.NullString {
	return sql.NullString{String: owner, Valid: owner != ""}
}

func ownerColumn(kind domain.LocationKind) string {
	if kind == domain.Held {
		return "held_by"
	}
	return "stored_by"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCreature(row scanner) (*domain.Creature, error) {
	var (
		c                domain.Creature
		heldBy, storedBy sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.SpeciesID, &c.Level, &c.Experience, &heldBy, &storedBy,
		&c.Stats.Health, &c.Stats.Attack, &c.Stats.Defense,
		&c.Stats.SpecialAttack, &c.Stats.SpecialDefense, &c.Stats.Speed,
	)
	if err != nil {
		return nil, err
	}
	c.HeldBy = heldBy.String
	c.StoredBy = storedBy.String
	return &c, nil
}

// Create implements store.CreatureStore.Create.
func (s *CreatureStore) Create(ctx context.Context, c *domain.Creature) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		log.Warn("creature validation failed during create", slog.Any("error", err))
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO pokemon (poke_api_id, level, experience, held_by, stored_by,
			health, attack, defense, special_attack, special_defense, speed)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		RETURNING id`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6),
		s.ph(7), s.ph(8), s.ph(9), s.ph(10), s.ph(11))

	err := s.db.QueryRowContext(ctx, query,
		c.SpeciesID, c.Level, c.Experience, nullable(c.HeldBy), nullable(c.StoredBy),
		c.Stats.Health, c.Stats.Attack, c.Stats.Defense,
		c.Stats.SpecialAttack, c.Stats.SpecialDefense, c.Stats.Speed,
	).Scan(&c.ID)
	if err != nil {
		log.Error("failed to create creature",
			slog.Any("error", err),
			slog.Int64("poke_api_id", c.SpeciesID))
		return store.NewStoreError("creature", "create", "insert failed", s.dialect.MapError(err))
	}

	log.Debug("creature created",
		slog.Int64("creature_id", c.ID),
		slog.Int64("poke_api_id", c.SpeciesID))
	return nil
}

// GetByID implements store.CreatureStore.GetByID.
func (s *CreatureStore) GetByID(ctx context.Context, id int64) (*domain.Creature, error) {
	return s.FindOne(ctx, store.CreatureFilter{ID: id})
}

// FindOne implements store.CreatureStore.FindOne.
func (s *CreatureStore) FindOne(ctx context.Context, filter store.CreatureFilter) (*domain.Creature, error) {
	where, args := filter.Where(s.ph)
	query := fmt.Sprintf("SELECT %s FROM pokemon %s ORDER BY id ASC LIMIT 1", creatureColumns, where)

	c, err := scanCreature(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCreatureNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find creature",
			slog.Any("error", err))
		return nil, store.NewStoreError("creature", "find", "query failed", s.dialect.MapError(err))
	}
	return c, nil
}

// Find implements store.CreatureStore.Find.
func (s *CreatureStore) Find(ctx context.Context, filter store.CreatureFilter, page store.Page) ([]domain.Creature, error) {
	where, args := filter.Where(s.ph)
	query := fmt.Sprintf("SELECT %s FROM pokemon %s ORDER BY id ASC", creatureColumns, where)
	if page.Limit > 0 {
		args = append(args, page.Limit, page.Offset)
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", s.ph(len(args)-1), s.ph(len(args)))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list creatures",
			slog.Any("error", err))
		return nil, store.NewStoreError("creature", "find", "query failed", s.dialect.MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var creatures []domain.Creature
	for rows.Next() {
		c, err := scanCreature(rows)
		if err != nil {
			return nil, store.NewStoreError("creature", "find", "scan failed", err)
		}
		creatures = append(creatures, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("creature", "find", "iteration failed", s.dialect.MapError(err))
	}
	return creatures, nil
}

// Count implements store.CreatureStore.Count.
func (s *CreatureStore) Count(ctx context.Context, filter store.CreatureFilter) (int64, error) {
	where, args := filter.Where(s.ph)
	query := "SELECT COUNT(*) FROM pokemon " + where

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count creatures",
			slog.Any("error", err))
		return 0, store.NewStoreError("creature", "count", "query failed", s.dialect.MapError(err))
	}
	return n, nil
}

// UpdateProgress implements store.CreatureStore.UpdateProgress.
func (s *CreatureStore) UpdateProgress(ctx context.Context, c *domain.Creature) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		log.Warn("creature validation failed during update",
			slog.Any("error", err),
			slog.Int64("creature_id", c.ID))
		return err
	}

	query := fmt.Sprintf(`
		UPDATE pokemon
		SET level = %s, experience = %s, health = %s, attack = %s, defense = %s,
			special_attack = %s, special_defense = %s, speed = %s
		WHERE id = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7), s.ph(8), s.ph(9))

	result, err := s.db.ExecContext(ctx, query,
		c.Level, c.Experience,
		c.Stats.Health, c.Stats.Attack, c.Stats.Defense,
		c.Stats.SpecialAttack, c.Stats.SpecialDefense, c.Stats.Speed,
		c.ID,
	)
	if err != nil {
		log.Error("failed to update creature progress",
			slog.Any("error", err),
			slog.Int64("creature_id", c.ID))
		return store.NewStoreError("creature", "update", "update failed", s.dialect.MapError(err))
	}
	return checkRowsAffected(result)
}

// Transfer implements store.CreatureStore.Transfer.
func (s *CreatureStore) Transfer(ctx context.Context, id int64, from, to domain.Location) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if to.Owner == "" {
		return domain.NewValidationError("owner", "transfer target needs an owner")
	}

	query := fmt.Sprintf(`
		UPDATE pokemon
		SET %s = %s, %s = NULL
		WHERE id = %s AND %s = %s`,
		ownerColumn(to.Kind), s.ph(1), ownerColumn(otherKind(to.Kind)),
		s.ph(2), ownerColumn(from.Kind), s.ph(3))

	result, err := s.db.ExecContext(ctx, query, to.Owner, id, from.Owner)
	if err != nil {
		log.Error("failed to transfer creature",
			slog.Any("error", err),
			slog.Int64("creature_id", id),
			slog.String("from", from.String()),
			slog.String("to", to.String()))
		return store.NewStoreError("creature", "transfer", "update failed", s.dialect.MapError(err))
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	log.Debug("creature transferred",
		slog.Int64("creature_id", id),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
	return nil
}

// Delete implements store.CreatureStore.Delete.
func (s *CreatureStore) Delete(ctx context.Context, id int64, loc domain.Location) error {
	query := fmt.Sprintf("DELETE FROM pokemon WHERE id = %s AND %s = %s",
		s.ph(1), ownerColumn(loc.Kind), s.ph(2))

	result, err := s.db.ExecContext(ctx, query, id, loc.Owner)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete creature",
			slog.Any("error", err),
			slog.Int64("creature_id", id))
		return store.NewStoreError("creature", "delete", "delete failed", s.dialect.MapError(err))
	}
	return checkRowsAffected(result)
}

func otherKind(kind domain.LocationKind) domain.LocationKind {
	if kind == domain.Held {
		return domain.Stored
	}
	return domain.Held
}

// checkRowsAffected returns store.ErrCreatureNotFound when no row changed.
func checkRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrCreatureNotFound
	}
	return nil
}
