package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/core/service"
	"github.com/brightshift/clockin-system/internal/infrastructure/config"
	"github.com/brightshift/clockin-system/internal/infrastructure/db/file"
	"github.com/brightshift/clockin-system/internal/infrastructure/db/memory"
	"github.com/brightshift/clockin-system/internal/infrastructure/db/mongo"
	"github.com/brightshift/clockin-system/internal/infrastructure/db/redis"
	"github.com/brightshift/clockin-system/internal/infrastructure/db/sqlite"
	"github.com/brightshift/clockin-system/internal/infrastructure/http/handlers"
)

// lockKey guards the mongo event log across replicas.
const lockKey = "clockin:lock:events"

// Storage bundles the persistence collaborators selected by STORAGE_DRIVER.
type Storage struct {
	Events ports.EventLog
	Roster ports.RosterRepository
	Dedup  service.DedupStore
	// Health lists the dependencies reported by /health/ready.
	Health map[string]handlers.Pinger

	closers []func(context.Context) error
}

// OpenStorage connects to the configured backend. Redis is optional for the
// file and sqlite drivers; without it idempotency keys are kept in memory.
func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	s := &Storage{Health: map[string]handlers.Pinger{}}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		rdb = client
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		s.Health["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		s.Dedup = redis.NewDedupStore(client, cfg.Batch.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	} else {
		s.Dedup = memory.NewDedupStore(cfg.Batch.IdempotencyTTL)
	}

	var err error
	switch cfg.Storage.Driver {
	case config.DriverFile:
		err = s.openFile(cfg, log)
	case config.DriverSQLite:
		err = s.openSQLite(cfg, log)
	case config.DriverMongo:
		err = s.openMongo(ctx, cfg, rdb)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	s.Health["event_log"] = s.Events
	log.Info().Str("driver", cfg.Storage.Driver).Msg("storage ready")
	return s, nil
}

func (s *Storage) openFile(cfg *config.Config, log zerolog.Logger) error {
	events, err := file.NewEventLog(cfg.Storage.DataDir, cfg.Storage.LockTimeout, log)
	if err != nil {
		return fmt.Errorf("file event log: %w", err)
	}
	roster, err := file.NewRoster(cfg.Storage.DataDir, cfg.Storage.LockTimeout, log)
	if err != nil {
		return fmt.Errorf("file roster: %w", err)
	}
	s.Events, s.Roster = events, roster
	return nil
}

func (s *Storage) openSQLite(cfg *config.Config, log zerolog.Logger) error {
	store, err := sqlite.Open(cfg.SQLiteFile(), cfg.Storage.LockTimeout, log)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	s.closers = append(s.closers, func(context.Context) error { return store.Close() })
	s.Events, s.Roster = sqlite.NewEventLog(store), sqlite.NewRoster(store)
	return nil
}

func (s *Storage) openMongo(ctx context.Context, cfg *config.Config, rdb *goredis.Client) error {
	if rdb == nil {
		return errors.New("mongo driver requires REDIS_ADDR")
	}
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	s.closers = append(s.closers, client.Disconnect)

	lock := redis.NewLock(rdb, lockKey, 0, cfg.Storage.LockTimeout)
	events := mongo.NewEventLog(db, lock)
	roster := mongo.NewRosterRepository(db)
	if err := events.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo event indexes: %w", err)
	}
	if err := roster.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo roster indexes: %w", err)
	}
	s.Events, s.Roster = events, roster
	return nil
}

// Close releases connections in reverse order of opening.
func (s *Storage) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
