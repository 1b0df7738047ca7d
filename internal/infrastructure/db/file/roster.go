package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

// Roster implements ports.RosterRepository on workers.json.
type Roster struct {
	path string
	lock *fileLock
	log  zerolog.Logger
}

var _ ports.RosterRepository = (*Roster)(nil)

func NewRoster(dir string, lockTimeout time.Duration, log zerolog.Logger) (*Roster, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, RosterFileName)
	return &Roster{
		path: path,
		lock: newFileLock(path+".lock", lockTimeout),
		log:  log.With().Str("store", "file").Logger(),
	}, nil
}

func (r *Roster) List(_ context.Context) ([]domain.Worker, error) {
	var workers []domain.Worker
	if err := readJSON(r.path, &workers); err != nil {
		return nil, err
	}
	if workers == nil {
		workers = []domain.Worker{}
	}
	return workers, nil
}

func (r *Roster) FindByID(ctx context.Context, id string) (*domain.Worker, error) {
	workers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range workers {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, domain.ErrWorkerNotFound
}

func (r *Roster) Create(ctx context.Context, w domain.Worker) error {
	return r.update(ctx, func(workers []domain.Worker) ([]domain.Worker, error) {
		fold := cases.Fold()
		for _, existing := range workers {
			if existing.ID == w.ID || fold.String(existing.Name) == fold.String(w.Name) {
				return nil, domain.ErrWorkerExists
			}
		}
		return append(workers, w), nil
	})
}

func (r *Roster) Delete(ctx context.Context, id string) error {
	return r.update(ctx, func(workers []domain.Worker) ([]domain.Worker, error) {
		i := slices.IndexFunc(workers, func(w domain.Worker) bool { return w.ID == id })
		if i < 0 {
			return nil, domain.ErrWorkerNotFound
		}
		return slices.Delete(workers, i, i+1), nil
	})
}

func (r *Roster) update(ctx context.Context, fn func([]domain.Worker) ([]domain.Worker, error)) error {
	release, err := r.lock.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	workers, err := r.List(ctx)
	if err != nil {
		return err
	}
	next, err := fn(workers)
	if err != nil {
		return err
	}
	if err := writeJSON(r.path, next); err != nil {
		r.log.Error().Err(err).Msg("roster write failed")
		return err
	}
	return nil
}
