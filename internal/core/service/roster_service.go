package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

const fallbackSlug = "worker"

// RosterService implements ports.RosterService.
type RosterService struct {
	repo   ports.RosterRepository
	logger zerolog.Logger
}

func NewRosterService(repo ports.RosterRepository, logger zerolog.Logger) *RosterService {
	return &RosterService{repo: repo, logger: logger}
}

// List returns the roster ordered by case-folded name.
func (s *RosterService) List(ctx context.Context) ([]domain.Worker, error) {
	workers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	fold := cases.Fold()
	slices.SortStableFunc(workers, func(a, b domain.Worker) int {
		return strings.Compare(fold.String(a.Name), fold.String(b.Name))
	})
	return workers, nil
}

// Create registers a new worker. The id is a slug of the name, suffixed with
// -1, -2, ... when the slug is already taken. A concurrent registration that
// takes the chosen id first makes Create pick the next free one.
func (s *RosterService) Create(ctx context.Context, name string) (*domain.Worker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create worker: %w: name is required", domain.ErrInvalidInput)
	}

	for attempt := 1; ; attempt++ {
		w, err := s.tryCreate(ctx, name)
		if err == nil {
			s.logger.Info().Str("worker_id", w.ID).Msg("worker registered")
			return w, nil
		}
		if !errors.Is(err, errIDTaken) || attempt == maxCreateAttempts {
			if errors.Is(err, errIDTaken) {
				err = domain.ErrWorkerExists
			}
			return nil, fmt.Errorf("create worker: %w", err)
		}
		s.logger.Debug().Str("name", name).Int("attempt", attempt).Msg("worker id taken concurrently, retrying")
	}
}

// errIDTaken marks a repository conflict on the id alone: no registered
// name collides, so another slug can be tried.
var errIDTaken = errors.New("worker id taken")

const maxCreateAttempts = 3

func (s *RosterService) tryCreate(ctx context.Context, name string) (*domain.Worker, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(existing))
	for _, w := range existing {
		if SameName(w.Name, name) {
			return nil, fmt.Errorf("%w: %q", domain.ErrWorkerExists, name)
		}
		ids = append(ids, w.ID)
	}

	w := domain.Worker{ID: GenerateID(name, ids), Name: name}
	err = s.repo.Create(ctx, w)
	switch {
	case err == nil:
		return &w, nil
	case errors.Is(err, domain.ErrWorkerExists):
		return nil, s.classifyConflict(ctx, name, err)
	default:
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create worker")
		return nil, err
	}
}

// classifyConflict re-reads the roster after a rejected insert. A name
// registered in the meantime is a real conflict; otherwise only the id
// collided.
func (s *RosterService) classifyConflict(ctx context.Context, name string, conflict error) error {
	workers, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range workers {
		if SameName(w.Name, name) {
			return conflict
		}
	}
	return errIDTaken
}

// Delete removes a worker from the roster. Their events stay in the log.
func (s *RosterService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("delete worker: %w: id is required", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	s.logger.Info().Str("worker_id", id).Msg("worker removed")
	return nil
}

// SameName reports whether two worker names collide after case folding.
func SameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

// GenerateID derives a URL-safe slug from name that is not in existing.
func GenerateID(name string, existing []string) string {
	slug := Slugify(name)
	taken := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		taken[id] = struct{}{}
	}

	candidate := slug
	for n := 1; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = slug + "-" + strconv.Itoa(n)
	}
}

// Slugify lowercases name, strips diacritics and collapses every run of
// characters outside [a-z0-9] into a single dash.
func Slugify(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}
