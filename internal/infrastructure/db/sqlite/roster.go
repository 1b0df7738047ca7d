package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/text/cases"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

// Roster implements ports.RosterRepository on the workers table. The
// folded_name column carries the case-insensitive uniqueness constraint.
type Roster struct {
	s *Store
}

var _ ports.RosterRepository = (*Roster)(nil)

func NewRoster(s *Store) *Roster {
	return &Roster{s: s}
}

func (r *Roster) List(ctx context.Context) ([]domain.Worker, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, name FROM workers ORDER BY rowid`)
	if err != nil {
		return nil, storageErr("list workers", err)
	}
	defer rows.Close()

	workers := []domain.Worker{}
	for rows.Next() {
		var w domain.Worker
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return nil, storageErr("scan worker", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list workers", err)
	}
	return workers, nil
}

func (r *Roster) FindByID(ctx context.Context, id string) (*domain.Worker, error) {
	var w domain.Worker
	err := r.s.db.QueryRowContext(ctx, `SELECT id, name FROM workers WHERE id = ?`, id).Scan(&w.ID, &w.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkerNotFound
	}
	if err != nil {
		return nil, storageErr("find worker", err)
	}
	return &w, nil
}

func (r *Roster) Create(ctx context.Context, w domain.Worker) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO workers (id, name, folded_name) VALUES (?, ?, ?)`,
		w.ID, w.Name, cases.Fold().String(w.Name),
	)
	if isUniqueViolation(err) {
		return domain.ErrWorkerExists
	}
	if err != nil {
		return storageErr("create worker", err)
	}
	return nil
}

func (r *Roster) Delete(ctx context.Context, id string) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete worker", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete worker", err)
	}
	if n == 0 {
		return domain.ErrWorkerNotFound
	}
	return nil
}
