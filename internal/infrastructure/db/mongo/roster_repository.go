package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/text/cases"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

const collectionWorkers = "workers"

type workerDoc struct {
	ID         string `bson:"_id"`
	Name       string `bson:"name"`
	FoldedName string `bson:"folded_name"`
}

// RosterRepository implements ports.RosterRepository using MongoDB.
type RosterRepository struct {
	col *mongo.Collection
}

var _ ports.RosterRepository = (*RosterRepository)(nil)

func NewRosterRepository(db *mongo.Database) *RosterRepository {
	return &RosterRepository{col: db.Collection(collectionWorkers)}
}

// EnsureIndexes creates the unique index that rejects duplicate names
// regardless of case.
func (r *RosterRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "folded_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create folded_name index: %w", err)
	}
	return nil
}

func (r *RosterRepository) List(ctx context.Context) ([]domain.Worker, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: list workers: %v", domain.ErrStorageUnavailable, err)
	}
	var docs []workerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode workers: %v", domain.ErrStorageUnavailable, err)
	}

	workers := make([]domain.Worker, 0, len(docs))
	for _, d := range docs {
		workers = append(workers, domain.Worker{ID: d.ID, Name: d.Name})
	}
	return workers, nil
}

func (r *RosterRepository) FindByID(ctx context.Context, id string) (*domain.Worker, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d workerDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("%w: find worker: %v", domain.ErrStorageUnavailable, err)
	}
	return &domain.Worker{ID: d.ID, Name: d.Name}, nil
}

func (r *RosterRepository) Create(ctx context.Context, w domain.Worker) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, workerDoc{ID: w.ID, Name: w.Name, FoldedName: cases.Fold().String(w.Name)})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrWorkerExists
	}
	if err != nil {
		return fmt.Errorf("%w: create worker: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RosterRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: delete worker: %v", domain.ErrStorageUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrWorkerNotFound
	}
	return nil
}
