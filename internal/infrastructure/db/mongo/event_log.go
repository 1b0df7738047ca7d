package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightshift/clockin-system/internal/api/metrics"
	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/core/presence"
)

const collectionEvents = "clock_events"

// Locker serialises read-modify-write cycles across replicas.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// eventDoc is the stored shape of a ClockEvent. Seq preserves append order;
// a nil Timestamp marks a malformed record.
type eventDoc struct {
	ID         string     `bson:"_id"`
	Seq        int64      `bson:"seq"`
	WorkerID   string     `bson:"worker_id"`
	WorkerName string     `bson:"worker_name"`
	Action     string     `bson:"action"`
	Timestamp  *time.Time `bson:"timestamp"`
}

// EventLog implements ports.EventLog on a MongoDB collection. Mutations run
// under lock, and each cycle's deletes and inserts commit in one transaction,
// so readers see the log either before or after a cycle. Transactions need a
// replica set; a single-node replica set is enough.
type EventLog struct {
	col  *mongo.Collection
	lock Locker
}

var _ ports.EventLog = (*EventLog)(nil)

func NewEventLog(db *mongo.Database, lock Locker) *EventLog {
	return &EventLog{col: db.Collection(collectionEvents), lock: lock}
}

// EnsureIndexes creates the seq index used for ordered reads.
func (l *EventLog) EnsureIndexes(ctx context.Context) error {
	_, err := l.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create seq index: %w", err)
	}
	return nil
}

func (l *EventLog) Append(ctx context.Context, event domain.ClockEvent) error {
	return l.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		return append(current, event), nil
	})
}

func (l *EventLog) ReadAll(ctx context.Context) ([]domain.ClockEvent, error) {
	docs, err := l.readDocs(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]domain.ClockEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

func (l *EventLog) Replace(ctx context.Context, events []domain.ClockEvent) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return l.apply(ctx, planReplace(events))
}

func (l *EventLog) Update(ctx context.Context, fn ports.UpdateFunc) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	docs, err := l.readDocs(ctx)
	if err != nil {
		return err
	}
	current := make([]domain.ClockEvent, 0, len(docs))
	var lastSeq int64
	for _, d := range docs {
		current = append(current, d.toDomain())
		lastSeq = d.Seq
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return l.apply(ctx, planUpdate(current, next, lastSeq))
}

func (l *EventLog) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := l.col.Database().Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (l *EventLog) acquire(ctx context.Context) (func(), error) {
	started := time.Now()
	release, err := l.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	metrics.StorageLockWait.WithLabelValues("mongo").Observe(time.Since(started).Seconds())
	return release, nil
}

func (l *EventLog) readDocs(ctx context.Context) ([]eventDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := l.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: find events: %v", domain.ErrStorageUnavailable, err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode events: %v", domain.ErrStorageUnavailable, err)
	}
	return docs, nil
}

// writePlan is the set of writes one cycle commits.
type writePlan struct {
	deleteAll bool
	deleteIDs []string
	inserts   []eventDoc
}

func (p writePlan) empty() bool {
	return !p.deleteAll && len(p.deleteIDs) == 0 && len(p.inserts) == 0
}

// planReplace rewrites the whole collection with seqs starting at 1.
func planReplace(events []domain.ClockEvent) writePlan {
	return writePlan{deleteAll: true, inserts: newEventDocs(events, 1)}
}

// planUpdate deletes the ids missing from next and appends new events after
// lastSeq, so surviving documents keep their seq.
func planUpdate(current, next []domain.ClockEvent, lastSeq int64) writePlan {
	removed, added := presence.Diff(current, next)
	return writePlan{deleteIDs: removed, inserts: newEventDocs(added, lastSeq+1)}
}

// apply commits p in a single transaction. Nothing is written when any
// step fails.
func (l *EventLog) apply(ctx context.Context, p writePlan) error {
	if p.empty() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := l.col.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrStorageUnavailable, err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		switch {
		case p.deleteAll:
			if _, err := l.col.DeleteMany(sc, bson.M{}); err != nil {
				return nil, fmt.Errorf("clear events: %w", err)
			}
		case len(p.deleteIDs) > 0:
			if _, err := l.col.DeleteMany(sc, bson.M{"_id": bson.M{"$in": p.deleteIDs}}); err != nil {
				return nil, fmt.Errorf("delete events: %w", err)
			}
		}
		if len(p.inserts) == 0 {
			return nil, nil
		}
		docs := make([]interface{}, 0, len(p.inserts))
		for _, d := range p.inserts {
			docs = append(docs, d)
		}
		if _, err := l.col.InsertMany(sc, docs, options.InsertMany().SetOrdered(true)); err != nil {
			return nil, fmt.Errorf("insert events: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func newEventDocs(events []domain.ClockEvent, firstSeq int64) []eventDoc {
	docs := make([]eventDoc, 0, len(events))
	for i, e := range events {
		docs = append(docs, newEventDoc(e, firstSeq+int64(i)))
	}
	return docs
}

func newEventDoc(e domain.ClockEvent, seq int64) eventDoc {
	d := eventDoc{
		ID:         e.ID,
		Seq:        seq,
		WorkerID:   e.WorkerID,
		WorkerName: e.WorkerName,
		Action:     string(e.Action),
	}
	if !e.Malformed() {
		ts := e.Timestamp.UTC()
		d.Timestamp = &ts
	}
	return d
}

func (d eventDoc) toDomain() domain.ClockEvent {
	e := domain.ClockEvent{
		ID:         d.ID,
		WorkerID:   d.WorkerID,
		WorkerName: d.WorkerName,
		Action:     domain.Action(d.Action),
	}
	if d.Timestamp != nil {
		e.Timestamp = d.Timestamp.UTC()
	}
	return e
}
