package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sloterrors "voltslot/internal/slots/errors"
	"voltslot/pkg/config"
	"voltslot/pkg/model"
)

const CollectionName = "TimeSlots"

type TimeSlotRepository interface {
	FindByID(ctx context.Context, id string) (*model.TimeSlot, error)
	FindByStationAndDate(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error)
	UpsertBatch(ctx context.Context, slots []*model.TimeSlot) error
	InsertBatchIfAbsent(ctx context.Context, slots []*model.TimeSlot) error
	DeleteAllExcept(ctx context.Context, stationID string, keepIDs []string) (int64, error)
	TryReserve(ctx context.Context, id string) (*model.TimeSlot, error)
	TryRelease(ctx context.Context, id string) (*model.TimeSlot, error)
}

type mongoTimeSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTimeSlotRepository(cfg *config.Config) TimeSlotRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTimeSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTimeSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTimeSlotRepository) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var slot model.TimeSlot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find time slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepository) FindByStationAndDate(ctx context.Context, stationID, date string) ([]*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"station_id": stationID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find time slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode time slots: %w", err)
	}
	return slots, nil
}

// UpsertBatch writes a generated batch keyed by the deterministic slot ID.
// Existing documents are replaced in place, which resets spot counters
// without invalidating booking references to the slot ID. Only the
// regeneration path may use this, gated on zero active bookings.
func (r *mongoTimeSlotRepository) UpsertBatch(ctx context.Context, slots []*model.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(slots))
	for _, slot := range slots {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": slot.ID}).
			SetReplacement(slot).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert time slot batch: %w", err)
	}
	return nil
}

// InsertBatchIfAbsent writes only slots that do not exist yet; documents
// already present keep their counters. This makes concurrent lazy
// materialization of the same date safe against clobbering a decrement that
// landed between the empty read and this write.
func (r *mongoTimeSlotRepository) InsertBatchIfAbsent(ctx context.Context, slots []*model.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(slots))
	for _, slot := range slots {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": slot.ID}).
			SetUpdate(bson.M{"$setOnInsert": slot}).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert time slot batch: %w", err)
	}
	return nil
}

// DeleteAllExcept removes a station's slots whose IDs are not in keepIDs.
// Regeneration calls it so slots outside a narrowed operating window or a
// shortened horizon do not linger as bookable documents.
func (r *mongoTimeSlotRepository) DeleteAllExcept(ctx context.Context, stationID string, keepIDs []string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"station_id": stationID,
		"_id":        bson.M{"$nin": keepIDs},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete superseded time slots: %w", err)
	}
	return result.DeletedCount, nil
}

// TryReserve consumes one unit of capacity as a single conditional mutation:
// the filter requires available_spots > 0 and the pipeline decrements the
// counter and derives the status in the same operation. Matching no document
// means the slot was full; the caller must not create a booking.
func (r *mongoTimeSlotRepository) TryReserve(ctx context.Context, id string) (*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":             id,
		"available_spots": bson.M{"$gt": 0},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"available_spots": bson.M{"$add": bson.A{"$available_spots", -1}},
			"status": bson.M{"$cond": bson.A{
				bson.M{"$lte": bson.A{"$available_spots", 1}},
				model.SlotBooked,
				model.SlotAvailable,
			}},
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot model.TimeSlot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrNoCapacity
		}
		return nil, fmt.Errorf("failed to reserve time slot: %w", err)
	}
	return &slot, nil
}

// TryRelease is the inverse of TryReserve, guarded so available_spots can
// never exceed total_spots.
func (r *mongoTimeSlotRepository) TryRelease(ctx context.Context, id string) (*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$available_spots", "$total_spots"}},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"available_spots": bson.M{"$add": bson.A{"$available_spots", 1}},
			"status":          model.SlotAvailable,
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot model.TimeSlot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrNothingToRelease
		}
		return nil, fmt.Errorf("failed to release time slot: %w", err)
	}
	return &slot, nil
}
