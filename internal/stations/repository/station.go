package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	stationerrors "voltslot/internal/stations/errors"
	"voltslot/pkg/config"
	mongotx "voltslot/pkg/db/mongo"
	"voltslot/pkg/model"
)

const CollectionName = "Stations"

type StationRepository interface {
	Create(ctx context.Context, station *model.Station) error
	FindByID(ctx context.Context, id string) (*model.Station, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Station, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, station *model.Station) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoStationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoStationRepository(cfg *config.Config) StationRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoStationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout unless we are already inside a
// transaction; wrapping a SessionContext would break transaction semantics.
func (r *mongoStationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoStationRepository) Create(ctx context.Context, station *model.Station) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	station.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, station)
	if err != nil {
		return fmt.Errorf("failed to create station: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		station.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStationRepository) FindByID(ctx context.Context, id string) (*model.Station, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stationerrors.ErrInvalidID, id)
	}

	var station model.Station
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&station)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find station: %w", err)
	}

	return &station, nil
}

func (r *mongoStationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Station, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stations: %w", err)
	}
	defer cursor.Close(ctx)

	var stations []*model.Station
	if err = cursor.All(ctx, &stations); err != nil {
		return nil, fmt.Errorf("failed to decode stations: %w", err)
	}

	return stations, nil
}

func (r *mongoStationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count stations: %w", err)
	}
	return count, nil
}

func (r *mongoStationRepository) Update(ctx context.Context, id string, station *model.Station) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stationerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":         station.Name,
			"address":      station.Address,
			"location":     station.Location,
			"opening_time": station.OpeningTime,
			"closing_time": station.ClosingTime,
			"capacity":     station.Capacity,
			"status":       station.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update station: %w", err)
	}
	if result.MatchedCount == 0 {
		return stationerrors.ErrNotFound
	}
	return nil
}

func (r *mongoStationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stationerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}
	if result.DeletedCount == 0 {
		return stationerrors.ErrNotFound
	}
	return nil
}

func (r *mongoStationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
