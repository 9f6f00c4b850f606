package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tafypz/ercot-rts/pkg/models"
)

const pricesCollection = "prices"

type PriceRepo struct {
	coll *mongo.Collection
}

type PriceQuery struct {
	Hub   string
	From  time.Time
	To    time.Time
	Limit int64
}

func NewPriceRepo(db *mongo.Database) *PriceRepo {
	coll := db.Collection(pricesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		// один интервал на хаб
		{Keys: bson.D{{Key: "hub", Value: 1}, {Key: "timestamp", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "collected_at", Value: -1}}},
	}
	coll.Indexes().CreateMany(ctx, indexes)

	return &PriceRepo{coll: coll}
}

// UpsertMany stores prices keyed by (hub, timestamp) and returns the ones
// that were inserted, in input order. Existing intervals are left untouched.
func (r *PriceRepo) UpsertMany(ctx context.Context, prices []models.Price) ([]models.Price, error) {
	if len(prices) == 0 {
		return nil, nil
	}

	writes := make([]mongo.WriteModel, 0, len(prices))
	for _, p := range prices {
		filter := bson.M{"hub": p.Hub, "timestamp": p.Timestamp}
		update := bson.M{"$setOnInsert": bson.M{
			"hub":          p.Hub,
			"timestamp":    p.Timestamp,
			"price":        p.Price,
			"collected_at": p.CollectedAt,
		}}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, err
	}

	// UpsertedIDs is keyed by the index of the write model
	inserted := make([]models.Price, 0, len(res.UpsertedIDs))
	for i, p := range prices {
		id, ok := res.UpsertedIDs[int64(i)]
		if !ok {
			continue
		}
		if oid, ok := id.(primitive.ObjectID); ok {
			p.ID = oid
		}
		inserted = append(inserted, p)
	}
	return inserted, nil
}

// LatestTimestamp returns the newest stored interval end for hub.
func (r *PriceRepo) LatestTimestamp(ctx context.Context, hub string) (time.Time, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var p models.Price
	err := r.coll.FindOne(ctx, bson.M{"hub": hub}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return p.Timestamp, true, nil
}

func (r *PriceRepo) Find(ctx context.Context, query PriceQuery) ([]models.Price, error) {
	filter := bson.M{"hub": query.Hub}

	ts := bson.M{}
	if !query.From.IsZero() {
		ts["$gte"] = query.From
	}
	if !query.To.IsZero() {
		ts["$lte"] = query.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if query.Limit > 0 {
		opts.SetLimit(query.Limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	prices := []models.Price{}
	if err := cursor.All(ctx, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// IntervalsSince returns the hub and timestamp of every price settled at or
// after since. Price and collected_at are not loaded.
func (r *PriceRepo) IntervalsSince(ctx context.Context, since time.Time) ([]models.Price, error) {
	opts := options.Find().SetProjection(bson.M{"hub": 1, "timestamp": 1})

	cursor, err := r.coll.Find(ctx, bson.M{"timestamp": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var intervals []models.Price
	for cursor.Next(ctx) {
		var p models.Price
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		intervals = append(intervals, p)
	}
	return intervals, cursor.Err()
}
