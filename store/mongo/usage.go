// Package mongo stores the usage ledger in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/applytrack/pkg/usage"
)

const colUsageEvents = "usage_events"

var _ usage.Store = (*UsageStore)(nil)

// UsageStore implements usage.Store on a MongoDB collection.
type UsageStore struct {
	coll *mongo.Collection
}

func NewUsageStore(db *mongo.Database) *UsageStore {
	if db == nil {
		panic("mongo: database is required")
	}
	return &UsageStore{coll: db.Collection(colUsageEvents)}
}

// Migrate creates the indexes the quota queries rely on.
func (s *UsageStore) Migrate(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "feature", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("usage/mongo: create indexes: %w", err)
	}
	return nil
}

type usageEventModel struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Feature   string         `bson:"feature"`
	Count     int64          `bson:"count"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

func toUsageEventModel(e usage.Event) usageEventModel {
	return usageEventModel{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Feature:   string(e.Feature),
		Count:     e.Count,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func fromUsageEventModel(m usageEventModel) (usage.Event, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return usage.Event{}, err
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return usage.Event{}, err
	}
	return usage.Event{
		ID:        id,
		UserID:    userID,
		Feature:   usage.Feature(m.Feature),
		Count:     m.Count,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (s *UsageStore) Append(ctx context.Context, e usage.Event) error {
	if _, err := s.coll.InsertOne(ctx, toUsageEventModel(e)); err != nil {
		return errors.Join(usage.ErrStore, err)
	}
	return nil
}

func (s *UsageStore) Sum(ctx context.Context, q usage.Query) (int64, error) {
	match := bson.M{
		"user_id": q.UserID.String(),
		"feature": string(q.Feature),
	}
	if !q.Since.IsZero() {
		match["created_at"] = bson.M{"$gte": q.Since.UTC()}
	}
	pipeline := bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$count"}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, errors.Join(usage.ErrStore, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, errors.Join(usage.ErrStore, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// List returns the newest events first.
func (s *UsageStore) List(ctx context.Context, userID uuid.UUID, limit int) ([]usage.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, errors.Join(usage.ErrStore, err)
	}
	defer cursor.Close(ctx)

	var models []usageEventModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, errors.Join(usage.ErrStore, err)
	}

	events := make([]usage.Event, 0, len(models))
	for _, m := range models {
		e, err := fromUsageEventModel(m)
		if err != nil {
			return nil, errors.Join(usage.ErrStore, err)
		}
		events = append(events, e)
	}
	return events, nil
}
