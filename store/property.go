package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentalhub/backend/models"
)

// PropertyStore provides the read path the match scorer consumes:
// properties with their parent building embedded.
type PropertyStore interface {
	List(ctx context.Context, filter bson.M) ([]models.Property, error)
}

type MongoPropertyStore struct {
	coll *mongo.Collection
}

func NewMongoPropertyStore(coll *mongo.Collection) *MongoPropertyStore {
	return &MongoPropertyStore{coll: coll}
}

func (s *MongoPropertyStore) List(ctx context.Context, filter bson.M) ([]models.Property, error) {
	if filter == nil {
		filter = bson.M{}
	}

	pipeline := mongo.Pipeline{
		{
			{Key: "$match", Value: filter},
		},
		{
			{Key: "$lookup", Value: bson.M{
				"from":         "buildings",
				"localField":   "building_id",
				"foreignField": "_id",
				"as":           "building",
			}},
		},
		{
			{Key: "$unwind", Value: bson.M{
				"path":                       "$building",
				"preserveNullAndEmptyArrays": true,
			}},
		},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return properties, nil
}
