package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentalhub/backend/models"
)

// ErrNotFound is returned when a tenant has no preferences record yet. It is
// deliberately distinct from transport failures so callers can tell a new
// user apart from an outage.
var ErrNotFound = errors.New("preferences not found")

// PreferencesStore hides the create/update branch behind a single Save:
// the first write for a tenant creates the record, later writes patch it
// field by field.
type PreferencesStore interface {
	Get(ctx context.Context, tenantID string) (*models.Preferences, error)
	Save(ctx context.Context, tenantID string, fields map[string]interface{}) (*models.Preferences, error)
}

type MongoPreferencesStore struct {
	coll *mongo.Collection
}

func NewMongoPreferencesStore(coll *mongo.Collection) *MongoPreferencesStore {
	return &MongoPreferencesStore{coll: coll}
}

func (s *MongoPreferencesStore) Get(ctx context.Context, tenantID string) (*models.Preferences, error) {
	var prefs models.Preferences
	err := s.coll.FindOne(ctx, bson.M{"user_id": tenantID}).Decode(&prefs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get preferences for %s: %w", tenantID, err)
	}
	return &prefs, nil
}

// Save upserts the given fields into the tenant's record and returns the
// record as persisted, which callers adopt as their new baseline.
func (s *MongoPreferencesStore) Save(ctx context.Context, tenantID string, fields map[string]interface{}) (*models.Preferences, error) {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		if k == "_id" || k == "user_id" {
			continue
		}
		set[k] = v
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"user_id": tenantID, "created_at": time.Now()},
	}

	var prefs models.Preferences
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"user_id": tenantID}, update, opts).Decode(&prefs)
	if err != nil {
		return nil, fmt.Errorf("save preferences for %s: %w", tenantID, err)
	}
	return &prefs, nil
}
