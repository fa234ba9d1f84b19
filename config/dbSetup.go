package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection        *mongo.Collection
	PropertyCollection    *mongo.Collection
	BuildingCollection    *mongo.Collection
	PreferencesCollection *mongo.Collection
	ShortlistCollection   *mongo.Collection
	BookingCollection     *mongo.Collection
)

func ConnectDB(uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI not set in environment")
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	logrus.Info("Connected to MongoDB")
	return client, nil
}

func InitCollections(client *mongo.Client, dbName string) {
	db := client.Database(dbName)
	UserCollection = db.Collection("users")
	PropertyCollection = db.Collection("properties")
	BuildingCollection = db.Collection("buildings")
	PreferencesCollection = db.Collection("preferences")
	ShortlistCollection = db.Collection("shortlists")
	BookingCollection = db.Collection("bookings")
}

func CloseDBConnection(client *mongo.Client) {
	if err := client.Disconnect(context.TODO()); err != nil {
		logrus.Fatalf("Error closing database connection: %v", err)
	}
	logrus.Info("MongoDB connection closed")
}
