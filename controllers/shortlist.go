package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentalhub/backend/config"
	"github.com/rentalhub/backend/models"
)

func AddToShortlist(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var entry models.Shortlist
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			logrus.WithError(err).Warn("Invalid shortlist request data")
			http.Error(w, "Invalid request data", http.StatusBadRequest)
			return
		}

		if entry.PropertyID.IsZero() {
			http.Error(w, "property_id is required", http.StatusBadRequest)
			return
		}

		entry.UserID = userID
		entry.ID = primitive.NewObjectID()

		var existing models.Shortlist
		err := config.ShortlistCollection.FindOne(context.TODO(), bson.M{"user_id": userID, "property_id": entry.PropertyID}).Decode(&existing)
		if err == nil {
			http.Error(w, "Property is already shortlisted", http.StatusConflict)
			return
		}
		if err != mongo.ErrNoDocuments {
			logrus.WithError(err).Error("Failed to check shortlist")
			http.Error(w, "Failed to check shortlist", http.StatusInternalServerError)
			return
		}

		if _, err = config.ShortlistCollection.InsertOne(context.TODO(), entry); err != nil {
			logrus.WithError(err).Error("Failed to shortlist property")
			http.Error(w, "Failed to shortlist property", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Property shortlisted",
			Data:    entry,
		})
	}
}

func GetShortlist(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		pipeline := mongo.Pipeline{
			{
				{Key: "$match", Value: bson.M{"user_id": userID}},
			},
			{
				{Key: "$lookup", Value: bson.M{
					"from":         "properties",
					"localField":   "property_id",
					"foreignField": "_id",
					"as":           "propertyDetails",
				}},
			},
			{
				{Key: "$unwind", Value: "$propertyDetails"},
			},
			{
				{Key: "$replaceRoot", Value: bson.M{"newRoot": "$propertyDetails"}},
			},
		}

		cursor, err := config.ShortlistCollection.Aggregate(context.TODO(), pipeline)
		if err != nil {
			logrus.WithError(err).Error("Failed to fetch shortlisted properties")
			http.Error(w, "Failed to fetch shortlisted properties", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(context.TODO())

		var properties []models.Property
		if err := cursor.All(context.TODO(), &properties); err != nil {
			logrus.WithError(err).Error("Failed to decode shortlisted properties")
			http.Error(w, "Failed to decode shortlisted properties", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched shortlisted properties",
			Data:    properties,
		})
	}
}

func RemoveFromShortlist(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyIDHex := mux.Vars(r)["propertyID"]
		propertyObjID, err := primitive.ObjectIDFromHex(propertyIDHex)
		if err != nil {
			http.Error(w, "Invalid property ID format", http.StatusBadRequest)
			return
		}

		deleteResult, err := config.ShortlistCollection.DeleteOne(context.TODO(), bson.M{
			"user_id":     userID,
			"property_id": propertyObjID,
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to remove property from shortlist")
			http.Error(w, "Failed to remove property from shortlist", http.StatusInternalServerError)
			return
		}

		if deleteResult.DeletedCount == 0 {
			http.Error(w, "Shortlist entry not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Property removed from shortlist",
		})
	}
}
