package controllers

import (
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

func CreateBuilding(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var building models.Building
		if err := json.NewDecoder(r.Body).Decode(&building); err != nil {
			logrus.WithError(err).Warn("Invalid building request body")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if building.Address == "" {
			http.Error(w, "address is required", http.StatusBadRequest)
			return
		}

		building.ID = primitive.NewObjectID()
		building.CreatedBy = userID

		if _, err := config.BuildingCollection.InsertOne(r.Context(), building); err != nil {
			logrus.WithError(err).Error("Building insert failed")
			http.Error(w, "Failed to create building", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(building)
	}
}

func GetBuildings(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := bson.M{}
		if city := r.URL.Query().Get("city"); city != "" {
			filter["city"] = city
		}

		cursor, err := config.BuildingCollection.Find(r.Context(), filter)
		if err != nil {
			logrus.WithError(err).Error("Error fetching buildings")
			http.Error(w, "Error fetching buildings", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var buildings []models.Building
		if err := cursor.All(r.Context(), &buildings); err != nil {
			logrus.WithError(err).Error("Error decoding buildings")
			http.Error(w, "Error decoding buildings", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched buildings",
			Data:    buildings,
		})
	}
}

func UpdateBuilding(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		buildingID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(buildingID)
		if err != nil {
			http.Error(w, "Invalid building ID", http.StatusBadRequest)
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			http.Error(w, "Invalid update data", http.StatusBadRequest)
			return
		}

		delete(updateData, "_id")
		delete(updateData, "id")
		delete(updateData, "created_by")

		filter := bson.M{"_id": objID, "created_by": userID}
		res, err := config.BuildingCollection.UpdateOne(r.Context(), filter, bson.M{"$set": updateData})
		if err != nil {
			logrus.WithError(err).Errorf("Update failed for building %s", buildingID)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		if res.MatchedCount == 0 {
			http.Error(w, "No building found or unauthorized", http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Building updated successfully"})
	}
}

func DeleteBuilding(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		buildingID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(buildingID)
		if err != nil {
			http.Error(w, "Invalid building ID", http.StatusBadRequest)
			return
		}

		res, err := config.BuildingCollection.DeleteOne(r.Context(), bson.M{"_id": objID, "created_by": userID})
		if err != nil {
			logrus.WithError(err).Errorf("Delete failed for building %s", buildingID)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if res.DeletedCount == 0 {
			http.Error(w, "No building found or unauthorized", http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Building deleted successfully"})
	}
}
