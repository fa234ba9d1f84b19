package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentalhub/backend/config"
	"github.com/rentalhub/backend/models"
)

func CreateBookingRequest(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var booking models.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
			logrus.WithError(err).Warn("Invalid booking request body")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if booking.PropertyID.IsZero() {
			http.Error(w, "property_id is required", http.StatusBadRequest)
			return
		}
		if booking.MoveInDate.IsZero() {
			http.Error(w, "move_in_date is required", http.StatusBadRequest)
			return
		}
		if booking.MoveOutDate != nil && booking.MoveOutDate.Before(booking.MoveInDate) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(models.FieldErrorResponse{
				Message: "validation failed",
				Errors:  map[string]string{"move_out_date": "must not be before move_in_date"},
			})
			return
		}

		booking.ID = primitive.NewObjectID()
		booking.TenantID = userID
		booking.Status = models.BookingPending
		booking.CreatedAt = time.Now()
		booking.UpdatedAt = booking.CreatedAt

		if _, err := config.BookingCollection.InsertOne(r.Context(), booking); err != nil {
			logrus.WithError(err).Error("Booking insert failed")
			http.Error(w, "Failed to create booking request", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Booking request submitted",
			Data:    booking,
		})
	}
}

// GetBookingRequests lists the caller's own booking requests; admins see all
// of them for moderation.
func GetBookingRequests(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}
		role, _ := r.Context().Value(UserRoleKey).(string)

		filter := bson.M{"tenant_id": userID}
		if role == models.RoleAdmin {
			filter = bson.M{}
			if status := r.URL.Query().Get("status"); status != "" {
				filter["status"] = status
			}
		}

		cursor, err := config.BookingCollection.Find(r.Context(), filter)
		if err != nil {
			logrus.WithError(err).Error("Failed to fetch booking requests")
			http.Error(w, "Failed to fetch booking requests", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var bookings []models.BookingRequest
		if err := cursor.All(r.Context(), &bookings); err != nil {
			logrus.WithError(err).Error("Failed to decode booking requests")
			http.Error(w, "Failed to decode booking requests", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched booking requests",
			Data:    bookings,
		})
	}
}

// UpdateBookingStatus moderates a booking request. Admin only.
func UpdateBookingStatus(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(UserRoleKey).(string)
		if role != models.RoleAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}

		bookingID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(bookingID)
		if err != nil {
			http.Error(w, "Invalid booking ID", http.StatusBadRequest)
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		switch body.Status {
		case models.BookingApproved, models.BookingDeclined, models.BookingPending:
		default:
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		res, err := config.BookingCollection.UpdateOne(r.Context(),
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{"status": body.Status, "updated_at": time.Now()}},
		)
		if err != nil {
			logrus.WithError(err).Errorf("Status update failed for booking %s", bookingID)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}
		if res.MatchedCount == 0 {
			http.Error(w, "Booking request not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Booking status updated",
		})
	}
}
