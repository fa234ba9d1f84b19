package routes

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentalhub/backend/controllers"
	"github.com/rentalhub/backend/matching"
	"github.com/rentalhub/backend/middleware"
	"github.com/rentalhub/backend/store"
)

func Routes(router *mux.Router, client *mongo.Client, redisClient *redis.Client, scorer *matching.Scorer, prefStore store.PreferencesStore, propStore store.PropertyStore) {
	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(client)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(client)).Methods("POST")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.AuthMiddleware)

	// Property routes
	authenticated.HandleFunc("/properties", controllers.CreateProperty(redisClient)).Methods("POST")
	authenticated.HandleFunc("/properties", controllers.GetAllProperties(redisClient)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.UpdateProperty(redisClient)).Methods("PUT")
	authenticated.HandleFunc("/properties/{id}", controllers.DeleteProperty(redisClient)).Methods("DELETE")

	// Building routes
	authenticated.HandleFunc("/buildings", controllers.CreateBuilding(client)).Methods("POST")
	authenticated.HandleFunc("/buildings", controllers.GetBuildings(client)).Methods("GET")
	authenticated.HandleFunc("/buildings/{id}", controllers.UpdateBuilding(client)).Methods("PUT")
	authenticated.HandleFunc("/buildings/{id}", controllers.DeleteBuilding(client)).Methods("DELETE")

	// Preferences routes (consumed by the wizard)
	authenticated.HandleFunc("/preferences", controllers.GetPreferences(prefStore)).Methods("GET")
	authenticated.HandleFunc("/preferences", controllers.PatchPreferences(prefStore, redisClient)).Methods("PATCH")

	// Match routes
	authenticated.HandleFunc("/matches", controllers.GetMatches(scorer, prefStore, propStore, redisClient)).Methods("GET")

	// Shortlist routes
	authenticated.HandleFunc("/shortlist", controllers.AddToShortlist(client)).Methods("POST")
	authenticated.HandleFunc("/shortlist", controllers.GetShortlist(client)).Methods("GET")
	authenticated.HandleFunc("/shortlist/{propertyID}", controllers.RemoveFromShortlist(client)).Methods("DELETE")

	// Booking routes
	authenticated.HandleFunc("/bookings", controllers.CreateBookingRequest(client)).Methods("POST")
	authenticated.HandleFunc("/bookings", controllers.GetBookingRequests(client)).Methods("GET")
	authenticated.HandleFunc("/bookings/{id}/status", controllers.UpdateBookingStatus(client)).Methods("PUT")
}
