package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rentalhub/backend/matching"
	"github.com/rentalhub/backend/models"
	"github.com/rentalhub/backend/store"
)

// GetMatches scores every available property against the tenant's stored
// preferences and returns them ranked by match score, with the per-category
// breakdown the UI renders. Results are cached per tenant and invalidated
// whenever the tenant's preferences or any property change.
func GetMatches(scorer *matching.Scorer, prefStore store.PreferencesStore, propStore store.PropertyStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		cacheKey := "matches:" + userID + ":" + strconv.Itoa(limit)
		cachedData, err := redisClient.Get(r.Context(), cacheKey).Result()
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cachedData))
			return
		}
		if err != redis.Nil {
			logrus.WithError(err).Warnf("Redis GET error for key %s", cacheKey)
		}

		prefs, err := prefStore.Get(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "No preferences found; complete the wizard first", http.StatusNotFound)
				return
			}
			logrus.WithError(err).Error("Failed to load preferences for matching")
			http.Error(w, "Failed to load preferences", http.StatusInternalServerError)
			return
		}

		properties, err := propStore.List(r.Context(), bson.M{})
		if err != nil {
			logrus.WithError(err).Error("Failed to list properties for matching")
			http.Error(w, "Failed to list properties", http.StatusInternalServerError)
			return
		}

		matches, err := scorer.ScoreProperties(r.Context(), *prefs, properties)
		if err != nil {
			logrus.WithError(err).Error("Scoring failed")
			http.Error(w, "Failed to score properties", http.StatusInternalServerError)
			return
		}
		if len(matches) > limit {
			matches = matches[:limit]
		}

		resultBytes, err := json.Marshal(models.APIResponse{
			Success: true,
			Message: "Fetched matched properties",
			Data:    matches,
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to serialize matches")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		if err := redisClient.Set(r.Context(), cacheKey, resultBytes, 5*time.Minute).Err(); err != nil {
			logrus.WithError(err).Warnf("Failed to cache matches for key %s", cacheKey)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}
