package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rentalhub/backend/models"
	"github.com/rentalhub/backend/store"
	"github.com/rentalhub/backend/wizard"
)

// GetPreferences returns the tenant's stored preferences. A 404 means the
// tenant has none yet; anything else is a real failure, never conflated.
func GetPreferences(prefStore store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		prefs, err := prefStore.Get(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "No preferences found", http.StatusNotFound)
				return
			}
			logrus.WithError(err).Error("Failed to load preferences")
			http.Error(w, "Failed to load preferences", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched preferences",
			Data:    prefs,
		})
	}
}

// PatchPreferences applies a partial update to the tenant's preferences,
// creating the record on first save. Alias keys from older clients are
// reconciled before validation; the tenant's cached matches are invalidated
// afterwards.
func PatchPreferences(prefStore store.PreferencesStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			logrus.WithError(err).Warn("Invalid preferences payload")
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		fields = wizard.NormalizeAPIFields(normalizePatchValues(fields))
		if len(fields) == 0 {
			http.Error(w, "No recognized fields in payload", http.StatusBadRequest)
			return
		}

		if verr := validatePatch(fields); verr != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(models.FieldErrorResponse{
				Message: "validation failed",
				Errors:  verr.Fields,
			})
			return
		}

		prefs, err := prefStore.Save(r.Context(), userID, fields)
		if err != nil {
			logrus.WithError(err).Error("Failed to save preferences")
			http.Error(w, "Failed to save preferences", http.StatusInternalServerError)
			return
		}

		go func() {
			deleteCacheByPattern(redisClient, "matches:"+userID+"*")
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Preferences saved",
			Data:    prefs,
		})
	}
}

// normalizePatchValues converts the JSON decoder's loose types into the
// shapes the store expects for date fields.
func normalizePatchValues(fields map[string]interface{}) map[string]interface{} {
	for _, key := range []string{"move_in_date", "move_out_date"} {
		if s, ok := fields[key].(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				fields[key] = t
			} else if t, err := time.Parse("2006-01-02", s); err == nil {
				fields[key] = t
			}
		}
	}
	return fields
}

// validatePatch checks cross-field invariants within the incoming partial.
// Coupled fields travel together (the wizard guarantees this), so both
// sides of a pair are present whenever either changed.
func validatePatch(fields map[string]interface{}) *store.ValidationError {
	errs := map[string]string{}

	minPrice, hasMin := numberField(fields, "min_price")
	maxPrice, hasMax := numberField(fields, "max_price")
	if hasMin && hasMax && minPrice > maxPrice {
		errs["max_price"] = "must be greater than or equal to min_price"
	}

	minSqm, hasMinSqm := numberField(fields, "min_square_meters")
	maxSqm, hasMaxSqm := numberField(fields, "max_square_meters")
	if hasMinSqm && hasMaxSqm && minSqm > maxSqm {
		errs["max_square_meters"] = "must be greater than or equal to min_square_meters"
	}

	moveIn, hasIn := fields["move_in_date"].(time.Time)
	moveOut, hasOut := fields["move_out_date"].(time.Time)
	if hasIn && hasOut && moveOut.Before(moveIn) {
		errs["move_out_date"] = "must not be before move_in_date"
	}

	if len(errs) == 0 {
		return nil
	}
	return &store.ValidationError{Fields: errs}
}

func numberField(fields map[string]interface{}, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
