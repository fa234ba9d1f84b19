package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentalhub/backend/config"
	"github.com/rentalhub/backend/models"
)

type ContextKey string

const (
	UserIDKey   = ContextKey("userID")
	UserRoleKey = ContextKey("userRole")
)

func CreateProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var property models.Property
		if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
			logrus.WithError(err).Warn("Invalid property request body")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		property.ID = primitive.NewObjectID()
		property.CreatedBy = userID
		if property.AvailableFrom.IsZero() {
			property.AvailableFrom = time.Now()
		}

		if _, err := config.PropertyCollection.InsertOne(r.Context(), property); err != nil {
			logrus.WithError(err).Error("Property insert failed")
			http.Error(w, "Failed to create property", http.StatusInternalServerError)
			return
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(property)
	}
}

func GetAllProperties(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		query := r.URL.Query()
		cacheKey := generateCacheKey(userID, query)

		cachedData, err := redisClient.Get(r.Context(), cacheKey).Result()
		if err == nil {
			logrus.Debugf("Cache hit for key: %s", cacheKey)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cachedData))
			return
		}
		if err != redis.Nil {
			logrus.WithError(err).Warnf("Redis GET error for key %s", cacheKey)
		}

		var andConditions []bson.M
		fieldSpecificConditions := make(map[string]bson.M)

		operatorMap := map[string]string{
			"eq": "$eq", "ne": "$ne", "gt": "$gt", "gte": "$gte", "lt": "$lt", "lte": "$lte",
		}
		numericFields := map[string]bool{
			"price": true, "square_meters": true, "bedrooms": true, "bathrooms": true,
		}
		dateFields := map[string]bool{"available_from": true}
		boolFields := map[string]bool{
			"pet_policy": true, "outdoor_space": true, "balcony": true, "terrace": true,
		}
		stringFields := map[string]bool{
			"title": true, "property_type": true, "furnishing": true, "bills": true,
			"let_duration": true, "created_by": true,
		}

		for rawKey, queryValues := range query {
			if rawKey == "userID" || len(queryValues) == 0 || queryValues[0] == "" {
				continue
			}

			fieldKey := rawKey
			mongoOperator := "$eq"

			if strings.Contains(rawKey, "[") && strings.Contains(rawKey, "]") {
				parts := strings.SplitN(rawKey, "[", 2)
				fieldKey = parts[0]
				opKey := strings.TrimSuffix(parts[1], "]")
				if mappedOp, exists := operatorMap[opKey]; exists {
					mongoOperator = mappedOp
				} else {
					logrus.Warnf("Unknown operator key: %s in query param %s", opKey, rawKey)
					continue
				}
			}
			queryValue := queryValues[0]
			if fieldKey == "amenities" || fieldKey == "tenant_types" {
				terms := strings.Split(queryValue, ",")
				var orClausesForField bson.A
				for _, term := range terms {
					trimmedTerm := strings.TrimSpace(term)
					if trimmedTerm == "" {
						continue
					}
					orClausesForField = append(orClausesForField, bson.M{fieldKey: bson.M{"$regex": primitive.Regex{Pattern: trimmedTerm, Options: "i"}}})
				}
				if len(orClausesForField) > 0 {
					andConditions = append(andConditions, bson.M{"$or": orClausesForField})
				}
				continue
			}

			if stringFields[fieldKey] {
				values := strings.Split(queryValue, ",")
				var trimmedValues []string
				for _, v := range values {
					trimmedV := strings.TrimSpace(v)
					if trimmedV != "" {
						trimmedValues = append(trimmedValues, trimmedV)
					}
				}
				if len(trimmedValues) > 0 {
					switch mongoOperator {
					case "$ne":
						andConditions = append(andConditions, bson.M{fieldKey: bson.M{"$nin": trimmedValues}})
					default:
						andConditions = append(andConditions, bson.M{fieldKey: bson.M{"$in": trimmedValues}})
					}
				}
				continue
			}

			if boolFields[fieldKey] {
				boolVal, err := strconv.ParseBool(strings.ToLower(queryValue))
				if err == nil {
					andConditions = append(andConditions, bson.M{fieldKey: bson.M{mongoOperator: boolVal}})
				} else {
					logrus.Warnf("Invalid boolean value for %s: %s", fieldKey, queryValue)
				}
				continue
			}

			if numericFields[fieldKey] || dateFields[fieldKey] {
				if _, ok := fieldSpecificConditions[fieldKey]; !ok {
					fieldSpecificConditions[fieldKey] = bson.M{}
				}

				if numericFields[fieldKey] {
					numVal, err := strconv.ParseFloat(queryValue, 64)
					if err == nil {
						fieldSpecificConditions[fieldKey][mongoOperator] = numVal
					} else {
						logrus.Warnf("Invalid numeric value for %s: %s", fieldKey, queryValue)
					}
				} else {
					t, err := time.Parse("2006-01-02", queryValue)
					if err == nil {
						fieldSpecificConditions[fieldKey][mongoOperator] = t
					} else {
						logrus.Warnf("Invalid date value for %s: %s", fieldKey, queryValue)
					}
				}
				continue
			}
			logrus.Warnf("Unhandled query parameter: %s (parsed as field: %s)", rawKey, fieldKey)
		}

		for field, conditionsMap := range fieldSpecificConditions {
			if len(conditionsMap) > 0 {
				andConditions = append(andConditions, bson.M{field: conditionsMap})
			}
		}

		finalMongoQuery := bson.M{}
		if len(andConditions) > 0 {
			finalMongoQuery["$and"] = andConditions
		}
		findOptions := options.Find().SetLimit(50)

		cursor, err := config.PropertyCollection.Find(r.Context(), finalMongoQuery, findOptions)
		if err != nil {
			logrus.WithError(err).Errorf("Error fetching properties with query %+v", finalMongoQuery)
			http.Error(w, "Error fetching properties", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var properties []models.Property
		if err := cursor.All(r.Context(), &properties); err != nil {
			logrus.WithError(err).Error("Error decoding properties")
			http.Error(w, "Error decoding properties", http.StatusInternalServerError)
			return
		}

		annotateShortlisted(r.Context(), userID, properties)

		resultBytes, err := json.Marshal(properties)
		if err != nil {
			logrus.WithError(err).Error("Failed to serialize properties")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		if err := redisClient.Set(r.Context(), cacheKey, resultBytes, 10*time.Minute).Err(); err != nil {
			logrus.WithError(err).Warnf("Failed to cache response for key %s", cacheKey)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

// annotateShortlisted marks each property the tenant has shortlisted. A
// lookup failure only loses the flag, not the listing.
func annotateShortlisted(ctx context.Context, userID string, properties []models.Property) {
	if len(properties) == 0 {
		return
	}

	propertyIDs := make([]primitive.ObjectID, 0, len(properties))
	for _, prop := range properties {
		propertyIDs = append(propertyIDs, prop.ID)
	}

	filter := bson.M{
		"user_id":     userID,
		"property_id": bson.M{"$in": propertyIDs},
	}

	cursor, err := config.ShortlistCollection.Find(ctx, filter)
	if err != nil {
		logrus.WithError(err).Warnf("Error fetching shortlist for user %s", userID)
		return
	}
	defer cursor.Close(ctx)

	shortlisted := make(map[primitive.ObjectID]bool)
	for cursor.Next(ctx) {
		var entry models.Shortlist
		if err := cursor.Decode(&entry); err != nil {
			logrus.WithError(err).Warn("Error decoding shortlist entry")
			continue
		}
		shortlisted[entry.PropertyID] = true
	}
	if cursor.Err() != nil {
		logrus.WithError(cursor.Err()).Warn("Shortlist cursor iteration error")
	}

	for i := range properties {
		if shortlisted[properties[i].ID] {
			properties[i].IsShortlisted = true
		}
	}
}

func UpdateProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			logrus.WithError(err).Warn("Invalid update data")
			http.Error(w, "Invalid update data", http.StatusBadRequest)
			return
		}

		delete(updateData, "_id")
		delete(updateData, "id")
		delete(updateData, "created_by")

		if af, ok := updateData["available_from"].(string); ok {
			t, err := time.Parse(time.RFC3339, af)
			if err == nil {
				updateData["available_from"] = t
			} else {
				logrus.Warnf("Could not parse 'available_from' string '%s' as RFC3339 time: %v", af, err)
			}
		}

		filter := bson.M{"_id": objID, "created_by": userID}
		update := bson.M{"$set": updateData}

		res, err := config.PropertyCollection.UpdateOne(r.Context(), filter, update)
		if err != nil {
			logrus.WithError(err).Errorf("Update failed for property %s", propertyID)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		if res.MatchedCount == 0 {
			http.Error(w, "No property found or unauthorized", http.StatusForbidden)
			return
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property updated successfully"})
	}
}

func DeleteProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		filter := bson.M{"_id": objID, "created_by": userID}

		res, err := config.PropertyCollection.DeleteOne(r.Context(), filter)
		if err != nil {
			logrus.WithError(err).Errorf("Delete failed for property %s", propertyID)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if res.DeletedCount == 0 {
			http.Error(w, "No property found or unauthorized", http.StatusForbidden)
			return
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property deleted successfully"})
	}
}

func generateCacheKey(userID string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(userID)
	sb.WriteString(":")

	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "property:" + hex.EncodeToString(sum[:])
}

func deletePropertyCache(redisClient *redis.Client) {
	deleteCacheByPattern(redisClient, "property:*")
	deleteCacheByPattern(redisClient, "matches:*")
}

func deleteCacheByPattern(redisClient *redis.Client, scanPattern string) {
	ctx := context.Background()
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			logrus.WithError(err).Errorf("Error during Redis SCAN for pattern '%s'", scanPattern)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil {
		logrus.WithError(execErr).Errorf("Error deleting %d cache keys matching '%s'", len(keysToDelete), scanPattern)
	} else {
		logrus.Infof("Cache invalidated: deleted %d keys matching '%s'", len(keysToDelete), scanPattern)
	}
}
