package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// Weights defines the maximum contribution of each match category.
type Weights struct {
	MetroStations float64 `json:"metro_stations"`
	Essentials    float64 `json:"essentials"`
	CommuteTimes  float64 `json:"commute_times"`
	Price         float64 `json:"price"`
	Bedrooms      float64 `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	PropertyType  float64 `json:"property_type"`
	Furnishing    float64 `json:"furnishing"`
	SquareMeters  float64 `json:"square_meters"`
	BuildingType  float64 `json:"building_type"`
	LetDuration   float64 `json:"let_duration"`
	Bills         float64 `json:"bills"`
	TenantType    float64 `json:"tenant_type"`
	PetPolicy     float64 `json:"pet_policy"`
	Amenities     float64 `json:"amenities"`
	Concierge     float64 `json:"concierge"`
	SmokingArea   float64 `json:"smoking_area"`
	OutdoorSpace  float64 `json:"outdoor_space"`
}

// DefaultWeights returns the baseline weighting used when no weights file is
// configured. Price and location dominate, lifestyle flags trail.
func DefaultWeights() Weights {
	return Weights{
		MetroStations: 1.0,
		Essentials:    0.5,
		CommuteTimes:  0.6,
		Price:         1.0,
		Bedrooms:      0.9,
		Bathrooms:     0.7,
		PropertyType:  0.8,
		Furnishing:    0.6,
		SquareMeters:  0.7,
		BuildingType:  0.5,
		LetDuration:   0.5,
		Bills:         0.4,
		TenantType:    0.5,
		PetPolicy:     0.9,
		Amenities:     0.8,
		Concierge:     0.3,
		SmokingArea:   0.3,
		OutdoorSpace:  0.6,
	}
}

// LoadWeightsFromFile loads weights from a JSON file, starting from defaults
// so a partial file only overrides the categories it names.
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return w, fmt.Errorf("unmarshal weights: %w", err)
	}
	return w, nil
}
