package wizard

import (
	"reflect"
	"testing"
	"time"
)

func fullFormData() FormData {
	in := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC)
	return FormData{
		PreferredAddress:       "angel, london",
		PreferredMetroStations: []string{"angel", "old street"},
		PreferredEssentials:    []string{"supermarket"},
		PreferredCommuteTimes:  []string{"under_30"},

		MinPrice:    1000,
		MaxPrice:    2000,
		MoveInDate:  &in,
		MoveOutDate: &out,

		PropertyTypes:   []string{"flat"},
		Bedrooms:        []int{1, 2},
		Bathrooms:       []int{1},
		Furnishing:      []string{"furnished"},
		OutdoorSpace:    true,
		Balcony:         true,
		Terrace:         false,
		MinSquareMeters: 40,
		MaxSquareMeters: 80,

		BuildingTypes: []string{"co-living"},
		LetDuration:   "12_months",
		Bills:         "included",
		TenantTypes:   []string{"professional"},

		PetPolicy:     true,
		Pets:          []string{"cat", "other"},
		PetCustomType: "ferret",
		NumberOfPets:  2,

		Amenities:   []string{"gym", "pool"},
		IsConcierge: true,
		SmokingArea: false,

		Hobbies:                []string{"climbing"},
		IdealLivingEnvironment: []string{"quiet"},
		Smoker:                 "no",
		AdditionalInfo:         "ground floor preferred",
	}
}

func TestFormDataRoundTrip(t *testing.T) {
	f := fullFormData()
	got := FormDataFromAPI(f.ToPreferences())
	if !reflect.DeepEqual(f, got) {
		t.Fatalf("round trip changed form data:\nwant %+v\ngot  %+v", f, got)
	}
}

func TestFormDataForAPICoversRegistry(t *testing.T) {
	f := fullFormData()
	names := make([]string, 0, len(fieldRegistry))
	for name := range fieldRegistry {
		names = append(names, name)
	}

	out := FormDataForAPI(f, names)
	if len(out) != len(fieldRegistry) {
		t.Fatalf("expected %d fields, got %d", len(fieldRegistry), len(out))
	}
	if out["preferred_address"] != "angel, london" {
		t.Errorf("unexpected preferred_address: %v", out["preferred_address"])
	}
	if out["min_price"] != 1000 {
		t.Errorf("unexpected min_price: %v", out["min_price"])
	}
}

func TestNormalizeAPIFieldsRewritesAliases(t *testing.T) {
	in := map[string]interface{}{
		"property_type_preferences": []string{"flat"},
		"metro_station_preferences": []string{"angel"},
		"min_price":                 1000,
	}
	out := NormalizeAPIFields(in)

	if _, ok := out["property_type_preferences"]; ok {
		t.Error("alias key should not survive normalization")
	}
	if got, ok := out["property_types"]; !ok || !reflect.DeepEqual(got, []string{"flat"}) {
		t.Errorf("expected property_types from alias, got %v", got)
	}
	if got, ok := out["preferred_metro_stations"]; !ok || !reflect.DeepEqual(got, []string{"angel"}) {
		t.Errorf("expected preferred_metro_stations from alias, got %v", got)
	}
	if out["min_price"] != 1000 {
		t.Errorf("canonical key should pass through, got %v", out["min_price"])
	}
}

func TestNormalizeAPIFieldsCanonicalWins(t *testing.T) {
	in := map[string]interface{}{
		"amenity_preferences": []string{"old"},
		"amenities":           []string{"new"},
	}
	out := NormalizeAPIFields(in)

	if got := out["amenities"]; !reflect.DeepEqual(got, []string{"new"}) {
		t.Errorf("expected the canonical value to win, got %v", got)
	}
	if len(out) != 1 {
		t.Errorf("expected a single key, got %v", out)
	}
}

func TestNormalizeAPIFieldsDropsUnknownKeys(t *testing.T) {
	in := map[string]interface{}{
		"min_price":  900,
		"_id":        "abc",
		"user_id":    "tenant-1",
		"updated_at": "2026-08-30",
		"favourite":  true,
	}
	out := NormalizeAPIFields(in)

	if len(out) != 1 {
		t.Fatalf("expected only min_price to survive, got %v", out)
	}
	if out["min_price"] != 900 {
		t.Errorf("unexpected min_price: %v", out["min_price"])
	}
}
