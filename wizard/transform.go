package wizard

import (
	"github.com/rentalhub/backend/models"
)

// apiAliases maps UI-only alias keys that older clients still send to the
// canonical wire names. Reconciliation happens here, once, at the transform
// boundary.
var apiAliases = map[string]string{
	"property_type_preferences": "property_types",
	"metro_station_preferences": "preferred_metro_stations",
	"essential_preferences":     "preferred_essentials",
	"commute_time_preferences":  "preferred_commute_times",
	"building_type_preferences": "building_types",
	"amenity_preferences":       "amenities",
}

// NormalizeAPIFields rewrites alias keys to canonical names and drops keys
// that are not part of the preferences schema. Canonical keys win when both
// the alias and the canonical key are present.
func NormalizeAPIFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		name := k
		if canonical, ok := apiAliases[k]; ok {
			name = canonical
			if _, both := fields[canonical]; both {
				continue
			}
		}
		if _, known := fieldRegistry[name]; !known {
			continue
		}
		out[name] = v
	}
	return out
}

// FormDataFromAPI populates form state from a stored preferences record.
func FormDataFromAPI(p models.Preferences) FormData {
	return FormData{
		PreferredAddress:       p.PreferredAddress,
		PreferredMetroStations: p.PreferredMetroStations,
		PreferredEssentials:    p.PreferredEssentials,
		PreferredCommuteTimes:  p.PreferredCommuteTimes,

		MinPrice:    p.MinPrice,
		MaxPrice:    p.MaxPrice,
		MoveInDate:  p.MoveInDate,
		MoveOutDate: p.MoveOutDate,

		PropertyTypes:   p.PropertyTypes,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		Furnishing:      p.Furnishing,
		OutdoorSpace:    p.OutdoorSpace,
		Balcony:         p.Balcony,
		Terrace:         p.Terrace,
		MinSquareMeters: p.MinSquareMeters,
		MaxSquareMeters: p.MaxSquareMeters,

		BuildingTypes: p.BuildingTypes,
		LetDuration:   p.LetDuration,
		Bills:         p.Bills,
		TenantTypes:   p.TenantTypes,

		PetPolicy:     p.PetPolicy,
		Pets:          p.Pets,
		PetCustomType: p.PetCustomType,
		NumberOfPets:  p.NumberOfPets,

		Amenities:   p.Amenities,
		IsConcierge: p.IsConcierge,
		SmokingArea: p.SmokingArea,

		Hobbies:                p.Hobbies,
		IdealLivingEnvironment: p.IdealLivingEnvironment,
		Smoker:                 p.Smoker,
		AdditionalInfo:         p.AdditionalInfo,
	}
}

// ToPreferences is the inverse of FormDataFromAPI for the fields the form
// owns; identity and timestamps stay with the store.
func (f FormData) ToPreferences() models.Preferences {
	return models.Preferences{
		PreferredAddress:       f.PreferredAddress,
		PreferredMetroStations: f.PreferredMetroStations,
		PreferredEssentials:    f.PreferredEssentials,
		PreferredCommuteTimes:  f.PreferredCommuteTimes,

		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		MoveInDate:  f.MoveInDate,
		MoveOutDate: f.MoveOutDate,

		PropertyTypes:   f.PropertyTypes,
		Bedrooms:        f.Bedrooms,
		Bathrooms:       f.Bathrooms,
		Furnishing:      f.Furnishing,
		OutdoorSpace:    f.OutdoorSpace,
		Balcony:         f.Balcony,
		Terrace:         f.Terrace,
		MinSquareMeters: f.MinSquareMeters,
		MaxSquareMeters: f.MaxSquareMeters,

		BuildingTypes: f.BuildingTypes,
		LetDuration:   f.LetDuration,
		Bills:         f.Bills,
		TenantTypes:   f.TenantTypes,

		PetPolicy:     f.PetPolicy,
		Pets:          f.Pets,
		PetCustomType: f.PetCustomType,
		NumberOfPets:  f.NumberOfPets,

		Amenities:   f.Amenities,
		IsConcierge: f.IsConcierge,
		SmokingArea: f.SmokingArea,

		Hobbies:                f.Hobbies,
		IdealLivingEnvironment: f.IdealLivingEnvironment,
		Smoker:                 f.Smoker,
		AdditionalInfo:         f.AdditionalInfo,
	}
}

// FormDataForAPI extracts the given fields from form state as a wire-ready
// partial map. Unknown names are skipped.
func FormDataForAPI(f FormData, fields []string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, name := range fields {
		acc, ok := fieldRegistry[name]
		if !ok {
			continue
		}
		out[name] = acc.get(&f)
	}
	return out
}
