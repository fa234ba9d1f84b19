package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preferences is the tenant's stored search criteria, one record per tenant.
// The record is created on the first wizard auto-save and patched field by
// field afterwards, so every field must tolerate being absent.
type Preferences struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID string             `bson:"user_id" json:"user_id"`

	PreferredAddress       string   `bson:"preferred_address,omitempty" json:"preferred_address,omitempty"`
	PreferredMetroStations []string `bson:"preferred_metro_stations,omitempty" json:"preferred_metro_stations,omitempty"`
	PreferredEssentials    []string `bson:"preferred_essentials,omitempty" json:"preferred_essentials,omitempty"`
	PreferredCommuteTimes  []string `bson:"preferred_commute_times,omitempty" json:"preferred_commute_times,omitempty"`

	MinPrice    int        `bson:"min_price,omitempty" json:"min_price,omitempty"`
	MaxPrice    int        `bson:"max_price,omitempty" json:"max_price,omitempty"`
	MoveInDate  *time.Time `bson:"move_in_date,omitempty" json:"move_in_date,omitempty"`
	MoveOutDate *time.Time `bson:"move_out_date,omitempty" json:"move_out_date,omitempty"`

	PropertyTypes   []string `bson:"property_types,omitempty" json:"property_types,omitempty"`
	Bedrooms        []int    `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms       []int    `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Furnishing      []string `bson:"furnishing,omitempty" json:"furnishing,omitempty"`
	OutdoorSpace    bool     `bson:"outdoor_space,omitempty" json:"outdoor_space,omitempty"`
	Balcony         bool     `bson:"balcony,omitempty" json:"balcony,omitempty"`
	Terrace         bool     `bson:"terrace,omitempty" json:"terrace,omitempty"`
	MinSquareMeters int      `bson:"min_square_meters,omitempty" json:"min_square_meters,omitempty"`
	MaxSquareMeters int      `bson:"max_square_meters,omitempty" json:"max_square_meters,omitempty"`

	BuildingTypes []string `bson:"building_types,omitempty" json:"building_types,omitempty"`
	LetDuration   string   `bson:"let_duration,omitempty" json:"let_duration,omitempty"`
	Bills         string   `bson:"bills,omitempty" json:"bills,omitempty"`
	TenantTypes   []string `bson:"tenant_types,omitempty" json:"tenant_types,omitempty"`

	PetPolicy     bool     `bson:"pet_policy,omitempty" json:"pet_policy,omitempty"`
	Pets          []string `bson:"pets,omitempty" json:"pets,omitempty"`
	PetCustomType string   `bson:"pet_custom_type,omitempty" json:"pet_custom_type,omitempty"`
	NumberOfPets  int      `bson:"number_of_pets,omitempty" json:"number_of_pets,omitempty"`

	Amenities   []string `bson:"amenities,omitempty" json:"amenities,omitempty"`
	IsConcierge bool     `bson:"is_concierge,omitempty" json:"is_concierge,omitempty"`
	SmokingArea bool     `bson:"smoking_area,omitempty" json:"smoking_area,omitempty"`

	Hobbies                []string `bson:"hobbies,omitempty" json:"hobbies,omitempty"`
	IdealLivingEnvironment []string `bson:"ideal_living_environment,omitempty" json:"ideal_living_environment,omitempty"`
	Smoker                 string   `bson:"smoker,omitempty" json:"smoker,omitempty"`
	AdditionalInfo         string   `bson:"additional_info,omitempty" json:"additional_info,omitempty"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// PetTypeOther is the sentinel value in Pets that makes PetCustomType
// meaningful; the two fields must always be persisted together.
const PetTypeOther = "other"
