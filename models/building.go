package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Building struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Address       string             `bson:"address" json:"address"`
	City          string             `bson:"city" json:"city"`
	Postcode      string             `bson:"postcode" json:"postcode"`
	BuildingType  string             `bson:"building_type" json:"building_type"`
	MetroStations []string           `bson:"metro_stations" json:"metro_stations"`
	CommuteTimes  []string           `bson:"commute_times" json:"commute_times"`
	Essentials    []string           `bson:"essentials" json:"essentials"`
	Amenities     []string           `bson:"amenities" json:"amenities"`
	IsConcierge   bool               `bson:"is_concierge" json:"is_concierge"`
	SmokingArea   bool               `bson:"smoking_area" json:"smoking_area"`
	PetPolicy     bool               `bson:"pet_policy" json:"pet_policy"`
	TenantTypes   []string           `bson:"tenant_types" json:"tenant_types"`
	CreatedBy     string             `bson:"created_by" json:"created_by"`
}
