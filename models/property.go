package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuildingID    primitive.ObjectID `bson:"building_id,omitempty" json:"building_id"`
	Title         string             `bson:"title" json:"title"`
	PropertyType  string             `bson:"property_type" json:"property_type"`
	Price         int                `bson:"price" json:"price"`
	Bedrooms      int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms     int                `bson:"bathrooms" json:"bathrooms"`
	SquareMeters  int                `bson:"square_meters" json:"square_meters"`
	Furnishing    string             `bson:"furnishing" json:"furnishing"`
	Amenities     []string           `bson:"amenities" json:"amenities"`
	PetPolicy     bool               `bson:"pet_policy" json:"pet_policy"`
	Bills         string             `bson:"bills" json:"bills"`
	LetDuration   string             `bson:"let_duration" json:"let_duration"`
	TenantTypes   []string           `bson:"tenant_types" json:"tenant_types"`
	OutdoorSpace  bool               `bson:"outdoor_space" json:"outdoor_space"`
	Balcony       bool               `bson:"balcony" json:"balcony"`
	Terrace       bool               `bson:"terrace" json:"terrace"`
	ImageURLs     []string           `bson:"image_urls" json:"image_urls"`
	AvailableFrom time.Time          `bson:"available_from" json:"available_from"`
	CreatedBy     string             `bson:"created_by" json:"created_by"`
	IsShortlisted bool               `bson:"-" json:"is_shortlisted,omitempty"`

	// Populated by the $lookup read path; absent on plain reads.
	Building *Building `bson:"building,omitempty" json:"building,omitempty"`
}
