package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Shortlist struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	PropertyID primitive.ObjectID `bson:"property_id" json:"property_id"`
}
