package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenant_id"`
	PropertyID  primitive.ObjectID `bson:"property_id" json:"property_id"`
	MoveInDate  time.Time          `bson:"move_in_date" json:"move_in_date"`
	MoveOutDate *time.Time         `bson:"move_out_date,omitempty" json:"move_out_date,omitempty"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

const (
	BookingPending  = "pending"
	BookingApproved = "approved"
	BookingDeclined = "declined"
)
