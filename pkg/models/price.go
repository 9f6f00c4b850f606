package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is the settled price per MWh on a hub or load zone for the interval
// ending at Timestamp.
type Price struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Price       float64            `bson:"price" json:"price"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Hub         string             `bson:"hub" json:"hub"`
	CollectedAt time.Time          `bson:"collected_at,omitempty" json:"collected_at,omitempty"`
}

// Key identifies a settlement interval on a hub.
func (p Price) Key() string {
	return p.Hub + "|" + p.Timestamp.UTC().Format(time.RFC3339)
}
