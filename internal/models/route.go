package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Route struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RouteID      string             `bson:"routeID" json:"routeID"`           // human-readable code, e.g. "R-12"
	Distance     float64            `bson:"distance" json:"distance"`         // kilometers
	TrafficLevel TrafficLevel       `bson:"trafficLevel" json:"trafficLevel"` // Low, Medium, High
	BaseTime     float64            `bson:"baseTime" json:"baseTime"`         // nominal minutes
}
