package database

import (
	"regexp"
	"strings"

	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverFilter struct {
	Name       string // case-insensitive substring
	IsFatigued *bool
}

type RouteFilter struct {
	RouteID      string // case-insensitive substring
	TrafficLevel models.TrafficLevel
}

type OrderFilter struct {
	OrderID   string // case-insensitive substring
	Delivered *bool
}

// contains matches s anywhere in the field, ignoring case. User input is
// quoted so it is never interpreted as a pattern.
func contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (f DriverFilter) bson() bson.M {
	q := bson.M{}
	if name := strings.TrimSpace(f.Name); name != "" {
		q["name"] = contains(name)
	}
	if f.IsFatigued != nil {
		q["isFatigued"] = *f.IsFatigued
	}
	return q
}

// Unknown traffic levels are ignored rather than matching nothing.
func (f RouteFilter) bson() bson.M {
	q := bson.M{}
	if code := strings.TrimSpace(f.RouteID); code != "" {
		q["routeID"] = contains(code)
	}
	if f.TrafficLevel.Valid() {
		q["trafficLevel"] = f.TrafficLevel
	}
	return q
}

func (f OrderFilter) bson() bson.M {
	q := bson.M{}
	if code := strings.TrimSpace(f.OrderID); code != "" {
		q["orderID"] = contains(code)
	}
	if f.Delivered != nil {
		q["deliveryTimestamp"] = bson.M{"$exists": *f.Delivered}
	}
	return q
}

func pendingFilter() bson.M {
	return bson.M{"deliveryTimestamp": bson.M{"$exists": false}}
}
