package database

import (
	"context"

	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DashboardStats counts drivers and orders and sums the profit of every
// recorded run.
func (s *Store) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	var err error

	if stats.TotalDrivers, err = s.collection(driversCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return stats, classify("count drivers", err, "Driver")
	}
	if stats.TotalOrders, err = s.collection(ordersCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return stats, classify("count orders", err, "Order")
	}
	if stats.PendingOrders, err = s.collection(ordersCollection).CountDocuments(ctx, pendingFilter()); err != nil {
		return stats, classify("count pending orders", err, "Order")
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalProfit", Value: bson.D{{Key: "$sum", Value: "$totalProfit"}}},
		}}},
	}
	cursor, err := s.collection(simulationsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return stats, classify("sum profit", err, "Simulation")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalProfit float64 `bson:"totalProfit"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return stats, classify("decode profit", err, "Simulation")
	}
	if len(rows) > 0 {
		stats.TotalProfit = rows[0].TotalProfit
	}
	return stats, nil
}
