package database

import (
	"context"

	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoutePatch struct {
	RouteID      *string
	Distance     *float64
	TrafficLevel *models.TrafficLevel
	BaseTime     *float64
}

func (p RoutePatch) set() bson.M {
	set := bson.M{}
	if p.RouteID != nil {
		set["routeID"] = *p.RouteID
	}
	if p.Distance != nil {
		set["distance"] = *p.Distance
	}
	if p.TrafficLevel != nil {
		set["trafficLevel"] = *p.TrafficLevel
	}
	if p.BaseTime != nil {
		set["baseTime"] = *p.BaseTime
	}
	return set
}

func (s *Store) ListRoutes(ctx context.Context, f RouteFilter) ([]models.Route, error) {
	cursor, err := s.collection(routesCollection).Find(ctx, f.bson(), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify("list routes", err, "Route")
	}
	defer cursor.Close(ctx)

	routes := []models.Route{}
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, classify("decode routes", err, "Route")
	}
	return routes, nil
}

func (s *Store) CreateRoute(ctx context.Context, r *models.Route) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if _, err := s.collection(routesCollection).InsertOne(ctx, r); err != nil {
		return classify("create route", err, "Route")
	}
	return nil
}

func (s *Store) UpdateRoute(ctx context.Context, id primitive.ObjectID, p RoutePatch) (*models.Route, error) {
	var r models.Route
	if err := s.patch(ctx, routesCollection, id, p.set(), &r); err != nil {
		return nil, classify("update route", err, "Route")
	}
	return &r, nil
}

// DeleteRoute leaves orders that reference the route in place; they list
// with a null route and are skipped by simulation runs.
func (s *Store) DeleteRoute(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, routesCollection, id, "Route")
}

// routesByID loads the given routes keyed by _id. Missing ids are absent.
func (s *Store) routesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Route, error) {
	out := make(map[primitive.ObjectID]*models.Route, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.collection(routesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, classify("load routes", err, "Route")
	}
	defer cursor.Close(ctx)

	var routes []models.Route
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, classify("decode routes", err, "Route")
	}
	for i := range routes {
		out[routes[i].ID] = &routes[i]
	}
	return out, nil
}
