package database

import (
	"context"

	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderPatch edits the catalogue fields of an order. Delivery state is owned by
// simulation runs and cannot be patched.
type OrderPatch struct {
	OrderID       *string
	ValueRs       *float64
	AssignedRoute *primitive.ObjectID
}

func (p OrderPatch) set() bson.M {
	set := bson.M{}
	if p.OrderID != nil {
		set["orderID"] = *p.OrderID
	}
	if p.ValueRs != nil {
		set["value_rs"] = *p.ValueRs
	}
	if p.AssignedRoute != nil {
		set["assignedRoute"] = *p.AssignedRoute
	}
	return set
}

// ListOrders returns orders with their assigned route populated.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.OrderView, error) {
	pending, err := s.findOrders(ctx, f.bson())
	if err != nil {
		return nil, err
	}
	views := make([]models.OrderView, 0, len(pending))
	for _, po := range pending {
		views = append(views, models.NewOrderView(po.Order, po.Route))
	}
	return views, nil
}

// PendingOrders returns every undelivered order, oldest first, with its route
// resolved. Route is nil for orders whose route was deleted.
func (s *Store) PendingOrders(ctx context.Context) ([]models.PendingOrder, error) {
	return s.findOrders(ctx, pendingFilter())
}

func (s *Store) findOrders(ctx context.Context, filter bson.M) ([]models.PendingOrder, error) {
	cursor, err := s.collection(ordersCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify("find orders", err, "Order")
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, classify("decode orders", err, "Order")
	}

	seen := make(map[primitive.ObjectID]struct{}, len(orders))
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.AssignedRoute]; ok || o.AssignedRoute.IsZero() {
			continue
		}
		seen[o.AssignedRoute] = struct{}{}
		ids = append(ids, o.AssignedRoute)
	}

	routes, err := s.routesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.PendingOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, models.PendingOrder{Order: o, Route: routes[o.AssignedRoute]})
	}
	return out, nil
}

// CreateOrder inserts a pending order. The assigned route must exist.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := s.requireRoute(ctx, o.AssignedRoute); err != nil {
		return err
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.DeliveryTimestamp = nil
	o.IsDeliveredOnTime = nil

	if _, err := s.collection(ordersCollection).InsertOne(ctx, o); err != nil {
		return classify("create order", err, "Order")
	}
	return nil
}

func (s *Store) UpdateOrder(ctx context.Context, id primitive.ObjectID, p OrderPatch) (*models.Order, error) {
	if p.AssignedRoute != nil {
		if err := s.requireRoute(ctx, *p.AssignedRoute); err != nil {
			return nil, err
		}
	}
	var o models.Order
	if err := s.patch(ctx, ordersCollection, id, p.set(), &o); err != nil {
		return nil, classify("update order", err, "Order")
	}
	return &o, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, ordersCollection, id, "Order")
}

func (s *Store) requireRoute(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.collection(routesCollection).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("check route", err, "Route")
	}
	if n == 0 {
		return apperr.Validationf("Assigned route does not exist.")
	}
	return nil
}
