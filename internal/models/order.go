package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID           string             `bson:"orderID" json:"orderID"`
	ValueRs           float64            `bson:"value_rs" json:"value_rs"`
	AssignedRoute     primitive.ObjectID `bson:"assignedRoute" json:"assignedRoute"`
	DeliveryTimestamp *time.Time         `bson:"deliveryTimestamp,omitempty" json:"deliveryTimestamp,omitempty"`
	IsDeliveredOnTime *bool              `bson:"isDeliveredOnTime,omitempty" json:"isDeliveredOnTime,omitempty"`
}

// Delivery is the lifecycle state of an order: Pending or Delivered.
type Delivery interface {
	isDelivery()
}

// Pending orders have no delivery timestamp and are eligible for simulation.
type Pending struct{}

// Delivered orders were committed by a simulation run and never return to Pending.
type Delivered struct {
	At     time.Time
	OnTime bool
}

func (Pending) isDelivery()   {}
func (Delivered) isDelivery() {}

// Delivery derives the state from the persisted optional fields.
func (o Order) Delivery() Delivery {
	if o.DeliveryTimestamp == nil {
		return Pending{}
	}
	d := Delivered{At: *o.DeliveryTimestamp}
	if o.IsDeliveredOnTime != nil {
		d.OnTime = *o.IsDeliveredOnTime
	}
	return d
}

func (o Order) IsPending() bool {
	_, ok := o.Delivery().(Pending)
	return ok
}

// PendingOrder is an order with its route resolved. Route is nil when the
// referenced route no longer exists.
type PendingOrder struct {
	Order Order
	Route *Route
}

// OrderView is the API shape of an order, with assignedRoute populated.
type OrderView struct {
	ID                primitive.ObjectID `json:"_id"`
	OrderID           string             `json:"orderID"`
	ValueRs           float64            `json:"value_rs"`
	AssignedRoute     *Route             `json:"assignedRoute"`
	DeliveryTimestamp *time.Time         `json:"deliveryTimestamp"`
	IsDeliveredOnTime *bool              `json:"isDeliveredOnTime,omitempty"`
}

func NewOrderView(o Order, route *Route) OrderView {
	return OrderView{
		ID:                o.ID,
		OrderID:           o.OrderID,
		ValueRs:           o.ValueRs,
		AssignedRoute:     route,
		DeliveryTimestamp: o.DeliveryTimestamp,
		IsDeliveredOnTime: o.IsDeliveredOnTime,
	}
}
