package database

import (
	"context"
	"testing"
	"time"

	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/models"
	"greencart-ops-api/internal/simulation"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockStore(mt *mtest.T) *Store {
	return NewStore(mt.Client, mt.DB, false)
}

func ns(coll string) string { return "test." + coll }

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("FirstDrivers", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(driversCollection), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "name", Value: "Amit"}, {Key: "isFatigued", Value: true},
				{Key: "past7DayWorkHours", Value: bson.A{1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0}}},
			bson.D{{Key: "_id", Value: b}, {Key: "name", Value: "Priya"}},
		))

		drivers, err := newMockStore(mt).FirstDrivers(ctx, 2)
		require.NoError(mt, err)
		require.Len(mt, drivers, 2)
		require.Equal(mt, a, drivers[0].ID)
		require.True(mt, drivers[0].IsFatigued)
		require.Equal(mt, []float64{1, 2, 3, 4, 5, 6, 7}, drivers[0].Past7DayWorkHours)
		require.Equal(mt, "Priya", drivers[1].Name)
	})

	mt.Run("PendingOrdersResolveRoutes", func(mt *mtest.T) {
		routeID, goneRoute := primitive.NewObjectID(), primitive.NewObjectID()
		o1, o2 := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(ordersCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: o1}, {Key: "orderID", Value: "1"}, {Key: "value_rs", Value: 2594.0}, {Key: "assignedRoute", Value: routeID}},
				bson.D{{Key: "_id", Value: o2}, {Key: "orderID", Value: "2"}, {Key: "value_rs", Value: 300.0}, {Key: "assignedRoute", Value: goneRoute}},
			),
			mtest.CreateCursorResponse(0, ns(routesCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: routeID}, {Key: "routeID", Value: "7"}, {Key: "distance", Value: 12.0},
					{Key: "trafficLevel", Value: "High"}, {Key: "baseTime", Value: 40.0}},
			),
		)

		orders, err := newMockStore(mt).PendingOrders(ctx)
		require.NoError(mt, err)
		require.Len(mt, orders, 2)
		require.NotNil(mt, orders[0].Route)
		require.Equal(mt, models.TrafficHigh, orders[0].Route.TrafficLevel)
		require.True(mt, orders[0].Order.IsPending())
		require.Nil(mt, orders[1].Route, "deleted route resolves to nil")
	})

	mt.Run("CreateUserDuplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.users index: username_1",
		}))

		err := newMockStore(mt).CreateUser(ctx, &models.User{Username: "manager", Password: "hash"})
		require.Equal(mt, apperr.Conflict, apperr.KindOf(err))
		require.Equal(mt, "Username already exists.", apperr.PublicMessage(err, ""))
	})

	mt.Run("DeleteDriverNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := newMockStore(mt).DeleteDriver(ctx, primitive.NewObjectID())
		require.Equal(mt, apperr.NotFound, apperr.KindOf(err))
		require.Equal(mt, "Driver not found.", apperr.PublicMessage(err, ""))
	})

	mt.Run("UpdateRouteNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		distance := 3.0
		_, err := newMockStore(mt).UpdateRoute(ctx, primitive.NewObjectID(), RoutePatch{Distance: &distance})
		require.Equal(mt, apperr.NotFound, apperr.KindOf(err))
		require.Equal(mt, "Route not found.", apperr.PublicMessage(err, ""))
	})

	mt.Run("CreateOrderRequiresRoute", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(routesCollection), mtest.FirstBatch))

		err := newMockStore(mt).CreateOrder(ctx, &models.Order{OrderID: "9", ValueRs: 10, AssignedRoute: primitive.NewObjectID()})
		require.Equal(mt, apperr.Validation, apperr.KindOf(err))
	})

	mt.Run("DashboardStats", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(driversCollection), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(10)}}),
			mtest.CreateCursorResponse(0, ns(ordersCollection), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(50)}}),
			mtest.CreateCursorResponse(0, ns(ordersCollection), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(12)}}),
			mtest.CreateCursorResponse(0, ns(simulationsCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: nil}, {Key: "totalProfit", Value: 1234.5}}),
		)

		stats, err := newMockStore(mt).DashboardStats(ctx)
		require.NoError(mt, err)
		require.Equal(mt, models.DashboardStats{TotalDrivers: 10, TotalOrders: 50, PendingOrders: 12, TotalProfit: 1234.5}, stats)
	})

	mt.Run("DashboardStatsWithoutRuns", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(driversCollection), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateCursorResponse(0, ns(ordersCollection), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(ordersCollection), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(simulationsCollection), mtest.FirstBatch),
		)

		stats, err := newMockStore(mt).DashboardStats(ctx)
		require.NoError(mt, err)
		require.Equal(mt, models.DashboardStats{TotalDrivers: 1}, stats)
	})

	mt.Run("ApplySimulation", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}),
			mtest.CreateSuccessResponse(),
		)

		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		orderID := primitive.NewObjectID()
		tired := models.NewDriver("a")
		tired.ID = primitive.NewObjectID()
		tired.Past7DayWorkHours = []float64{1, 2, 3, 4, 5, 6, 9}
		tired.IsFatigued = true
		idle := models.NewDriver("b")
		idle.ID = primitive.NewObjectID()

		commit := simulation.Commit{
			Deliveries: []simulation.OrderDelivery{{OrderID: orderID, DeliveredAt: now, OnTime: true}},
			Drivers:    []models.Driver{tired, idle},
			Simulation: models.Simulation{Timestamp: now, TotalProfit: 10, OnTimeDeliveries: 1},
		}

		sim, err := newMockStore(mt).ApplySimulation(ctx, commit)
		require.NoError(mt, err)
		require.False(mt, sim.ID.IsZero())
		require.Equal(mt, now, sim.Timestamp)
		require.NotNil(mt, sim.Tags)

		started := mt.GetAllStartedEvents()
		require.Len(mt, started, 3)
		require.Equal(mt, "update", started[0].CommandName)
		require.Equal(mt, "update", started[1].CommandName)
		require.Equal(mt, "insert", started[2].CommandName)

		orders := started[0].Command
		require.Equal(mt, ordersCollection, orders.Lookup("update").StringValue())
		require.Equal(mt, orderID, orders.Lookup("updates", "0", "q", "_id").ObjectID())
		require.False(mt, orders.Lookup("updates", "0", "q", "deliveryTimestamp", "$exists").Boolean(),
			"only pending orders may be marked delivered")
		require.True(mt, now.Equal(orders.Lookup("updates", "0", "u", "$set", "deliveryTimestamp").Time()))
		require.True(mt, orders.Lookup("updates", "0", "u", "$set", "isDeliveredOnTime").Boolean())

		drivers := started[1].Command
		require.Equal(mt, driversCollection, drivers.Lookup("update").StringValue())
		require.Equal(mt, tired.ID, drivers.Lookup("updates", "0", "q", "_id").ObjectID())
		require.True(mt, drivers.Lookup("updates", "0", "u", "$set", "isFatigued").Boolean())
		window, err := drivers.Lookup("updates", "0", "u", "$set", "past7DayWorkHours").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, window, 7)
		require.Equal(mt, 9.0, window[6].Double())
		require.Equal(mt, idle.ID, drivers.Lookup("updates", "1", "q", "_id").ObjectID())
		require.False(mt, drivers.Lookup("updates", "1", "u", "$set", "isFatigued").Boolean())

		inserted := started[2].Command
		require.Equal(mt, simulationsCollection, inserted.Lookup("insert").StringValue())
		require.Equal(mt, sim.ID, inserted.Lookup("documents", "0", "_id").ObjectID())
	})

	mt.Run("ApplySimulationStopsAtFirstFailure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad update"}))

		commit := simulation.Commit{
			Deliveries: []simulation.OrderDelivery{{OrderID: primitive.NewObjectID(), DeliveredAt: time.Now()}},
			Drivers:    []models.Driver{models.NewDriver("a")},
		}
		_, err := newMockStore(mt).ApplySimulation(ctx, commit)
		require.Error(mt, err)
		require.Len(mt, mt.GetAllStartedEvents(), 1)
	})

	mt.Run("GetSimulationNormalizesTags", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(simulationsCollection), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id}, {Key: "totalProfit", Value: 99.5},
				{Key: "fuelCostBreakdown", Value: bson.D{{Key: "Low", Value: 1.0}, {Key: "Medium", Value: 2.0}, {Key: "High", Value: 3.0}}}},
		))

		sim, err := newMockStore(mt).GetSimulation(ctx, id)
		require.NoError(mt, err)
		require.Equal(mt, []string{}, sim.Tags)
		require.Equal(mt, 3.0, sim.FuelCostBreakdown.High)
		require.IsType(mt, models.Unsummarized{}, sim.Summary())
	})

	mt.Run("GetSimulationNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(simulationsCollection), mtest.FirstBatch))

		_, err := newMockStore(mt).GetSimulation(ctx, primitive.NewObjectID())
		require.Equal(mt, apperr.NotFound, apperr.KindOf(err))
	})

	mt.Run("SaveSummaryOnlyFillsMissingSummary", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id}, {Key: "aiSummary", Value: "ok"}, {Key: "tags", Value: bson.A{"x"}},
		}}))

		sim, err := newMockStore(mt).SaveSummary(ctx, id, "ok", []string{"x"})
		require.NoError(mt, err)
		require.Equal(mt, models.Summarized{Text: "ok", Tags: []string{"x"}}, sim.Summary())

		started := mt.GetAllStartedEvents()
		require.Len(mt, started, 1)
		require.Equal(mt, "findAndModify", started[0].CommandName)
		cmd := started[0].Command
		require.Equal(mt, id, cmd.Lookup("query", "_id").ObjectID())
		_, err = cmd.Lookup("query", "$or").Array().Values()
		require.NoError(mt, err, "the update must be conditional on a missing summary")
	})

	mt.Run("SaveSummaryKeepsEarlierSummary", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns(simulationsCollection), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: id}, {Key: "aiSummary", Value: "first"}, {Key: "tags", Value: bson.A{"early"}},
			}),
		)

		sim, err := newMockStore(mt).SaveSummary(ctx, id, "second", []string{"late"})
		require.NoError(mt, err)
		require.Equal(mt, "first", sim.AISummary)
		require.Equal(mt, []string{"early"}, sim.Tags)
	})

	mt.Run("SaveSummaryNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns(simulationsCollection), mtest.FirstBatch),
		)

		_, err := newMockStore(mt).SaveSummary(ctx, primitive.NewObjectID(), "ok", []string{"x"})
		require.Equal(mt, apperr.NotFound, apperr.KindOf(err))
	})
}
