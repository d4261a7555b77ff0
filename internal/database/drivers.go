package database

import (
	"context"

	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DriverPatch holds the fields of a partial driver update; nil means unchanged.
type DriverPatch struct {
	Name              *string
	CurrentShiftHours *float64
	Past7DayWorkHours []float64
	IsFatigued        *bool
}

func (p DriverPatch) set() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.CurrentShiftHours != nil {
		set["currentShiftHours"] = *p.CurrentShiftHours
	}
	if p.Past7DayWorkHours != nil {
		set["past7DayWorkHours"] = p.Past7DayWorkHours
	}
	if p.IsFatigued != nil {
		set["isFatigued"] = *p.IsFatigued
	}
	return set
}

func (s *Store) ListDrivers(ctx context.Context, f DriverFilter) ([]models.Driver, error) {
	cursor, err := s.collection(driversCollection).Find(ctx, f.bson(), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify("list drivers", err, "Driver")
	}
	defer cursor.Close(ctx)

	drivers := []models.Driver{}
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, classify("decode drivers", err, "Driver")
	}
	return drivers, nil
}

// FirstDrivers returns up to n drivers in insertion order.
func (s *Store) FirstDrivers(ctx context.Context, n int) ([]models.Driver, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(n))

	cursor, err := s.collection(driversCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify("first drivers", err, "Driver")
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, classify("decode drivers", err, "Driver")
	}
	return drivers, nil
}

func (s *Store) CreateDriver(ctx context.Context, d *models.Driver) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := s.collection(driversCollection).InsertOne(ctx, d); err != nil {
		return classify("create driver", err, "Driver")
	}
	return nil
}

// UpdateDriver applies p and returns the updated document.
func (s *Store) UpdateDriver(ctx context.Context, id primitive.ObjectID, p DriverPatch) (*models.Driver, error) {
	var d models.Driver
	if err := s.patch(ctx, driversCollection, id, p.set(), &d); err != nil {
		return nil, classify("update driver", err, "Driver")
	}
	return &d, nil
}

func (s *Store) DeleteDriver(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, driversCollection, id, "Driver")
}

// patch runs a $set on one document and decodes the result into out. An empty
// set is a read.
func (s *Store) patch(ctx context.Context, coll string, id primitive.ObjectID, set bson.M, out any) error {
	c := s.collection(coll)
	if len(set) == 0 {
		return c.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(out)
}

func (s *Store) deleteByID(ctx context.Context, coll string, id primitive.ObjectID, entity string) error {
	res, err := s.collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("delete "+coll, err, entity)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("%s not found.", entity)
	}
	return nil
}
