// internal/repository/geo_repository.go
package repository

import (
	"context"
	"time"

	"go-quickstart/internal/database"
	"go-quickstart/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NearQuery selects documents around a point with an optional category filter.
type NearQuery struct {
	Point       models.GeoPoint
	MaxDistance float64 // metres
	Category    string
	Limit       int64
}

// PropertyQuery is the property search filter. Zero values are ignored.
type PropertyQuery struct {
	Point        *models.GeoPoint
	MaxDistance  float64
	MinPrice     float64
	MaxPrice     float64
	PropertyType string
	Bedrooms     int
	Bathrooms    int
	Limit        int64
}

// DeliveryUpdate carries the mutable delivery fields.
type DeliveryUpdate struct {
	Status             string
	DriverLocation     *models.GeoPoint
	Route              *models.RouteSummary
	ActualDeliveryTime *time.Time
}

type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	Near(ctx context.Context, q NearQuery) ([]models.Store, error)
}

type RouteRepository interface {
	Create(ctx context.Context, route *models.Route) error
	List(ctx context.Context) ([]models.Route, error)
}

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error)
	Update(ctx context.Context, orderID string, update DeliveryUpdate) (*models.Delivery, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	Search(ctx context.Context, q PropertyQuery) ([]models.Property, error)
}

func nearClause(point models.GeoPoint, maxDistance float64) bson.M {
	return bson.M{
		"$near": bson.M{
			"$geometry":    point,
			"$maxDistance": maxDistance,
		},
	}
}

func storeFilter(q NearQuery) bson.M {
	filter := bson.M{"location": nearClause(q.Point, q.MaxDistance)}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	return filter
}

func propertyFilter(q PropertyQuery) bson.M {
	filter := bson.M{}
	if q.Point != nil {
		filter["location"] = nearClause(*q.Point, q.MaxDistance)
	}

	price := bson.M{}
	if q.MinPrice > 0 {
		price["$gte"] = q.MinPrice
	}
	if q.MaxPrice > 0 {
		price["$lte"] = q.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if q.PropertyType != "" {
		filter["propertyType"] = q.PropertyType
	}
	if q.Bedrooms > 0 {
		filter["bedrooms"] = q.Bedrooms
	}
	if q.Bathrooms > 0 {
		filter["bathrooms"] = q.Bathrooms
	}
	return filter
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []T
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

// --- stores ---

type MongoStoreRepository struct{ coll *mongo.Collection }

func NewStoreRepository(db *mongo.Database) *MongoStoreRepository {
	return &MongoStoreRepository{coll: db.Collection(database.StoresCollection)}
}

func (r *MongoStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if store.CreatedAt.IsZero() {
		store.CreatedAt = time.Now()
	}
	id, err := insert(ctx, r.coll, store)
	if err != nil {
		return err
	}
	store.ID = id
	return nil
}

func (r *MongoStoreRepository) Near(ctx context.Context, q NearQuery) ([]models.Store, error) {
	return findAll[models.Store](ctx, r.coll, storeFilter(q), options.Find().SetLimit(q.Limit))
}

// --- routes ---

type MongoRouteRepository struct{ coll *mongo.Collection }

func NewRouteRepository(db *mongo.Database) *MongoRouteRepository {
	return &MongoRouteRepository{coll: db.Collection(database.RoutesCollection)}
}

func (r *MongoRouteRepository) Create(ctx context.Context, route *models.Route) error {
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now()
	}
	id, err := insert(ctx, r.coll, route)
	if err != nil {
		return err
	}
	route.ID = id
	return nil
}

func (r *MongoRouteRepository) List(ctx context.Context) ([]models.Route, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.Route](ctx, r.coll, bson.M{}, opts)
}

// --- deliveries ---

type MongoDeliveryRepository struct{ coll *mongo.Collection }

func NewDeliveryRepository(db *mongo.Database) *MongoDeliveryRepository {
	return &MongoDeliveryRepository{coll: db.Collection(database.DeliveriesCollection)}
}

func (r *MongoDeliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now()
	}
	id, err := insert(ctx, r.coll, delivery)
	if err != nil {
		return err
	}
	delivery.ID = id
	return nil
}

func (r *MongoDeliveryRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&delivery); err != nil {
		return nil, translate(err)
	}
	return &delivery, nil
}

func deliverySet(u DeliveryUpdate) bson.M {
	set := bson.M{}
	if u.Status != "" {
		set["status"] = u.Status
	}
	if u.DriverLocation != nil {
		set["driverLocation"] = *u.DriverLocation
	}
	if u.Route != nil {
		set["route"] = *u.Route
	}
	if u.ActualDeliveryTime != nil {
		set["actualDeliveryTime"] = *u.ActualDeliveryTime
	}
	return set
}

func (r *MongoDeliveryRepository) Update(ctx context.Context, orderID string, update DeliveryUpdate) (*models.Delivery, error) {
	set := deliverySet(update)
	if len(set) == 0 {
		return r.FindByOrderID(ctx, orderID)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var delivery models.Delivery
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"orderId": orderID}, bson.M{"$set": set}, opts).Decode(&delivery)
	if err != nil {
		return nil, translate(err)
	}
	return &delivery, nil
}

// --- properties ---

type MongoPropertyRepository struct{ coll *mongo.Collection }

func NewPropertyRepository(db *mongo.Database) *MongoPropertyRepository {
	return &MongoPropertyRepository{coll: db.Collection(database.PropertiesCollection)}
}

func (r *MongoPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	if property.CreatedAt.IsZero() {
		property.CreatedAt = time.Now()
	}
	if property.NearbyPlaces == nil {
		property.NearbyPlaces = []models.NearbyPlace{}
	}
	id, err := insert(ctx, r.coll, property)
	if err != nil {
		return err
	}
	property.ID = id
	return nil
}

func (r *MongoPropertyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

func (r *MongoPropertyRepository) Search(ctx context.Context, q PropertyQuery) ([]models.Property, error) {
	return findAll[models.Property](ctx, r.coll, propertyFilter(q), options.Find().SetLimit(q.Limit))
}
