// internal/service/maps_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-quickstart/internal/logger"
	"go-quickstart/internal/maps"
	"go-quickstart/internal/models"
	"go-quickstart/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultStoreRadius    = 5000
	DefaultStoreLimit     = 10
	DefaultPlacesRadius   = 1500
	DefaultSearchRadius   = 10000
	DefaultSearchLimit    = 20
	propertyNearbyRadius  = 2000
	propertyNearbyTypes   = "school|hospital|grocery_or_supermarket|bank|gas_station"
	propertyNearbyMax     = 10
	unknownDeliveryTime   = "Unknown"
	pendingPlaceDistance  = "Calculating..."
	placeDetailsFieldList = "address_components,formatted_address,geometry,types"
)

var (
	ErrLocationRequired  = errors.New("Address or coordinates required")
	ErrTooFewAddresses   = errors.New("At least 2 addresses required")
	ErrAddressRequired   = errors.New("Address is required")
	ErrLatLngRequired    = errors.New("Latitude and longitude required")
	ErrRouteOptimization = errors.New("Route optimization failed")
	ErrDeliveryNotFound  = errors.New("Delivery not found")
	ErrPropertyNotFound  = errors.New("Property not found")
	ErrInvalidStatus     = errors.New("Invalid delivery status")
	ErrInvalidProperty   = errors.New("Invalid property type")
	ErrInvalidRating     = errors.New("Rating must be between 0 and 5")
)

// DeliveryPublisher pushes delivery changes to live subscribers.
type DeliveryPublisher interface {
	NotifyDelivery(d *models.Delivery) error
}

type MapsService struct {
	client     *maps.Client
	stores     repository.StoreRepository
	routes     repository.RouteRepository
	deliveries repository.DeliveryRepository
	properties repository.PropertyRepository
	notifier   DeliveryPublisher
	log        *zap.Logger
	now        func() time.Time
}

func NewMapsService(
	client *maps.Client,
	stores repository.StoreRepository,
	routes repository.RouteRepository,
	deliveries repository.DeliveryRepository,
	properties repository.PropertyRepository,
	notifier DeliveryPublisher,
	log *zap.Logger,
) *MapsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MapsService{
		client:     client,
		stores:     stores,
		routes:     routes,
		deliveries: deliveries,
		properties: properties,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

func pointOf(g *maps.Geocoded) models.GeoPoint {
	return models.NewPoint(g.Lat(), g.Lng())
}

// ---- Stores ----

type StoreInput struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Hours     string   `json:"hours"`
	Category  string   `json:"category"`
	Rating    float64  `json:"rating"`
	Amenities []string `json:"amenities"`
}

func (s *MapsService) AddStore(ctx context.Context, in StoreInput) (*models.Store, error) {
	if in.Rating < 0 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	geocoded, err := s.client.Geocode(ctx, in.Address)
	if err != nil {
		return nil, err
	}
	store := &models.Store{
		Name:      in.Name,
		Address:   geocoded.FormattedAddress,
		Location:  pointOf(geocoded),
		Phone:     in.Phone,
		Hours:     in.Hours,
		Category:  in.Category,
		Rating:    in.Rating,
		Amenities: in.Amenities,
		CreatedAt: s.now(),
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// NearbyStoresQuery locates stores around an address or explicit coordinates.
type NearbyStoresQuery struct {
	Address  string
	Lat      *float64
	Lng      *float64
	Radius   float64
	Category string
	Limit    int64
}

func (s *MapsService) NearbyStores(ctx context.Context, q NearbyStoresQuery) ([]models.Store, error) {
	var point models.GeoPoint
	switch {
	case q.Address != "":
		geocoded, err := s.client.Geocode(ctx, q.Address)
		if err != nil {
			return nil, err
		}
		point = pointOf(geocoded)
	case q.Lat != nil && q.Lng != nil:
		point = models.NewPoint(*q.Lat, *q.Lng)
	default:
		return nil, ErrLocationRequired
	}

	if q.Radius <= 0 {
		q.Radius = DefaultStoreRadius
	}
	if q.Limit <= 0 {
		q.Limit = DefaultStoreLimit
	}
	return s.stores.Near(ctx, repository.NearQuery{
		Point:       point,
		MaxDistance: q.Radius,
		Category:    q.Category,
		Limit:       q.Limit,
	})
}

// ---- Routes ----

// OptimizeRoute geocodes the addresses, asks for an optimized route through the
// intermediate stops and saves it.
func (s *MapsService) OptimizeRoute(ctx context.Context, name string, addresses []string) (route *models.Route, directions *maps.DirectionsResponse, err error) {
	defer logger.Time(ctx, s.log, "maps.OptimizeRoute")(&err)

	if len(addresses) < 2 {
		return nil, nil, ErrTooFewAddresses
	}

	geocoded, err := s.client.GeocodeMany(ctx, addresses)
	if err != nil {
		return nil, nil, err
	}

	waypoints := make([]models.Waypoint, len(geocoded))
	for i := range geocoded {
		waypoints[i] = models.Waypoint{
			Address:  geocoded[i].FormattedAddress,
			Location: pointOf(&geocoded[i]),
			Order:    i,
		}
	}

	req := maps.DirectionsRequest{
		Origin:      geocoded[0].LatLng(),
		Destination: geocoded[len(geocoded)-1].LatLng(),
		Optimize:    true,
	}
	for _, g := range geocoded[1 : len(geocoded)-1] {
		req.Waypoints = append(req.Waypoints, g.LatLng())
	}

	directions, err = s.client.Directions(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if directions.Status != maps.StatusOK || len(directions.Routes) == 0 {
		return nil, nil, ErrRouteOptimization
	}

	best := directions.Routes[0]
	metres, seconds := best.Totals()
	order := best.WaypointOrder
	if order == nil {
		order = []int{}
	}

	route = &models.Route{
		Name:           name,
		Waypoints:      waypoints,
		OptimizedOrder: order,
		TotalDistance:  maps.FormatDistance(metres),
		TotalDuration:  maps.FormatDuration(seconds),
		CreatedAt:      s.now(),
	}
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, nil, err
	}
	return route, directions, nil
}

func (s *MapsService) Routes(ctx context.Context) ([]models.Route, error) {
	return s.routes.List(ctx)
}

// ---- Address validation ----

type AddressValidation struct {
	IsValid           bool                    `json:"isValid"`
	OriginalAddress   string                  `json:"originalAddress"`
	FormattedAddress  string                  `json:"formattedAddress"`
	Coordinates       []float64               `json:"coordinates"`
	AddressComponents []maps.AddressComponent `json:"addressComponents"`
	Types             []string                `json:"types"`
}

func (s *MapsService) ValidateAddress(ctx context.Context, address string) (*AddressValidation, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrAddressRequired
	}
	geocoded, err := s.client.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	details, err := s.client.PlaceDetails(ctx, geocoded.PlaceID, placeDetailsFieldList)
	if err != nil {
		return nil, err
	}

	out := &AddressValidation{
		IsValid:           details.Status == maps.StatusOK,
		OriginalAddress:   address,
		FormattedAddress:  geocoded.FormattedAddress,
		Coordinates:       geocoded.Coordinates,
		AddressComponents: []maps.AddressComponent{},
		Types:             []string{},
	}
	if details.Result != nil {
		if details.Result.AddressComponents != nil {
			out.AddressComponents = details.Result.AddressComponents
		}
		if details.Result.Types != nil {
			out.Types = details.Result.Types
		}
	}
	return out, nil
}

// ---- Places ----

type PlaceSummary struct {
	PlaceID    string      `json:"placeId"`
	Name       string      `json:"name"`
	Rating     float64     `json:"rating,omitempty"`
	PriceLevel *int        `json:"priceLevel,omitempty"`
	Types      []string    `json:"types"`
	Vicinity   string      `json:"vicinity"`
	Location   maps.LatLng `json:"location"`
	IsOpen     *bool       `json:"isOpen,omitempty"`
}

// NearbyPlaces runs a places search. Lat and Lng are required.
func (s *MapsService) NearbyPlaces(ctx context.Context, lat, lng *float64, radius int, placeType, keyword string) ([]PlaceSummary, error) {
	if lat == nil || lng == nil {
		return nil, ErrLatLngRequired
	}
	if radius <= 0 {
		radius = DefaultPlacesRadius
	}
	data, err := s.client.NearbySearch(ctx, maps.NearbyRequest{
		Lat: *lat, Lng: *lng, Radius: radius, Type: placeType, Keyword: keyword,
	})
	if err != nil {
		return nil, err
	}

	places := make([]PlaceSummary, 0, len(data.Results))
	for _, p := range data.Results {
		summary := PlaceSummary{
			PlaceID:    p.PlaceID,
			Name:       p.Name,
			Rating:     p.Rating,
			PriceLevel: p.PriceLevel,
			Types:      p.Types,
			Vicinity:   p.Vicinity,
			Location:   p.Geometry.Location,
		}
		if p.OpeningHours != nil {
			summary.IsOpen = p.OpeningHours.OpenNow
		}
		places = append(places, summary)
	}
	return places, nil
}

// ---- Deliveries ----

type DeliveryInput struct {
	OrderID         string  `json:"orderId"`
	CustomerAddress string  `json:"customerAddress"`
	DriverLat       float64 `json:"driverLat"`
	DriverLng       float64 `json:"driverLng"`
}

type DeliveryStatusInput struct {
	Status    string   `json:"status"`
	DriverLat *float64 `json:"driverLat"`
	DriverLng *float64 `json:"driverLng"`
}

// routeBetween returns the first leg between two points, or nil when no route was found.
func (s *MapsService) routeBetween(ctx context.Context, from, to models.GeoPoint) (*models.RouteSummary, error) {
	directions, err := s.client.Directions(ctx, maps.DirectionsRequest{Origin: from.LatLng(), Destination: to.LatLng()})
	if err != nil {
		return nil, err
	}
	route, leg, ok := directions.FirstLeg()
	if !ok {
		return nil, nil
	}
	return &models.RouteSummary{
		Distance: leg.Distance.Text,
		Duration: leg.Duration.Text,
		Polyline: route.OverviewPolyline.Points,
	}, nil
}

func (s *MapsService) CreateDelivery(ctx context.Context, in DeliveryInput) (*models.Delivery, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrValidation)
	}
	customer, err := s.client.Geocode(ctx, in.CustomerAddress)
	if err != nil {
		return nil, err
	}
	driver := models.NewPoint(in.DriverLat, in.DriverLng)

	summary, err := s.routeBetween(ctx, driver, pointOf(customer))
	if err != nil {
		return nil, err
	}

	delivery := &models.Delivery{
		OrderID:               in.OrderID,
		CustomerAddress:       customer.FormattedAddress,
		CustomerLocation:      pointOf(customer),
		DriverLocation:        driver,
		Status:                models.DeliveryPending,
		EstimatedDeliveryTime: unknownDeliveryTime,
		CreatedAt:             s.now(),
	}
	if summary != nil {
		delivery.Route = *summary
		if summary.Duration != "" {
			delivery.EstimatedDeliveryTime = summary.Duration
		}
	}

	if err := s.deliveries.Create(ctx, delivery); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: delivery %s already exists", ErrValidation, in.OrderID)
		}
		return nil, err
	}
	return delivery, nil
}

// UpdateDelivery changes status and driver position, then notifies live trackers.
func (s *MapsService) UpdateDelivery(ctx context.Context, orderID string, in DeliveryStatusInput) (*models.Delivery, error) {
	if in.Status != "" && !models.ValidDeliveryStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	update := repository.DeliveryUpdate{Status: in.Status}
	if in.Status == models.DeliveryDelivered {
		at := s.now()
		update.ActualDeliveryTime = &at
	}
	if in.DriverLat != nil && in.DriverLng != nil {
		p := models.NewPoint(*in.DriverLat, *in.DriverLng)
		update.DriverLocation = &p
	}

	delivery, err := s.deliveries.Update(ctx, orderID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDelivery(delivery); err != nil {
			s.log.Warn("delivery notification failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return delivery, nil
}

// TrackDelivery returns the delivery, refreshing the route while it is in transit.
func (s *MapsService) TrackDelivery(ctx context.Context, orderID string) (*models.Delivery, error) {
	delivery, err := s.deliveries.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, err
	}

	if delivery.Status == models.DeliveryInTransit {
		summary, err := s.routeBetween(ctx, delivery.DriverLocation, delivery.CustomerLocation)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			delivery.Route = *summary
		}
	}
	return delivery, nil
}

// ---- Properties ----

type PropertyInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	Price        float64  `json:"price"`
	PropertyType string   `json:"propertyType"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	SquareFeet   int      `json:"squareFeet"`
	Amenities    []string `json:"amenities"`
}

func (s *MapsService) AddProperty(ctx context.Context, in PropertyInput) (*models.Property, error) {
	if !models.ValidPropertyType(in.PropertyType) {
		return nil, ErrInvalidProperty
	}
	geocoded, err := s.client.Geocode(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	nearby, err := s.client.NearbySearch(ctx, maps.NearbyRequest{
		Lat:    geocoded.Lat(),
		Lng:    geocoded.Lng(),
		Radius: propertyNearbyRadius,
		Type:   propertyNearbyTypes,
	})
	if err != nil {
		return nil, err
	}

	results := nearby.Results
	if len(results) > propertyNearbyMax {
		results = results[:propertyNearbyMax]
	}
	places := make([]models.NearbyPlace, 0, len(results))
	for _, p := range results {
		place := models.NearbyPlace{Name: p.Name, Distance: pendingPlaceDistance}
		if len(p.Types) > 0 {
			place.Type = p.Types[0]
		}
		places = append(places, place)
	}

	property := &models.Property{
		Title:        in.Title,
		Description:  in.Description,
		Address:      geocoded.FormattedAddress,
		Location:     pointOf(geocoded),
		Price:        in.Price,
		PropertyType: in.PropertyType,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		Amenities:    in.Amenities,
		NearbyPlaces: places,
		CreatedAt:    s.now(),
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// SearchProperties applies defaults to radius and limit before querying.
func (s *MapsService) SearchProperties(ctx context.Context, q repository.PropertyQuery) ([]models.Property, error) {
	if q.MaxDistance <= 0 {
		q.MaxDistance = DefaultSearchRadius
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	return s.properties.Search(ctx, q)
}

// PropertyCommute is a property with optional commute details.
type PropertyCommute struct {
	*models.Property
	CommuteInfo *models.CommuteInfo `json:"commuteInfo,omitempty"`
}

// Commute returns the property and, when workAddress is set, the driving commute to it.
func (s *MapsService) Commute(ctx context.Context, id, workAddress string) (*PropertyCommute, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	out := &PropertyCommute{Property: property}
	if strings.TrimSpace(workAddress) == "" {
		return out, nil
	}

	work, err := s.client.Geocode(ctx, workAddress)
	if err != nil {
		return nil, err
	}
	directions, err := s.client.Directions(ctx, maps.DirectionsRequest{
		Origin:        property.Location.LatLng(),
		Destination:   work.LatLng(),
		Mode:          "driving",
		DepartureTime: "now",
	})
	if err != nil {
		return nil, err
	}

	info := &models.CommuteInfo{}
	if _, leg, ok := directions.FirstLeg(); ok {
		info.Distance = leg.Distance.Text
		info.Duration = leg.Duration.Text
		info.DurationInTraffic = leg.Duration.Text
		if leg.DurationInTraffic != nil && leg.DurationInTraffic.Text != "" {
			info.DurationInTraffic = leg.DurationInTraffic.Text
		}
	}
	out.CommuteInfo = info
	return out, nil
}
