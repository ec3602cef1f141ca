// internal/api/handlers/maps_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go-quickstart/internal/models"
	"go-quickstart/internal/repository"
	"go-quickstart/internal/service"

	"github.com/gin-gonic/gin"
)

type MapsHandler struct {
	Maps *service.MapsService
}

type OptimizeRouteRequest struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}

type ValidateAddressRequest struct {
	Address string `json:"address"`
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", service.ErrValidation, key)
	}
	return &v, nil
}

// queryInt parses an optional integer query parameter, returning 0 when absent.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, key)
	}
	return v, nil
}

func (h *MapsHandler) bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// ==================== Stores ====================

func (h *MapsHandler) AddStore(c *gin.Context) {
	var req service.StoreInput
	if !h.bindJSON(c, &req) {
		return
	}
	store, err := h.Maps.AddStore(c.Request.Context(), req)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (h *MapsHandler) NearbyStores(c *gin.Context) {
	q := service.NearbyStoresQuery{Address: c.Query("address"), Category: c.Query("category")}

	var err error
	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		respondMaps(c, err)
		return
	}
	if q.Lng, err = queryFloat(c, "lng"); err != nil {
		respondMaps(c, err)
		return
	}
	radius, err := queryInt(c, "radius")
	if err != nil {
		respondMaps(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondMaps(c, err)
		return
	}
	q.Radius = float64(radius)
	q.Limit = int64(limit)

	stores, err := h.Maps.NearbyStores(c.Request.Context(), q)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

// ==================== Routes ====================

func (h *MapsHandler) OptimizeRoute(c *gin.Context) {
	var req OptimizeRouteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	route, directions, err := h.Maps.OptimizeRoute(c.Request.Context(), req.Name, req.Addresses)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route, "directions": directions})
}

func (h *MapsHandler) ListRoutes(c *gin.Context) {
	routes, err := h.Maps.Routes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, routes)
}

// ==================== Addresses & places ====================

func (h *MapsHandler) ValidateAddress(c *gin.Context) {
	var req ValidateAddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.Maps.ValidateAddress(c.Request.Context(), req.Address)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"isValid": false, "error": err.Error(), "originalAddress": req.Address})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MapsHandler) NearbyPlaces(c *gin.Context) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		respondMaps(c, err)
		return
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		respondMaps(c, err)
		return
	}
	radius, err := queryInt(c, "radius")
	if err != nil {
		respondMaps(c, err)
		return
	}

	places, err := h.Maps.NearbyPlaces(c.Request.Context(), lat, lng, radius, c.Query("type"), c.Query("keyword"))
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

// ==================== Deliveries ====================

func (h *MapsHandler) CreateDelivery(c *gin.Context) {
	var req service.DeliveryInput
	if !h.bindJSON(c, &req) {
		return
	}
	delivery, err := h.Maps.CreateDelivery(c.Request.Context(), req)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusCreated, delivery)
}

func (h *MapsHandler) UpdateDelivery(c *gin.Context) {
	var req service.DeliveryStatusInput
	if !h.bindJSON(c, &req) {
		return
	}
	delivery, err := h.Maps.UpdateDelivery(c.Request.Context(), c.Param("orderId"), req)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (h *MapsHandler) TrackDelivery(c *gin.Context) {
	delivery, err := h.Maps.TrackDelivery(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

// ==================== Properties ====================

func (h *MapsHandler) AddProperty(c *gin.Context) {
	var req service.PropertyInput
	if !h.bindJSON(c, &req) {
		return
	}
	property, err := h.Maps.AddProperty(c.Request.Context(), req)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *MapsHandler) SearchProperties(c *gin.Context) {
	q, err := propertyQuery(c)
	if err != nil {
		respondMaps(c, err)
		return
	}
	properties, err := h.Maps.SearchProperties(c.Request.Context(), q)
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func propertyQuery(c *gin.Context) (repository.PropertyQuery, error) {
	var q repository.PropertyQuery

	lat, err := queryFloat(c, "lat")
	if err != nil {
		return q, err
	}
	lng, err := queryFloat(c, "lng")
	if err != nil {
		return q, err
	}
	if lat != nil && lng != nil {
		p := models.NewPoint(*lat, *lng)
		q.Point = &p
	}

	ints := map[string]*int{"bedrooms": &q.Bedrooms, "bathrooms": &q.Bathrooms}
	for key, dst := range ints {
		if *dst, err = queryInt(c, key); err != nil {
			return q, err
		}
	}
	radius, err := queryInt(c, "radius")
	if err != nil {
		return q, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return q, err
	}
	q.MaxDistance = float64(radius)
	q.Limit = int64(limit)

	for key, dst := range map[string]*float64{"minPrice": &q.MinPrice, "maxPrice": &q.MaxPrice} {
		v, err := queryFloat(c, key)
		if err != nil {
			return q, err
		}
		if v != nil {
			*dst = *v
		}
	}

	q.PropertyType = c.Query("propertyType")
	if !models.ValidPropertyType(q.PropertyType) {
		return q, service.ErrInvalidProperty
	}
	return q, nil
}

func (h *MapsHandler) Commute(c *gin.Context) {
	result, err := h.Maps.Commute(c.Request.Context(), c.Param("id"), c.Query("workAddress"))
	if err != nil {
		respondMaps(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
