// internal/maps/geocode.go
package maps

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"go-quickstart/internal/geocache"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAddressNotFound  = errors.New("Address not found")
	ErrLocationNotFound = errors.New("Location not found")
)

// Geocoded is a resolved address. Coordinates are [lng, lat].
type Geocoded struct {
	Coordinates      []float64 `json:"coordinates"`
	FormattedAddress string    `json:"formattedAddress"`
	PlaceID          string    `json:"placeId"`
}

func (g Geocoded) Lat() float64 { return g.Coordinates[1] }
func (g Geocoded) Lng() float64 { return g.Coordinates[0] }

// LatLng formats the point as "lat,lng".
func (g Geocoded) LatLng() string {
	return FormatLatLng(g.Lat(), g.Lng())
}

func FormatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// Geocode resolves an address, consulting the geocode cache first.
// Cache failures are logged and otherwise ignored.
func (c *Client) Geocode(ctx context.Context, address string) (*Geocoded, error) {
	key := geocache.NormalizeAddress(address)
	if key == "" {
		return nil, ErrAddressNotFound
	}

	hits, err := c.cache.GetMany(ctx, []string{key})
	if err != nil {
		c.log.Warn("geocode cache read failed", zap.Error(err))
	} else if e, ok := hits[key]; ok {
		return &Geocoded{Coordinates: []float64{e.Lng, e.Lat}, FormattedAddress: e.FormattedAddress, PlaceID: e.PlaceID}, nil
	}

	g, err := c.geocodeRemote(ctx, url.Values{"address": {address}})
	if err != nil {
		return nil, err
	}

	entry := geocache.Entry{Lat: g.Lat(), Lng: g.Lng(), FormattedAddress: g.FormattedAddress, PlaceID: g.PlaceID}
	if err := c.cache.PutMany(ctx, map[string]geocache.Entry{key: entry}); err != nil {
		c.log.Warn("geocode cache write failed", zap.Error(err))
	}
	return g, nil
}

func (c *Client) geocodeRemote(ctx context.Context, params url.Values) (*Geocoded, error) {
	var data GeocodeResponse
	if err := c.Call(ctx, "geocode/json", params, &data); err != nil {
		return nil, err
	}
	if data.Status != StatusOK || len(data.Results) == 0 {
		return nil, ErrAddressNotFound
	}
	r := data.Results[0]
	return &Geocoded{
		Coordinates:      []float64{r.Geometry.Location.Lng, r.Geometry.Location.Lat},
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
	}, nil
}

// GeocodeMany resolves addresses concurrently, preserving input order.
func (c *Client) GeocodeMany(ctx context.Context, addresses []string) ([]Geocoded, error) {
	out := make([]Geocoded, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for i, a := range addresses {
		g.Go(func() error {
			res, err := c.Geocode(gctx, a)
			if err != nil {
				return err
			}
			out[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	var data GeocodeResponse
	if err := c.Call(ctx, "geocode/json", url.Values{"latlng": {FormatLatLng(lat, lng)}}, &data); err != nil {
		return "", err
	}
	if data.Status != StatusOK || len(data.Results) == 0 {
		return "", ErrLocationNotFound
	}
	return data.Results[0].FormattedAddress, nil
}
