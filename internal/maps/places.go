// internal/maps/places.go
package maps

import (
	"context"
	"net/url"
	"strconv"
)

type NearbyRequest struct {
	Lat     float64
	Lng     float64
	Radius  int
	Type    string
	Keyword string
}

func (c *Client) NearbySearch(ctx context.Context, req NearbyRequest) (*PlacesResponse, error) {
	p := url.Values{
		"location": {FormatLatLng(req.Lat, req.Lng)},
		"radius":   {strconv.Itoa(req.Radius)},
	}
	if req.Type != "" {
		p.Set("type", req.Type)
	}
	if req.Keyword != "" {
		p.Set("keyword", req.Keyword)
	}

	var data PlacesResponse
	if err := c.Call(ctx, "place/nearbysearch/json", p, &data); err != nil {
		return nil, err
	}
	if data.Results == nil {
		data.Results = []Place{}
	}
	return &data, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID, fields string) (*PlaceDetailsResponse, error) {
	p := url.Values{"place_id": {placeID}}
	if fields != "" {
		p.Set("fields", fields)
	}
	var data PlaceDetailsResponse
	if err := c.Call(ctx, "place/details/json", p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
