// internal/maps/types.go
package maps

const StatusOK = "OK"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type GeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	PlaceID           string             `json:"place_id"`
	AddressComponents []AddressComponent `json:"address_components"`
	Types             []string           `json:"types"`
	Geometry          struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []GeocodeResult `json:"results"`
}

type Leg struct {
	Distance          TextValue  `json:"distance"`
	Duration          TextValue  `json:"duration"`
	DurationInTraffic *TextValue `json:"duration_in_traffic,omitempty"`
	StartAddress      string     `json:"start_address,omitempty"`
	EndAddress        string     `json:"end_address,omitempty"`
}

type DirectionsRoute struct {
	Summary          string `json:"summary,omitempty"`
	Legs             []Leg  `json:"legs"`
	WaypointOrder    []int  `json:"waypoint_order"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
}

type DirectionsResponse struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Routes       []DirectionsRoute `json:"routes"`
}

// FirstLeg returns the first leg of the first route when the response is usable.
func (d *DirectionsResponse) FirstLeg() (*DirectionsRoute, *Leg, bool) {
	if d == nil || d.Status != StatusOK || len(d.Routes) == 0 || len(d.Routes[0].Legs) == 0 {
		return nil, nil, false
	}
	return &d.Routes[0], &d.Routes[0].Legs[0], true
}

type Place struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	Rating       float64  `json:"rating,omitempty"`
	PriceLevel   *int     `json:"price_level,omitempty"`
	Types        []string `json:"types"`
	Vicinity     string   `json:"vicinity"`
	OpeningHours *struct {
		OpenNow *bool `json:"open_now,omitempty"`
	} `json:"opening_hours,omitempty"`
	Geometry struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

type PlacesResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Results      []Place `json:"results"`
}

type PlaceDetailsResponse struct {
	Status string `json:"status"`
	Result *struct {
		AddressComponents []AddressComponent `json:"address_components"`
		FormattedAddress  string             `json:"formatted_address"`
		Types             []string           `json:"types"`
	} `json:"result,omitempty"`
}
