// internal/maps/directions.go
package maps

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type DirectionsRequest struct {
	Origin        string
	Destination   string
	Waypoints     []string
	Optimize      bool
	Mode          string
	DepartureTime string
}

func (r DirectionsRequest) params() url.Values {
	p := url.Values{
		"origin":      {r.Origin},
		"destination": {r.Destination},
	}
	if len(r.Waypoints) > 0 {
		wp := strings.Join(r.Waypoints, "|")
		if r.Optimize {
			wp = "optimize:true|" + wp
		}
		p.Set("waypoints", wp)
	}
	if r.Mode != "" {
		p.Set("mode", r.Mode)
	}
	if r.DepartureTime != "" {
		p.Set("departure_time", r.DepartureTime)
	}
	return p
}

func (c *Client) Directions(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	var data DirectionsResponse
	if err := c.Call(ctx, "directions/json", req.params(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Totals sums leg distances (metres) and durations (seconds).
func (r DirectionsRoute) Totals() (metres, seconds int) {
	for _, leg := range r.Legs {
		metres += leg.Distance.Value
		seconds += leg.Duration.Value
	}
	return metres, seconds
}

// FormatDistance renders metres the way the directions API does: "850 m", "12.3 km".
func FormatDistance(metres int) string {
	if metres < 1000 {
		return strconv.Itoa(metres) + " m"
	}
	km := strconv.FormatFloat(float64(metres)/1000, 'f', 1, 64)
	return strings.TrimSuffix(km, ".0") + " km"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatDuration renders seconds as "45 mins", "1 hour 5 mins" or "2 days 3 hours".
func FormatDuration(seconds int) string {
	mins := (seconds + 30) / 60
	days, mins := mins/(24*60), mins%(24*60)
	hours, mins := mins/60, mins%60

	switch {
	case days > 0:
		if hours == 0 {
			return plural(days, "day")
		}
		return plural(days, "day") + " " + plural(hours, "hour")
	case hours > 0:
		if mins == 0 {
			return plural(hours, "hour")
		}
		return plural(hours, "hour") + " " + plural(mins, "min")
	default:
		if mins < 1 {
			mins = 1
		}
		return plural(mins, "min")
	}
}
