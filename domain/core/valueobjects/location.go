package valueobjects

import "strings"

// Location is where a person lives; fed by the city lookup service
type Location struct {
	City     string  `json:"city,omitempty"`
	Country  string  `json:"country,omitempty"`
	Timezone string  `json:"timezone,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
}

// IsZero reports whether no location has been set
func (l Location) IsZero() bool {
	return l.City == "" && l.Country == "" && l.Timezone == "" && l.Lat == 0 && l.Lng == 0
}

// Display returns "City, Country" with empty parts omitted
func (l Location) Display() string {
	parts := make([]string, 0, 2)
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	return strings.Join(parts, ", ")
}

// Valid checks coordinate ranges
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}
