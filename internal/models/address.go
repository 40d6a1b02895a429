package models

// Address is one entry on the public map. Coordinates are pointers so a
// never-geocoded address serializes without lat/lon rather than as 0,0.
// After a successful save either both coordinates are set or neither is.
type Address struct {
	Text         string   `json:"text"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

// HasCoordinates reports whether both lat and lon are present.
func (a Address) HasCoordinates() bool {
	return a.Lat != nil && a.Lon != nil
}

// ClearCoordinates drops both coordinates, including a stray half-set pair.
func (a *Address) ClearCoordinates() {
	a.Lat = nil
	a.Lon = nil
}

// SetCoordinates sets both coordinates together.
func (a *Address) SetCoordinates(lat, lon float64) {
	a.Lat = &lat
	a.Lon = &lon
}
