package domain

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lat, lon], the order the solver model uses.
func (c Coordinates) LatLon() [2]float64 { return [2]float64{c.Lat, c.Lon} }

// Report whether the coordinates were never set (0,0 is not a served location).
func (c Coordinates) IsZero() bool { return c.Lat == 0 && c.Lon == 0 }
