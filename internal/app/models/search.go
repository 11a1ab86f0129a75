package models

// Coordinates is a WGS84 point. Both fields are nil when nothing was geocoded.
type Coordinates struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// Place is one search result.
type Place struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Address  string  `json:"address"`
}

// SearchResponse is returned by the places search endpoint.
type SearchResponse struct {
	Center  Coordinates `json:"center"`
	Results []Place     `json:"results"`
}
