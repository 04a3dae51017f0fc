package store

import "time"

// ReportRecord indexes one exported report file.
type ReportRecord struct {
	ID          string
	Name        string
	Format      string
	Path        string
	Fallback    bool
	ModuleCount int
	// Modules are the analyzed module names in report order.
	Modules   []string
	CreatedAt time.Time
}

// GeoRecord caches one geocoder answer.
type GeoRecord struct {
	Query     string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}
