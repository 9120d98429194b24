package models

// City represents a single record inside a city dataset.
// Records are immutable once loaded; duplicate names or coordinates
// are valid and never deduplicated.
//
// Group is only populated on records produced by flattening a grouped
// dataset, so flattened output is self-describing.
type City struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	Region    string  `json:"region,omitempty"`
	Group     string  `json:"group,omitempty"`
}

// CityDistance is a City annotated with its computed distance from a
// query origin, in miles. It exists only as a transient query-result
// value and is never stored.
type CityDistance struct {
	City
	DistanceMiles float64 `json:"distanceMiles"`
}

// DatasetSource describes where one dataset is loaded from at startup.
// Exactly one of Path or URL should be set. Grouped sources decode as a
// mapping from group key to city list, flat sources as a plain list.
type DatasetSource struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	Grouped bool   `json:"grouped"`
}

func NewDatasetSource(name, path, url string, grouped bool) *DatasetSource {
	return &DatasetSource{
		Name:    name,
		Path:    path,
		URL:     url,
		Grouped: grouped,
	}
}
