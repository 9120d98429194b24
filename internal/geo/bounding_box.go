package geo

import (
	"fmt"
	"math"
	"sync"

	"atlas.citydata.org/internal/models"
)

// BoundingBox defines the corners of a lat/lon box
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Contains checks whether the given latitude and longitude are within the bounding box
func (b *BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// ComputeBoundingBox computes the bounding box of all cities in a dataset
func ComputeBoundingBox(cities []models.City) (BoundingBox, error) {
	if len(cities) == 0 {
		return BoundingBox{}, fmt.Errorf("no cities to compute bounding box")
	}

	minLat := math.MaxFloat64
	maxLat := -math.MaxFloat64
	minLon := math.MaxFloat64
	maxLon := -math.MaxFloat64

	for _, city := range cities {
		if !IsValidLatLon(city.Latitude, city.Longitude) {
			continue
		}
		if city.Latitude < minLat {
			minLat = city.Latitude
		}
		if city.Latitude > maxLat {
			maxLat = city.Latitude
		}
		if city.Longitude < minLon {
			minLon = city.Longitude
		}
		if city.Longitude > maxLon {
			maxLon = city.Longitude
		}
	}

	if minLat == math.MaxFloat64 || maxLat == -math.MaxFloat64 ||
		minLon == math.MaxFloat64 || maxLon == -math.MaxFloat64 {
		return BoundingBox{}, fmt.Errorf("no valid latitude/longitude found in cities")
	}

	return BoundingBox{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLon: minLon,
		MaxLon: maxLon,
	}, nil
}

// BoundingBoxStore stores bounding boxes for each dataset in memory with concurrency safety
type BoundingBoxStore struct {
	mu    sync.RWMutex
	store map[string]BoundingBox
}

// NewBoundingBoxStore creates and returns a new BoundingBoxStore
func NewBoundingBoxStore() *BoundingBoxStore {
	return &BoundingBoxStore{
		store: make(map[string]BoundingBox),
	}
}

// Set stores a bounding box for a specific dataset name
func (s *BoundingBoxStore) Set(dataset string, bbox BoundingBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[dataset] = bbox
}

// Get retrieves the bounding box for a specific dataset name
func (s *BoundingBoxStore) Get(dataset string) (BoundingBox, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bbox, ok := s.store[dataset]
	return bbox, ok
}

// IsInBoundingBox checks if the lat/lon is inside the dataset's bounding box
func (s *BoundingBoxStore) IsInBoundingBox(dataset string, lat, lon float64) bool {
	bbox, ok := s.Get(dataset)
	if !ok {
		return false
	}
	return bbox.Contains(lat, lon)
}
