package dataset

import (
	"sort"
	"sync"

	"atlas.citydata.org/internal/models"
)

// Store is a thread-safe in-memory store for the loaded city datasets:
// one flat worldwide city list plus any number of grouped datasets,
// indexed by dataset name. It is populated once during startup and only
// read afterwards; the sync.RWMutex guards the window where loading and
// the first requests could overlap.
type Store struct {
	mu      sync.RWMutex
	cities  []models.City                       // flat worldwide city list
	grouped map[string]map[string][]models.City // group-key -> cities, per dataset name
}

// NewStore initializes and returns a new, empty Store.
// The grouped map is lazily initialized on first use in SetGrouped.
func NewStore() *Store {
	return &Store{}
}

// SetCities stores the flat city list. A nil slice is normalized to an
// empty one so queries against a failed or missing dataset stay valid.
func (s *Store) SetCities(cities []models.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cities == nil {
		cities = []models.City{}
	}
	s.cities = cities
}

// Cities returns the flat city list in its original load order.
// Records are immutable after load, so the shared slice is returned as-is.
func (s *Store) Cities() []models.City {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cities == nil {
		return []models.City{}
	}
	return s.cities
}

// SetGrouped stores a grouped dataset under the given name.
// If the internal map is not initialized, it creates it.
func (s *Store) SetGrouped(name string, groups map[string][]models.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grouped == nil {
		s.grouped = make(map[string]map[string][]models.City)
	}
	if groups == nil {
		groups = map[string][]models.City{}
	}
	s.grouped[name] = groups
}

// Grouped retrieves the full group-key mapping of a grouped dataset.
//
// Returns:
//   - map[string][]models.City: the mapping, if the dataset was loaded.
//   - bool: true if a dataset with this name exists, false otherwise.
func (s *Store) Grouped(name string) (map[string][]models.City, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups, exists := s.grouped[name]
	return groups, exists
}

// GroupedNames returns the sorted names of all loaded grouped datasets.
func (s *Store) GroupedNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.grouped))
	for name := range s.grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupKeys returns the sorted group keys of a grouped dataset. An unknown
// dataset name yields an empty slice.
func (s *Store) GroupKeys(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.grouped[name]))
	for key := range s.grouped[name] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Group returns the cities of one group inside a grouped dataset. A missing
// dataset or group key yields an empty slice rather than an error.
func (s *Store) Group(name, key string) []models.City {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cities, exists := s.grouped[name][key]
	if !exists {
		return []models.City{}
	}
	return cities
}

// Flatten returns every record of a grouped dataset as a single list, with
// each record carrying its group key in the Group field so the flattened
// output stays self-describing. Groups are visited in sorted key order and
// records keep their order within each group.
func (s *Store) Flatten(name string) []models.City {
	s.mu.RLock()
	groups := s.grouped[name]
	s.mu.RUnlock()

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	flattened := make([]models.City, 0)
	for _, key := range keys {
		for _, city := range groups[key] {
			city.Group = key
			flattened = append(flattened, city)
		}
	}
	return flattened
}
