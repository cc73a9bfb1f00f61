package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"weather-analyzer/internal/models"
)

var (
	// ErrNoObservations is returned when no data exists for a city.
	ErrNoObservations = errors.New("no observations for city")
)

// Store is a concurrency-safe in-memory table of weather observations.
// City groups are kept as an explicit mapping from city label to the
// ordered list of row indices, so grouped computations walk index lists
// rather than re-scanning the table.
type Store struct {
	mu sync.RWMutex

	rows []models.Observation

	// key: exact city label, value: row indices in insertion order
	cityRows map[string][]int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		cityRows: make(map[string][]int),
	}
}

// FromObservations builds a Store from a flat observation table.
func FromObservations(observations []models.Observation) *Store {
	s := New()
	for _, obs := range observations {
		s.Add(obs)
	}
	return s
}

// Add appends an observation and indexes it under its city label.
func (s *Store) Add(obs models.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, obs)
	s.cityRows[obs.City] = append(s.cityRows[obs.City], len(s.rows)-1)
}

// AddSeries appends a batch of observations.
func (s *Store) AddSeries(observations []models.Observation) {
	for _, obs := range observations {
		s.Add(obs)
	}
}

// Len returns the total number of observations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Cities returns all city labels in sorted order, so grouped results
// come out in a deterministic city-then-input order.
func (s *Store) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := make([]string, 0, len(s.cityRows))
	for city := range s.cityRows {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

// Group returns the observations for one city in input order.
func (s *Store) Group(city string) ([]models.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indices, ok := s.cityRows[city]
	if !ok || len(indices) == 0 {
		return nil, ErrNoObservations
	}

	group := make([]models.Observation, 0, len(indices))
	for _, i := range indices {
		group = append(group, s.rows[i])
	}
	return group, nil
}

// All returns a copy of the full observation table in insertion order.
func (s *Store) All() []models.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Observation, len(s.rows))
	copy(out, s.rows)
	return out
}

// Period returns the earliest and latest timestamps in the table.
func (s *Store) Period() (time.Time, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var min, max time.Time
	for _, obs := range s.rows {
		if min.IsZero() || obs.Timestamp.Before(min) {
			min = obs.Timestamp
		}
		if max.IsZero() || obs.Timestamp.After(max) {
			max = obs.Timestamp
		}
	}
	return min, max
}
