package vector

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

type memoryCollection struct {
	dimension int
	points    map[string]Point
}

// Memory is an in-process Index for development and tests.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

func (m *Memory) Exists(ctx context.Context, collection string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[collection]
	return ok, nil
}

func (m *Memory) Create(ctx context.Context, collection string, dimension int) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = &memoryCollection{
			dimension: dimension,
			points:    make(map[string]Point),
		}
	}
	return nil
}

func (m *Memory) Count(ctx context.Context, collection string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return len(c.points), nil
}

func (m *Memory) Upsert(ctx context.Context, collection string, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	for _, p := range points {
		if len(p.Vector) != c.dimension {
			return fmt.Errorf("%w: point %s has %d, collection has %d", ErrDimensionMismatch, p.ID, len(p.Vector), c.dimension)
		}
	}

	for _, p := range points {
		c.points[p.ID] = Point{ID: p.ID, Vector: p.Vector, Payload: maps.Clone(p.Payload)}
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, collection string, vector []float64, limit int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d, collection has %d", ErrDimensionMismatch, len(vector), c.dimension)
	}

	points := make([]Point, 0, len(c.points))
	for _, p := range c.points {
		points = append(points, p)
	}

	return rank(points, vector, limit), nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
